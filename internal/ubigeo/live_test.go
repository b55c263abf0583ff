package ubigeo

import (
	"errors"
	"sync"
	"testing"
)

func TestLive_NotReadyUntilSwap(t *testing.T) {
	l := NewLive(nil)
	if l.Ready() {
		t.Fatal("expected not ready")
	}
	if _, err := l.Load(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	idx := mustIndex(t, fixtureRecords())
	if old := l.Swap(idx); old != nil {
		t.Fatal("first swap must return nil")
	}
	got, err := l.Load()
	if err != nil || got != idx {
		t.Fatalf("Load = %p, %v", got, err)
	}
	if l.Swap(nil) != idx {
		t.Fatal("Swap(nil) must keep the current index")
	}
	if got, _ := l.Load(); got != idx {
		t.Fatal("Swap(nil) replaced the index")
	}
}

func TestLive_ReadersSeeWholeIndexes(t *testing.T) {
	a := mustIndex(t, fixtureRecords())
	smaller := fixtureRecords()[:8]
	b := mustIndex(t, smaller)
	l := NewLive(a)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				idx, err := l.Load()
				if err != nil {
					t.Error(err)
					return
				}
				n := idx.Len()
				if n != a.Len() && n != b.Len() {
					t.Errorf("unexpected index size %d", n)
					return
				}
				if _, err := idx.FullPath("070101"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			l.Swap(b)
		} else {
			l.Swap(a)
		}
	}
	close(stop)
	wg.Wait()
}
