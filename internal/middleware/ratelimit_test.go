package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	now := time.Unix(0, 0)
	tb := NewTokenBucket(2, 2)
	tb.now = func() time.Time { return now }
	tb.last = now
	if !tb.Allow() || !tb.Allow() {
		t.Fatal("burst should allow two requests")
	}
	if tb.Allow() {
		t.Fatal("empty bucket allowed a request")
	}
	now = now.Add(500 * time.Millisecond)
	if !tb.Allow() {
		t.Fatal("one token should have been refilled")
	}
	now = now.Add(time.Hour)
	for i := 0; i < 2; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d after refill rejected", i)
		}
	}
	if tb.Allow() {
		t.Error("refill must be capped at burst")
	}
}

func TestRateLimit_Rejects429(t *testing.T) {
	tb := NewTokenBucket(0, 1)
	h := RateLimit(tb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/estados", nil))
		if rec.Code != want {
			t.Errorf("request %d: status %d, want %d", i, rec.Code, want)
		}
	}
}
