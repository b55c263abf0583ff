package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ubigeo-api/internal/ubigeo"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestLRU_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewLRU[string](4, time.Second)
	c.now = func() time.Time { return now }
	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry missing")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Error("expired entry must be dropped on read")
	}
}

func TestSearchKey(t *testing.T) {
	tests := []struct {
		levels []ubigeo.Level
		query  string
		want   string
	}{
		{nil, "  San  JOSÉ ", "ubigeo:abc:search:all:san jose"},
		{[]ubigeo.Level{ubigeo.Parroquia}, "Sucre", "ubigeo:abc:search:PARROQUIA:sucre"},
		{[]ubigeo.Level{ubigeo.Estado, ubigeo.Municipio}, "", "ubigeo:abc:search:ESTADO,MUNICIPIO:"},
	}
	for _, tt := range tests {
		if got := SearchKey("abc", tt.levels, tt.query); got != tt.want {
			t.Errorf("SearchKey(%v, %q) = %q, want %q", tt.levels, tt.query, got, tt.want)
		}
	}
}

func TestNewSearch_MemoryFallback(t *testing.T) {
	s := NewSearch(nil, 8, time.Minute)
	if s.Backend() != "memory" {
		t.Fatalf("backend = %s", s.Backend())
	}
	ctx := context.Background()
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatal("empty cache hit")
	}
	want := []ubigeo.Entity{{Level: ubigeo.Estado, Code: "07", Name: "Barinas"}}
	s.Set(ctx, "k", want)
	got, ok := s.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// Redis 后端以 JSON 保存实体，层级需能从标签读回
func TestEntityJSONKeepsLevel(t *testing.T) {
	in := []ubigeo.Entity{{Level: ubigeo.Municipio, Code: "0701", Name: "Alberto Arvelo Torrealba", ParentCode: "07"}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out []ubigeo.Entity
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
