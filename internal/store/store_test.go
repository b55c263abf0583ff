package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ubigeo-api/internal/migrate"
	"ubigeo-api/internal/ubigeo"
)

// 需要真实 PostgreSQL：设置 UBIGEO_TEST_PG_DSN 后运行
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("UBIGEO_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("UBIGEO_TEST_PG_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrate.EnsureSchema(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	return AttachDB(db)
}

func TestReplaceDatasetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	recs := []ubigeo.RawRecord{
		{Level: "ESTADO", Code: "07", Name: "Barinas"},
		{Level: "MUNICIPIO", Code: "0701", Name: "Alberto Arvelo Torrealba", ParentCode: "07", AltNames: []string{"Arvelo"}},
		{Level: "PARROQUIA", Code: "070101", Name: "Sabaneta", ParentCode: "0701"},
	}
	ents, err := ubigeo.Parse(recs)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := ubigeo.Build(ents)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceDataset(ctx, idx.Version(), "test", ents); err != nil {
		t.Fatal(err)
	}
	got, err := s.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
	v, err := s.CurrentVersion(ctx)
	if err != nil || v != idx.Version() {
		t.Errorf("CurrentVersion = %q, %v; want %q", v, err, idx.Version())
	}
}

func TestStatsTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	before, err := s.GetTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.IncrStats(ctx, "lookup"); err != nil {
		t.Fatal(err)
	}
	after, err := s.GetTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if after.Total != before.Total+1 || after.ByOp["lookup"] != before.ByOp["lookup"]+1 {
		t.Errorf("totals before %+v after %+v", before, after)
	}
}
