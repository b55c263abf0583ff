package ubigeo

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_OrphanMunicipio(t *testing.T) {
	recs := []RawRecord{
		{Level: "ESTADO", Code: "07", Name: "Barinas"},
		{Level: "MUNICIPIO", Code: "0701", Name: "Alberto Arvelo Torrealba"},
		{Level: "PARROQUIA", Code: "070101", Name: "Sabaneta"},
		{Level: "MUNICIPIO", Code: "0901", Name: "Sin Estado"},
		{Level: "PARROQUIA", Code: "090101", Name: "Hija"},
	}
	ents, err := Parse(recs)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	idx, err := Build(ents)
	if idx != nil {
		t.Fatal("index must not be constructed on build failure")
	}
	if !errors.Is(err, ErrOrphanEntity) {
		t.Fatalf("expected ErrOrphanEntity, got %v", err)
	}
	var berrs BuildErrors
	if !errors.As(err, &berrs) || len(berrs) != 1 {
		t.Fatalf("expected exactly one BuildError, got %v", err)
	}
	if berrs[0].Code != "0901" || berrs[0].Level != Municipio {
		t.Errorf("unexpected error target: %+v", berrs[0])
	}
}

func TestBuild_Violations(t *testing.T) {
	tests := []struct {
		name string
		recs []RawRecord
		kind error
		code string
	}{
		{
			name: "duplicate code",
			recs: []RawRecord{
				{Level: "ESTADO", Code: "07", Name: "Barinas"},
				{Level: "ESTADO", Code: "07", Name: "Barinas bis"},
				{Level: "MUNICIPIO", Code: "0701", Name: "M"},
				{Level: "PARROQUIA", Code: "070101", Name: "P"},
			},
			kind: ErrDuplicateCode,
			code: "07",
		},
		{
			name: "estado without municipios",
			recs: []RawRecord{
				{Level: "ESTADO", Code: "07", Name: "Barinas"},
				{Level: "MUNICIPIO", Code: "0701", Name: "M"},
				{Level: "PARROQUIA", Code: "070101", Name: "P"},
				{Level: "ESTADO", Code: "08", Name: "Vacío"},
			},
			kind: ErrEmptySubtree,
			code: "08",
		},
		{
			name: "municipio without parroquias",
			recs: []RawRecord{
				{Level: "ESTADO", Code: "07", Name: "Barinas"},
				{Level: "MUNICIPIO", Code: "0701", Name: "M"},
				{Level: "PARROQUIA", Code: "070101", Name: "P"},
				{Level: "MUNICIPIO", Code: "0702", Name: "Vacío"},
			},
			kind: ErrEmptySubtree,
			code: "0702",
		},
		{
			name: "explicit parent disagrees with prefix",
			recs: []RawRecord{
				{Level: "ESTADO", Code: "07", Name: "Barinas"},
				{Level: "ESTADO", Code: "08", Name: "Bolívar"},
				{Level: "MUNICIPIO", Code: "0701", Name: "M", ParentCode: "08"},
				{Level: "MUNICIPIO", Code: "0801", Name: "M8"},
				{Level: "PARROQUIA", Code: "070101", Name: "P"},
				{Level: "PARROQUIA", Code: "080101", Name: "P8"},
			},
			kind: ErrParentMismatch,
			code: "0701",
		},
		{
			name: "estado with parent",
			recs: []RawRecord{
				{Level: "ESTADO", Code: "07", Name: "Barinas", ParentCode: "99"},
				{Level: "MUNICIPIO", Code: "0701", Name: "M"},
				{Level: "PARROQUIA", Code: "070101", Name: "P"},
			},
			kind: ErrParentMismatch,
			code: "07",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ents, err := Parse(tt.recs)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			idx, err := Build(ents)
			if idx != nil {
				t.Fatal("expected no index")
			}
			var berrs BuildErrors
			if !errors.As(err, &berrs) {
				t.Fatalf("expected BuildErrors, got %T %v", err, err)
			}
			if len(berrs) != 1 {
				t.Fatalf("expected one violation, got %v", err)
			}
			if !errors.Is(berrs[0], tt.kind) || berrs[0].Code != tt.code {
				t.Errorf("got %v, want %v on %s", berrs[0], tt.kind, tt.code)
			}
			if Kind(err) != "build_error" {
				t.Errorf("Kind = %q", Kind(err))
			}
		})
	}
}

func TestBuild_EmptyDataset(t *testing.T) {
	idx, err := Build(nil)
	if idx != nil || !errors.Is(err, ErrEmptySubtree) {
		t.Fatalf("expected empty dataset to fail, got %v, %v", idx, err)
	}
}

func TestBuild_DirectEntityWithBadCode(t *testing.T) {
	_, err := Build([]Entity{{Level: Estado, Code: "7", Name: "x"}})
	if !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
}

func TestBuild_ErrorsAreOrderIndependent(t *testing.T) {
	recs := []RawRecord{
		{Level: "ESTADO", Code: "07", Name: "Barinas"},
		{Level: "ESTADO", Code: "07", Name: "Otra"},
		{Level: "ESTADO", Code: "08", Name: "Vacío"},
		{Level: "MUNICIPIO", Code: "0701", Name: "M"},
		{Level: "MUNICIPIO", Code: "0901", Name: "Huérfano"},
		{Level: "PARROQUIA", Code: "070101", Name: "P"},
		{Level: "PARROQUIA", Code: "090101", Name: "P9"},
	}
	first := buildErrorStrings(t, recs)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]RawRecord(nil), recs...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if diff := cmp.Diff(first, buildErrorStrings(t, shuffled)); diff != "" {
			t.Fatalf("errors depend on record order (-first +shuffled):\n%s", diff)
		}
	}
}

func buildErrorStrings(t *testing.T, recs []RawRecord) []string {
	t.Helper()
	ents, err := Parse(recs)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Build(ents)
	var berrs BuildErrors
	if !errors.As(err, &berrs) {
		t.Fatalf("expected BuildErrors, got %v", err)
	}
	var out []string
	for _, e := range berrs {
		out = append(out, e.Error())
	}
	return out
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	ents, err := Parse(fixtureRecords())
	if err != nil {
		t.Fatal(err)
	}
	before := append([]Entity(nil), ents...)
	if _, err := Build(ents); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, ents); diff != "" {
		t.Errorf("Build mutated its input (-before +after):\n%s", diff)
	}
}
