package ubigeo

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Valid(t *testing.T) {
	recs := []RawRecord{
		{Level: "estado", Code: " 07 ", Name: " Barinas "},
		{Level: "MUNICIPIO", Code: "0701", Name: "Alberto Arvelo Torrealba", ParentCode: "07", AltNames: []string{" ", "Arvelo"}},
	}
	got, err := Parse(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Entity{
		{Level: Estado, Code: "07", Name: "Barinas"},
		{Level: Municipio, Code: "0701", Name: "Alberto Arvelo Torrealba", ParentCode: "07", AltNames: []string{"Arvelo"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if recs[0].Code != " 07 " {
		t.Error("Parse must not mutate its input")
	}
}

func TestParse_CollectsAllErrors(t *testing.T) {
	recs := []RawRecord{
		{Level: "ESTADO", Code: "7", Name: "Barinas"},
		{Level: "CIUDAD", Code: "0701", Name: "Barinas"},
		{Level: "MUNICIPIO", Code: "0701", Name: "Ok", ParentCode: "07"},
		{Level: "PARROQUIA", Code: "07010A", Name: ""},
		{Level: "PARROQUIA", Code: "070101", Name: "Sabaneta", ParentCode: "07"},
	}
	_, err := Parse(recs)
	if err == nil {
		t.Fatal("expected error")
	}
	var perrs ParseErrors
	if !errors.As(err, &perrs) {
		t.Fatalf("expected ParseErrors, got %T", err)
	}
	type got struct {
		Index int
		Field string
		Kind  string
	}
	var have []got
	for _, e := range perrs {
		have = append(have, got{e.Index, e.Field, e.Kind.Error()})
	}
	want := []got{
		{0, "code", ErrMalformedCode.Error()},
		{1, "level", ErrUnknownLevel.Error()},
		{3, "code", ErrMalformedCode.Error()},
		{3, "name", ErrEmptyName.Error()},
		{4, "parent_code", ErrMalformedCode.Error()},
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, ErrUnknownLevel) || !errors.Is(err, ErrMalformedCode) {
		t.Error("expected errors.Is to see both kinds")
	}
	if Kind(err) != "parse_error" {
		t.Errorf("Kind = %q", Kind(err))
	}
}

func TestParse_EstadoParentLeftForBuild(t *testing.T) {
	ents, err := Parse([]RawRecord{{Level: "ESTADO", Code: "07", Name: "Barinas", ParentCode: "99"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ents[0].ParentCode != "99" {
		t.Errorf("expected parent code to be kept, got %q", ents[0].ParentCode)
	}
}
