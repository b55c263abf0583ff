package ubigeo

import "testing"

// 测试夹具：三个 Estado，覆盖同名 Parroquia、别名与重音
func fixtureRecords() []RawRecord {
	return []RawRecord{
		{Level: "ESTADO", Code: "07", Name: "Barinas"},
		{Level: "MUNICIPIO", Code: "0701", Name: "Alberto Arvelo Torrealba", ParentCode: "07"},
		{Level: "PARROQUIA", Code: "070101", Name: "Sabaneta", ParentCode: "0701"},
		{Level: "PARROQUIA", Code: "070102", Name: "Rodríguez Domínguez", ParentCode: "0701"},
		{Level: "PARROQUIA", Code: "070103", Name: "San José", ParentCode: "0701"},
		{Level: "MUNICIPIO", Code: "0702", Name: "Antonio José de Sucre", ParentCode: "07", AltNames: []string{"Sucre"}},
		{Level: "PARROQUIA", Code: "070202", Name: "Andrés Bello"},
		{Level: "PARROQUIA", Code: "070201", Name: "Ticoporo"},
		{Level: "ESTADO", Code: "01", Name: "Distrito Capital"},
		{Level: "MUNICIPIO", Code: "0101", Name: "Libertador"},
		{Level: "PARROQUIA", Code: "010101", Name: "Altagracia"},
		{Level: "PARROQUIA", Code: "010116", Name: "San José"},
		{Level: "PARROQUIA", Code: "010121", Name: "Sucre", AltNames: []string{"Catia"}},
		{Level: "ESTADO", Code: "14", Name: "Mérida"},
		{Level: "MUNICIPIO", Code: "1401", Name: "Alberto Adriani"},
		{Level: "PARROQUIA", Code: "140101", Name: "Presidente Betancourt"},
	}
}

func mustIndex(t *testing.T, recs []RawRecord) *Index {
	t.Helper()
	ents, err := Parse(recs)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	idx, err := Build(ents)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return idx
}

func codes(es []Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Code)
	}
	return out
}
