package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"ubigeo-api/internal/ubigeo"
)

// 文档注释：INE 嵌套 JSON（ubigeo_ven.json）数据源
// 背景：参考数据集以 estados → municipios → parroquias 的嵌套结构发布，字段名为西语（codigo/nombre/nombres_alternos）。
// 约束：该布局中 Municipio 编码补零到 6 位（如 "070100"），此处仅把形如 XXYY00 的 Municipio 编码投影为 XXYY；
// 其余位数原样传递，由 Parse 判定为格式错误；数值型编码保留数字原文（不补零）。
type NestedJSONFile struct {
	Path string
}

type nestedDoc struct {
	Estados []nestedEstado `json:"estados"`
}

type nestedEstado struct {
	Codigo          codeText          `json:"codigo"`
	Nombre          string            `json:"nombre"`
	NombresAlternos []string          `json:"nombres_alternos"`
	Municipios      []nestedMunicipio `json:"municipios"`
}

type nestedMunicipio struct {
	Codigo          codeText          `json:"codigo"`
	Nombre          string            `json:"nombre"`
	NombresAlternos []string          `json:"nombres_alternos"`
	Parroquias      []nestedParroquia `json:"parroquias"`
}

type nestedParroquia struct {
	Codigo          codeText `json:"codigo"`
	Nombre          string   `json:"nombre"`
	NombresAlternos []string `json:"nombres_alternos"`
}

// codeText：同时接受字符串与数字形式的编码
type codeText string

func (c *codeText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = codeText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = codeText(n.String())
	return nil
}

func (s *NestedJSONFile) Name() string { return "nested:" + s.Path }

func (s *NestedJSONFile) Records(ctx context.Context) ([]ubigeo.RawRecord, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", s.Path, err)
	}
	return decodeNested(b)
}

func decodeNested(b []byte) ([]ubigeo.RawRecord, error) {
	var doc nestedDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("dataset: decode nested json: %w", err)
	}
	var out []ubigeo.RawRecord
	for _, e := range doc.Estados {
		ec := string(e.Codigo)
		out = append(out, ubigeo.RawRecord{Level: "ESTADO", Code: ec, Name: e.Nombre, AltNames: e.NombresAlternos})
		for _, m := range e.Municipios {
			mc := projectMunicipioCode(string(m.Codigo))
			out = append(out, ubigeo.RawRecord{Level: "MUNICIPIO", Code: mc, Name: m.Nombre, ParentCode: ec, AltNames: m.NombresAlternos})
			for _, p := range m.Parroquias {
				out = append(out, ubigeo.RawRecord{Level: "PARROQUIA", Code: string(p.Codigo), Name: p.Nombre, ParentCode: mc, AltNames: p.NombresAlternos})
			}
		}
	}
	return out, nil
}

// 仅处理 6 位且以 00 结尾的 Municipio 编码
func projectMunicipioCode(c string) string {
	if len(c) == ubigeo.ParroquiaWidth && c[4:] == "00" && ubigeo.LevelOfCode(c) == ubigeo.Parroquia {
		return c[:ubigeo.MunicipioWidth]
	}
	return c
}
