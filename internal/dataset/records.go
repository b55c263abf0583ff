package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ubigeo-api/internal/ubigeo"
)

// RecordsFile：扁平记录文件（JSON 数组 / YAML 列表或 {records: [...]} / 带表头 CSV）
type RecordsFile struct {
	Path   string
	Format string
}

func (s *RecordsFile) Name() string { return s.Format + ":" + s.Path }

func (s *RecordsFile) Records(ctx context.Context) ([]ubigeo.RawRecord, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", s.Path, err)
	}
	switch s.Format {
	case FormatJSON:
		return decodeRecordsJSON(b)
	case FormatYAML:
		return decodeRecordsYAML(b)
	case FormatCSV:
		return decodeRecordsCSV(bytes.NewReader(b))
	}
	return nil, fmt.Errorf("dataset: unknown records format %q", s.Format)
}

func decodeRecordsJSON(b []byte) ([]ubigeo.RawRecord, error) {
	var out []ubigeo.RawRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("dataset: decode records json: %w", err)
	}
	return out, nil
}

// YAML 顶层可以是记录列表，也可以是带 records 键的映射
func decodeRecordsYAML(b []byte) ([]ubigeo.RawRecord, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("dataset: decode records yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.MappingNode {
		var wrap struct {
			Records []ubigeo.RawRecord `yaml:"records"`
		}
		if err := doc.Decode(&wrap); err != nil {
			return nil, fmt.Errorf("dataset: decode records yaml: %w", err)
		}
		return wrap.Records, nil
	}
	var out []ubigeo.RawRecord
	if err := doc.Decode(&out); err != nil {
		return nil, fmt.Errorf("dataset: decode records yaml: %w", err)
	}
	return out, nil
}

// CSV 列按表头名定位：level,code,name 必填，parent_code,alt_names 可选；alt_names 以 | 分隔
func decodeRecordsCSV(r io.Reader) ([]ubigeo.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, req := range []string{"level", "code", "name"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("dataset: csv header missing column %q", req)
		}
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	var out []ubigeo.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv: %w", err)
		}
		rec := ubigeo.RawRecord{
			Level:      get(row, "level"),
			Code:       get(row, "code"),
			Name:       get(row, "name"),
			ParentCode: get(row, "parent_code"),
		}
		if alts := get(row, "alt_names"); alts != "" {
			rec.AltNames = strings.Split(alts, "|")
		}
		out = append(out, rec)
	}
	return out, nil
}

// jsonAutoFile：.json 文件按首个非空白字符区分嵌套文档（{）与扁平记录数组（[）
type jsonAutoFile struct{ path string }

func (s *jsonAutoFile) Name() string { return "json:" + s.path }

func (s *jsonAutoFile) Records(ctx context.Context) ([]ubigeo.RawRecord, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", s.path, err)
	}
	t := bytes.TrimSpace(bytes.TrimPrefix(b, []byte("\xef\xbb\xbf")))
	if len(t) > 0 && t[0] == '[' {
		return decodeRecordsJSON(t)
	}
	return decodeNested(t)
}
