// 包 dataset：数据源适配与一次性加载（原始记录 → Parse → Build → 只读索引）
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ubigeo-api/internal/ubigeo"
)

// Source：任意可投影为原始记录序列的数据源
// 约束：Records 每次调用返回一份独立切片；加载器不修改返回值
type Source interface {
	Name() string
	Records(ctx context.Context) ([]ubigeo.RawRecord, error)
}

// 文件格式标签
const (
	FormatAuto   = "auto"
	FormatNested = "nested"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatCSV    = "csv"
)

// DBQuerier：Postgres 数据源依赖的最小接口，由 store.Store 实现
type DBQuerier interface {
	Records(ctx context.Context) ([]ubigeo.RawRecord, error)
}

// OpenSource：按配置选择数据源
// 参数：kind 为 file/postgres；format 取 auto 时按扩展名与内容推断；db 仅 postgres 时使用。
func OpenSource(kind, path, format string, db DBQuerier) (Source, error) {
	switch strings.ToLower(kind) {
	case "", "file":
		if path == "" {
			return nil, fmt.Errorf("dataset: file source requires a path")
		}
		return FileSource(path, format)
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("dataset: postgres source requires a database")
		}
		return &dbSource{db: db}, nil
	}
	return nil, fmt.Errorf("dataset: unknown source kind %q", kind)
}

// FileSource：按格式构造文件数据源；auto 时 .yaml/.yml → yaml，.csv → csv，.json 交给内容探测
func FileSource(path, format string) (Source, error) {
	f := strings.ToLower(format)
	if f == "" || f == FormatAuto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			f = FormatYAML
		case ".csv":
			f = FormatCSV
		case ".json":
			f = FormatAuto
		default:
			return nil, fmt.Errorf("dataset: cannot infer format of %s", path)
		}
	}
	switch f {
	case FormatAuto:
		return &jsonAutoFile{path: path}, nil
	case FormatNested:
		return &NestedJSONFile{Path: path}, nil
	case FormatJSON, FormatYAML, FormatCSV:
		return &RecordsFile{Path: path, Format: f}, nil
	}
	return nil, fmt.Errorf("dataset: unknown format %q", format)
}

type dbSource struct{ db DBQuerier }

func (s *dbSource) Name() string { return "postgres" }

func (s *dbSource) Records(ctx context.Context) ([]ubigeo.RawRecord, error) {
	return s.db.Records(ctx)
}
