package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ubigeo-api/internal/config"
	"ubigeo-api/internal/dataset"
	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/migrate"
	"ubigeo-api/internal/store"
	"ubigeo-api/internal/ubigeo"
	"ubigeo-api/internal/utils"
)

// 文档注释：把数据集文件导入 PostgreSQL
// 背景：先经 Parse+Build 完整校验，通过后才在单个事务内整体替换 _ve_ubigeo_records；
// 服务端以 DATASET_SOURCE=postgres 运行时即读取该表。
// 参数：第一个命令行参数为数据集路径（缺省取 DATASET_PATH）；格式取 DATASET_FORMAT。
// 约束：库内版本与待导入版本相同时跳过，IMPORT_FORCE=true 可强制重写。
func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	path := cfg.DatasetPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if !cfg.PG.Enabled() {
		l.Error("import_pg_missing", "hint", "set PG_HOST")
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	src, err := dataset.FileSource(path, cfg.DatasetFormat)
	if err != nil {
		l.Error("import_source_error", "path", path, "err", err)
		os.Exit(1)
	}
	idx, err := dataset.Load(ctx, src)
	if err != nil {
		l.Error("import_invalid_dataset", "path", path, "kind", ubigeo.Kind(err))
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(ctx, cfg.PG)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)
	cur, err := st.CurrentVersion(ctx)
	if err != nil {
		l.Error("import_version_error", "err", err)
		os.Exit(1)
	}
	if cur == idx.Version() && os.Getenv("IMPORT_FORCE") != "true" {
		l.Info("import_skipped", "reason", "same_version", "version", cur)
		return
	}
	// 写入派生后的上级编码，库内记录自洽
	var ents []ubigeo.Entity
	for _, lv := range ubigeo.Levels {
		ents = append(ents, idx.Level(lv)...)
	}
	if err := st.ReplaceDataset(ctx, idx.Version(), src.Name(), ents); err != nil {
		l.Error("import_write_error", "err", err)
		os.Exit(1)
	}
	l.Info("import_done", "from", cur, "to", idx.Version(), "records", len(ents))
}
