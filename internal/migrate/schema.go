// 包 migrate：PostgreSQL 表结构初始化
package migrate

import (
	"context"
	"database/sql"

	"ubigeo-api/internal/logger"
)

// Statements：建表语句，按顺序执行
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS _ve_ubigeo_records (
        code TEXT PRIMARY KEY,
        level TEXT NOT NULL,
        name TEXT NOT NULL,
        parent_code TEXT NOT NULL DEFAULT '',
        alt_names TEXT[] NOT NULL DEFAULT '{}',
        dataset_version TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_ve_ubigeo_parent ON _ve_ubigeo_records(parent_code)`,
	`CREATE TABLE IF NOT EXISTS _ve_ubigeo_datasets (
        version TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        records INT NOT NULL,
        imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS _ve_stats_total (
        op TEXT PRIMARY KEY,
        queries BIGINT NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS _ve_stats_daily (
        day DATE NOT NULL,
        op TEXT NOT NULL,
        queries BIGINT NOT NULL DEFAULT 0,
        PRIMARY KEY (day, op)
    )`,
}

// EnsureSchema：首次运行自动创建数据集表与查询统计表
// 约束：使用 IF NOT EXISTS，可重复执行；不做破坏性变更
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done", "statements", len(Statements))
	return nil
}
