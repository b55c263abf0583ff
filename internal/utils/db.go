// 包 utils：外部连接工具（PostgreSQL / Redis / 自签证书），参数统一来自 config
package utils

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"ubigeo-api/internal/config"
	"ubigeo-api/internal/logger"
)

// OpenPostgres：按配置打开连接池并做一次连通性探测
// 约束：未配置 PG_HOST 时返回 (nil, nil)，调用方据此跳过依赖 PostgreSQL 的组件
func OpenPostgres(ctx context.Context, pg config.PGConfig) (*sql.DB, error) {
	if !pg.Enabled() {
		return nil, nil
	}
	db, err := sql.Open("postgres", pg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(pg.MaxOpenConns)
	db.SetMaxIdleConns(pg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.L().Debug("pg_open", "host", pg.Host, "db", pg.DB, "max_open", pg.MaxOpenConns)
	return db, nil
}
