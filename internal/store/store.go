// 包 store: 提供与 PostgreSQL 的数据访问层，包含数据集记录读写与查询统计
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/ubigeo"
)

// Store: 数据库访问入口，持有连接池并提供数据集/统计接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：读取当前数据集的全部原始记录
// 背景：作为 DATASET_SOURCE=postgres 时的数据源；返回值再经 Parse/Build 校验，库内数据不被信任。
// 约束：按 code 排序返回，便于日志比对；层级标签原样返回。
func (s *Store) Records(ctx context.Context) ([]ubigeo.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level, code, name, parent_code, alt_names FROM _ve_ubigeo_records ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("store: query records: %w", err)
	}
	defer rows.Close()
	var out []ubigeo.RawRecord
	for rows.Next() {
		var r ubigeo.RawRecord
		var alts pq.StringArray
		if err := rows.Scan(&r.Level, &r.Code, &r.Name, &r.ParentCode, &alts); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		if len(alts) > 0 {
			r.AltNames = []string(alts)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate records: %w", err)
	}
	logger.L().Debug("db_records_read", "records", len(out))
	return out, nil
}

// 文档注释：以单个事务整体替换数据集
// 背景：导入工具先完成 Parse+Build 校验再调用；读方只会看到旧集合或新集合，不存在半张表。
// 参数：version 为索引内容版本，source 为数据来源描述；entities 为已校验实体。
func (s *Store) ReplaceDataset(ctx context.Context, version, source string, entities []ubigeo.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM _ve_ubigeo_records`); err != nil {
		return fmt.Errorf("store: clear records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _ve_ubigeo_records(code, level, name, parent_code, alt_names, dataset_version)
        VALUES($1,$2,$3,$4,$5,$6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entities {
		alts := e.AltNames
		if alts == nil {
			alts = []string{}
		}
		if _, err := stmt.ExecContext(ctx, e.Code, e.Level.String(), e.Name, e.ParentCode, pq.Array(alts), version); err != nil {
			return fmt.Errorf("store: insert %s: %w", e.Code, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO _ve_ubigeo_datasets(version, source, records) VALUES($1,$2,$3)
        ON CONFLICT (version) DO UPDATE SET source=EXCLUDED.source, records=EXCLUDED.records, imported_at=now()`,
		version, source, len(entities)); err != nil {
		return fmt.Errorf("store: record dataset: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("db_dataset_replaced", "version", version, "source", source, "records", len(entities))
	return nil
}

// CurrentVersion: 库内数据集版本；空表返回空串
func (s *Store) CurrentVersion(ctx context.Context) (string, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT dataset_version FROM _ve_ubigeo_records LIMIT 1`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

// IncrStats: 成功查询后递增该操作的累计与当日计数
// 约束：统计失败不影响查询结果，只记录 Debug 日志
func (s *Store) IncrStats(ctx context.Context, op string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO _ve_stats_total(op, queries) VALUES($1, 1)
        ON CONFLICT (op) DO UPDATE SET queries=_ve_stats_total.queries+1`, op)
	if err == nil {
		_, err = s.db.ExecContext(ctx, `INSERT INTO _ve_stats_daily(day, op, queries) VALUES(current_date, $1, 1)
        ON CONFLICT (day, op) DO UPDATE SET queries=_ve_stats_daily.queries+1`, op)
	}
	if err != nil {
		logger.L().Debug("stats_incr_error", "op", op, "err", err)
	}
	return err
}

// Totals: 统计返回结构，包含累计与当日查询次数及按操作拆分的累计
type Totals struct {
	Total int64            `json:"total"`
	Today int64            `json:"today"`
	ByOp  map[string]int64 `json:"by_op"`
}

// GetTotals: 读取累计与当日查询次数，用于 /v1/stats 返回
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	t := Totals{ByOp: map[string]int64{}}
	rows, err := s.db.QueryContext(ctx, `SELECT op, queries FROM _ve_stats_total`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var op string
		var n int64
		if err := rows.Scan(&op, &n); err != nil {
			return nil, err
		}
		t.ByOp[op] = n
		t.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(queries), 0) FROM _ve_stats_daily WHERE day=current_date`).Scan(&t.Today); err != nil {
		return nil, err
	}
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today)
	return &t, nil
}
