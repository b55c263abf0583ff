// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ubigeo-api/internal/api"
	"ubigeo-api/internal/cache"
	"ubigeo-api/internal/config"
	"ubigeo-api/internal/dataset"
	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/migrate"
	"ubigeo-api/internal/store"
	"ubigeo-api/internal/ubigeo"
	"ubigeo-api/internal/utils"
	"ubigeo-api/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	cfg := config.Load()
	// 日志初始化
	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	l.Debug("log_init_ok", "version", version.String())
	if err := cfg.Validate(); err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PostgreSQL 可选：作为数据源或查询统计存储
	var st *store.Store
	db, err := utils.OpenPostgres(ctx, cfg.PG)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		l.Info("db_open_ok", "host", cfg.PG.Host)
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	} else {
		l.Info("db_disabled")
	}

	rc := utils.OpenRedis(ctx, cfg)
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		l.Info("redis_ping_ok", "addr", cfg.RedisAddr)
	}

	var q dataset.DBQuerier
	if st != nil {
		q = st
	}
	src, err := dataset.OpenSource(cfg.DatasetSource, cfg.DatasetPath, cfg.DatasetFormat, q)
	if err != nil {
		l.Error("dataset_source_error", "err", err)
		os.Exit(1)
	}
	// 首次加载失败即退出：不以部分或空数据对外服务
	live := ubigeo.NewLive(nil)
	rl := dataset.NewReloader(src, live)
	if _, err := rl.Reload(ctx); err != nil {
		l.Error("dataset_load_error", "source", src.Name(), "kind", ubigeo.Kind(err), "err", err)
		os.Exit(1)
	}
	rl.Start(ctx, cfg.ReloadInterval)

	search := cache.NewSearch(rc, cfg.SearchCacheMax, cfg.SearchCacheTTL)
	l.Debug("search_cache", "backend", search.Backend(), "ttl", cfg.SearchCacheTTL.String())
	deps := api.Deps{Live: live, Reloader: rl, Search: search, Log: l}
	if st != nil && cfg.StatsEnabled {
		deps.Stats = st
	}
	srv, err := api.NewServer(deps, cfg)
	if err != nil {
		l.Error("server_config_error", "err", err)
		os.Exit(1)
	}

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		if cfg.TLSEnable {
			if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "ubigeo-api.local"); err != nil {
				errc <- err
				return
			}
			l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
			errc <- s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		l.Info("listening", "addr", cfg.Addr)
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		l.Info("shutdown_begin")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
		l.Info("shutdown_done")
	}
}
