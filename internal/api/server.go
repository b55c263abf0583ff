// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ubigeo-api/internal/cache"
	"ubigeo-api/internal/config"
	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/metrics"
	"ubigeo-api/internal/middleware"
	"ubigeo-api/internal/store"
	"ubigeo-api/internal/ubigeo"
)

// Reloader：管理端触发的重载入口，由 dataset.Reloader 实现
type Reloader interface {
	Reload(ctx context.Context) (*ubigeo.Index, error)
}

// StatsStore：查询统计持久化，由 store.Store 实现；为 nil 时统计接口返回 503
type StatsStore interface {
	IncrStats(ctx context.Context, op string) error
	GetTotals(ctx context.Context) (*store.Totals, error)
}

// Deps：Server 的外部依赖；Live 必填，其余可为空
type Deps struct {
	Live     *ubigeo.Live
	Reloader Reloader
	Search   cache.Search
	Stats    StatsStore
	Log      *slog.Logger
}

// Server：HTTP API 服务
type Server struct {
	router   chi.Router
	live     *ubigeo.Live
	reloader Reloader
	search   cache.Search
	stats    StatsStore
	log      *slog.Logger
	cfg      config.Config
	ops      *middleware.Allowlist
}

// NewServer：按配置组装路由与中间件
// 约束：Search 为空时使用进程内 LRU；Log 为空时取默认日志器；ADMIN_ALLOW_CIDRS 不合法时返回错误
func NewServer(d Deps, cfg config.Config) (*Server, error) {
	ops, err := middleware.NewAllowlist(cfg.AdminAllow, cfg.RealIPHeader)
	if err != nil {
		return nil, err
	}
	s := &Server{
		live:     d.Live,
		reloader: d.Reloader,
		search:   d.Search,
		stats:    d.Stats,
		log:      d.Log,
		cfg:      cfg,
		ops:      ops,
	}
	if s.search == nil {
		s.search = cache.NewSearch(nil, cfg.SearchCacheMax, cfg.SearchCacheTTL)
	}
	if s.log == nil {
		s.log = logger.L()
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(logger.AccessMiddleware(s.log))
	if s.cfg.RateLimitEnabled {
		r.Use(middleware.RateLimit(middleware.NewTokenBucket(s.cfg.RateLimitQPS, s.cfg.RateLimitBurst)))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found", "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_query")
	})

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.ops.Wrap)
		r.Handle("/metrics", metrics.Handler())
		r.Post("/admin/reload", s.handleReload)
	})

	base := s.cfg.APIBase
	if base == "" {
		base = "/v1"
	}
	r.Route(base, func(r chi.Router) {
		r.Get("/estados", s.handleEstados)
		r.Route("/codes/{code}", func(r chi.Router) {
			r.Get("/", s.handleCode)
			r.Get("/children", s.handleChildren)
			r.Get("/ancestors", s.handleAncestors)
			r.Get("/path", s.handlePath)
		})
		r.Get("/search", s.handleSearch)
		r.Get("/by_name/{estado}", s.handleByName)
		r.Get("/by_name/{estado}/{municipio}", s.handleByName)
		r.Get("/by_name/{estado}/{municipio}/{parroquia}", s.handleByName)
		r.Get("/all", s.handleAll)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
}
