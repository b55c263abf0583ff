package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ubigeo-api/internal/cache"
	"ubigeo-api/internal/metrics"
	"ubigeo-api/internal/ubigeo"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 1000
)

// listResponse：列表类接口的统一外层
type listResponse struct {
	Version string          `json:"version"`
	Count   int             `json:"count"`
	Items   []ubigeo.Entity `json:"items"`
}

// pathResponse：完整路径，附带重新拼出的编码与名称链
type pathResponse struct {
	ubigeo.Path
	Code  string   `json:"code"`
	Names []string `json:"names"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Level   string          `json:"level,omitempty"`
	Version string          `json:"version"`
	Total   int             `json:"total"`
	Count   int             `json:"count"`
	Items   []ubigeo.Entity `json:"items"`
}

type treeResponse struct {
	Version string        `json:"version"`
	Estados []ubigeo.Node `json:"estados"`
}

func newPathResponse(p ubigeo.Path) pathResponse {
	return pathResponse{Path: p, Code: p.Code(), Names: p.Names()}
}

func newList(idx *ubigeo.Index, items []ubigeo.Entity) listResponse {
	return listResponse{Version: idx.Version(), Count: len(items), Items: items}
}

// 文档注释：查询处理骨架
// 背景：统一完成当前索引获取、耗时与计数指标、错误映射和统计落库；业务函数只关心索引查询本身。
// 约束：索引未就绪返回 503；统计失败不影响响应。
func (s *Server) query(op string, w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, idx *ubigeo.Index) (any, error)) {
	begin := time.Now()
	metrics.RequestsTotal.WithLabelValues(op).Inc()
	defer func() {
		metrics.RequestDurationMs.WithLabelValues(op).Observe(float64(time.Since(begin).Microseconds()) / 1000)
	}()
	idx, err := s.live.Load()
	if err == nil {
		var v any
		v, err = fn(r.Context(), idx)
		if err == nil {
			if s.stats != nil && s.cfg.StatsEnabled {
				_ = s.stats.IncrStats(r.Context(), op)
			}
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	kind := kindOf(err)
	metrics.QueryErrorsTotal.WithLabelValues(op, kind).Inc()
	s.log.Debug("query_error", "op", op, "kind", kind, "err", err)
	writeError(w, statusOf(err), err.Error(), kind)
}

// pathParam：取路由参数；原始路径含非默认转义时再解码一次
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(v); err == nil {
			return u
		}
	}
	return v
}

func (s *Server) handleEstados(w http.ResponseWriter, r *http.Request) {
	s.query("estados", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		return newList(idx, idx.Level(ubigeo.Estado)), nil
	})
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	s.query("lookup", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		return idx.GetByCode(code)
	})
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	s.query("children", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		items, err := idx.ChildrenOf(code)
		if err != nil {
			return nil, err
		}
		return newList(idx, items), nil
	})
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	s.query("ancestors", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		items, err := idx.AncestorsOf(code)
		if err != nil {
			return nil, err
		}
		return newList(idx, items), nil
	})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	s.query("path", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		p, err := idx.FullPath(code)
		if err != nil {
			return nil, err
		}
		return newPathResponse(p), nil
	})
}

// 文档注释：名称检索
// 参数：q 为检索词；level 可为单个或逗号分隔的多个层级标签；limit 默认 50、上限 1000。
// 约束：缓存保存截断前的完整结果，limit 在命中后再应用；键含索引版本。
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	levelRaw := strings.TrimSpace(r.URL.Query().Get("level"))
	limitRaw := strings.TrimSpace(r.URL.Query().Get("limit"))
	s.query("search", w, r, func(ctx context.Context, idx *ubigeo.Index) (any, error) {
		levels, err := parseLevels(levelRaw)
		if err != nil {
			return nil, err
		}
		limit, err := parseLimit(limitRaw)
		if err != nil {
			return nil, err
		}
		key := cache.SearchKey(idx.Version(), levels, q)
		items, ok := s.search.Get(ctx, key)
		if !ok {
			items, err = idx.SearchByName(q, levels...)
			if err != nil {
				return nil, err
			}
			s.search.Set(ctx, key, items)
		}
		total := len(items)
		if len(items) > limit {
			items = items[:limit]
		}
		return searchResponse{
			Query:   q,
			Level:   strings.ToUpper(levelRaw),
			Version: idx.Version(),
			Total:   total,
			Count:   len(items),
			Items:   items,
		}, nil
	})
}

func parseLevels(raw string) ([]ubigeo.Level, error) {
	if raw == "" {
		return nil, nil
	}
	var out []ubigeo.Level
	for _, part := range strings.Split(raw, ",") {
		lv, ok := ubigeo.ParseLevel(part)
		if !ok {
			return nil, &ubigeo.InvalidQueryError{Param: "level", Value: part, Reason: "expected ESTADO, MUNICIPIO or PARROQUIA"}
		}
		out = append(out, lv)
	}
	return out, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultSearchLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxSearchLimit {
		return 0, &ubigeo.InvalidQueryError{Param: "limit", Value: raw, Reason: "expected an integer between 1 and " + strconv.Itoa(maxSearchLimit)}
	}
	return n, nil
}

func (s *Server) handleByName(w http.ResponseWriter, r *http.Request) {
	estado := pathParam(r, "estado")
	municipio := pathParam(r, "municipio")
	parroquia := pathParam(r, "parroquia")
	s.query("by_name", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		p, err := idx.ResolveNames(estado, municipio, parroquia)
		if err != nil {
			return nil, err
		}
		return newPathResponse(p), nil
	})
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	s.query("all", w, r, func(_ context.Context, idx *ubigeo.Index) (any, error) {
		return treeResponse{Version: idx.Version(), Estados: idx.Tree()}, nil
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil || !s.cfg.StatsEnabled {
		writeError(w, http.StatusServiceUnavailable, "stats disabled", "unavailable")
		return
	}
	t, err := s.stats.GetTotals(r.Context())
	if err != nil {
		s.log.Error("stats_totals_error", "err", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable", "internal")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleHealth：索引就绪返回 200 与版本信息，否则 503
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	idx, err := s.live.Load()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  idx.Version(),
		"built_at": idx.BuiltAt().UTC().Format(time.RFC3339),
		"stats":    idx.Stats(),
	})
}

// 文档注释：管理端重载
// 背景：运维更新数据集文件或数据库后手工触发；失败时旧索引继续服务。
// 约束：未配置 ADMIN_TOKEN 时一律拒绝；令牌比较使用常量时间。
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	t := r.Header.Get("x-admin-token")
	if s.cfg.AdminToken == "" || subtle.ConstantTimeCompare([]byte(t), []byte(s.cfg.AdminToken)) != 1 {
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if s.reloader == nil {
		writeError(w, http.StatusServiceUnavailable, "reload unavailable", "unavailable")
		return
	}
	idx, err := s.reloader.Reload(r.Context())
	if err != nil {
		s.log.Error("admin_reload_error", "err", err)
		writeError(w, statusOf(err), err.Error(), kindOf(err))
		return
	}
	s.log.Info("admin_reload_ok", "version", idx.Version())
	writeJSON(w, http.StatusOK, map[string]any{"version": idx.Version(), "stats": idx.Stats()})
}
