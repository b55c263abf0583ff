package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ubigeo_requests_total",
		Help: "Total number of index queries by operation",
	}, []string{"op"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ubigeo_request_duration_ms",
		Help:    "Query handling duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"op"})
	QueryErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ubigeo_query_errors_total",
		Help: "Query failures by operation and error kind",
	}, []string{"op", "kind"})
	SearchCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ubigeo_search_cache_hits_total",
		Help: "Search cache hits by backend",
	}, []string{"backend"})
	SearchCacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ubigeo_search_cache_misses_total",
		Help: "Search cache misses by backend",
	}, []string{"backend"})
	IndexReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ubigeo_index_reloads_total",
		Help: "Index load attempts by result",
	}, []string{"result"})
	IndexLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ubigeo_index_load_duration_ms",
		Help:    "Dataset read+parse+build duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	IndexEntities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ubigeo_index_entities",
		Help: "Entities held by the active index per level",
	}, []string{"level"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ubigeo_rate_limited_total",
		Help: "Requests rejected by the token bucket",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(QueryErrorsTotal)
	prometheus.MustRegister(SearchCacheHitsTotal)
	prometheus.MustRegister(SearchCacheMissesTotal)
	prometheus.MustRegister(IndexReloadsTotal)
	prometheus.MustRegister(IndexLoadDurationMs)
	prometheus.MustRegister(IndexEntities)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
