// 包 middleware：入口限流
package middleware

import (
	"net/http"
	"sync"
	"time"

	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/metrics"
)

// 文档注释：令牌桶限流器（进程级）
// 背景：在流量峰值时对入口进行限速，避免索引扫描型查询（search/all）占满 CPU；按配置开关与速率。
// 约束：不做队列排队，桶空即丢弃并返回 429；令牌按经过时间连续补充，上限为 burst。
type TokenBucket struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	mu     sync.Mutex
	now    func() time.Time
}

func NewTokenBucket(qps float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	tb := &TokenBucket{rate: qps, burst: float64(burst), tokens: float64(burst), now: time.Now}
	tb.last = tb.now()
	return tb
}

// Allow：取走一个令牌；桶空返回 false
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	now := tb.now()
	if el := now.Sub(tb.last).Seconds(); el > 0 {
		tb.tokens += el * tb.rate
		if tb.tokens > tb.burst {
			tb.tokens = tb.burst
		}
		tb.last = now
	}
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：限流中间件；被拒请求计入 ubigeo_rate_limited_total
func RateLimit(tb *TokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.Allow() {
				metrics.RateLimitedTotal.Inc()
				logger.L().Debug("rate_limited", "path", r.URL.Path, "ip", r.RemoteAddr)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded","kind":"rate_limited"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
