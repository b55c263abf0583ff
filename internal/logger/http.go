// 包 logger：http访问日志中间件，统一记录外部访问的关键维度（方法、路由、状态、耗时、字节数、请求 ID）
package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// statusWriter：包装 ResponseWriter 以捕获状态码与写出字节数
// 背景：标准库不暴露已写状态，需中间件层统计响应信息
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

// WriteHeader：捕获状态码并透传写头
func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Write：累加写出字节数并透传写入
func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessMiddleware：生成访问日志中间件
// 约束：需挂在 chi 的 RequestID 之后才能带出 req_id；route 为匹配到的路由模板而非原始路径，
// 4xx/5xx 以 Info 级别输出，其余为 Debug。
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: 200}
			start := time.Now()
			next.ServeHTTP(sw, r)
			route := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				route = rc.RoutePattern()
			}
			lvl := slog.LevelDebug
			if sw.status >= 400 {
				lvl = slog.LevelInfo
			}
			l.Log(r.Context(), lvl, "http_access",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", r.RemoteAddr,
				"req_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
