// 包 logger：统一初始化与获取日志器，避免各模块重复配置；级别与格式来自配置或环境变量
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 默认日志器：在进程级复用，避免多处初始化导致输出不一致
var defaultLogger atomic.Pointer[slog.Logger]

// Setup：按环境变量 LOG_LEVEL / LOG_FORMAT 初始化默认日志器
// 约束：输出目标固定为标准错误；不在此处管理文件句柄或外部聚合通道
func Setup() *slog.Logger {
	return SetupWith(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr)
}

// SetupWith：显式指定级别（debug/info/warn/error）、格式（text/json）与输出目标
func SetupWith(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	defaultLogger.Store(l)
	return l
}

// ParseLevel：未知取值回退到 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器
// 背景：为业务代码提供快捷访问；若未初始化则回退到 Setup
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return Setup()
}
