package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"ubigeo-api/internal/config"
	"ubigeo-api/internal/logger"
)

// OpenRedis：按配置打开 Redis 客户端
// 背景：Redis 仅承载搜索结果缓存，不可用时服务退回进程内缓存，因此探测失败只记日志并返回 nil
// 约束：REDIS_ENABLED=false 时直接返回 nil
func OpenRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if !cfg.RedisEnabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		logger.L().Warn("redis_unavailable", "addr", cfg.RedisAddr, "err", err)
		_ = rdb.Close()
		return nil
	}
	logger.L().Debug("redis_open", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return rdb
}
