package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/metrics"
	"ubigeo-api/internal/ubigeo"
)

// Search：搜索结果缓存
// 约束：键中带索引版本，重载后旧键自然失效，不主动清理
type Search interface {
	Get(ctx context.Context, key string) ([]ubigeo.Entity, bool)
	Set(ctx context.Context, key string, v []ubigeo.Entity)
	Backend() string
}

// SearchKey：ubigeo:<version>:search:<level>:<query>；level 为空时记为 all，query 取规范化形式
func SearchKey(version string, levels []ubigeo.Level, query string) string {
	lv := "all"
	if len(levels) > 0 {
		parts := make([]string, len(levels))
		for i, l := range levels {
			parts[i] = l.String()
		}
		lv = strings.Join(parts, ",")
	}
	return "ubigeo:" + version + ":search:" + lv + ":" + ubigeo.Normalize(query)
}

// NewSearch：rdb 非空时使用 Redis，否则退回进程内 LRU
func NewSearch(rdb *redis.Client, size int, ttl time.Duration) Search {
	if rdb != nil {
		return &redisSearch{rdb: rdb, ttl: ttl}
	}
	return &lruSearch{lru: NewLRU[[]ubigeo.Entity](size, ttl)}
}

type lruSearch struct {
	lru *LRU[[]ubigeo.Entity]
}

func (c *lruSearch) Backend() string { return "memory" }

func (c *lruSearch) Get(ctx context.Context, key string) ([]ubigeo.Entity, bool) {
	v, ok := c.lru.Get(key)
	observe(c.Backend(), ok)
	return v, ok
}

func (c *lruSearch) Set(ctx context.Context, key string, v []ubigeo.Entity) { c.lru.Set(key, v) }

type redisSearch struct {
	rdb *redis.Client
	ttl time.Duration
}

func (c *redisSearch) Backend() string { return "redis" }

// Get：Redis 故障按未命中处理，只记 Debug 日志
func (c *redisSearch) Get(ctx context.Context, key string) ([]ubigeo.Entity, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().Debug("search_cache_get_error", "key", key, "err", err)
		}
		observe(c.Backend(), false)
		return nil, false
	}
	var out []ubigeo.Entity
	if err := json.Unmarshal(b, &out); err != nil {
		logger.L().Debug("search_cache_decode_error", "key", key, "err", err)
		observe(c.Backend(), false)
		return nil, false
	}
	observe(c.Backend(), true)
	return out, true
}

func (c *redisSearch) Set(ctx context.Context, key string, v []ubigeo.Entity) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.L().Debug("search_cache_set_error", "key", key, "err", err)
	}
}

func observe(backend string, hit bool) {
	if hit {
		metrics.SearchCacheHitsTotal.WithLabelValues(backend).Inc()
	} else {
		metrics.SearchCacheMissesTotal.WithLabelValues(backend).Inc()
	}
}
