// 包 cache：搜索结果缓存（进程内 LRU 与 Redis 两种后端）
package cache

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：本地 LRU 缓存（带 TTL）
// 背景：热点查询在短周期内重复出现，使用进程内缓存降低索引扫描开销；Redis 未启用时作为搜索缓存后端。
// 约束：过期条目在读取时惰性淘汰；容量按条目数计，不估算内存。
type LRU[V any] struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type entry[V any] struct {
	k   string
	v   V
	exp time.Time
}

func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[V]{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU[V]) Get(k string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(entry[V])
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	var zero V
	return zero, false
}

func (c *LRU[V]) Set(k string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry[V]{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry[V]).k)
		c.lst.Remove(back)
	}
}

// Len：当前条目数（含尚未惰性淘汰的过期条目）
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
