package ubigeo

import (
	"errors"
	"sync/atomic"
)

// ErrNotReady：尚未有任何索引完成构建（加载进行中或首次加载失败）
var ErrNotReady = errors.New("index not ready")

// 文档注释：当前生效索引的持有者
// 背景：通过 atomic.Pointer 提供无锁读与整体切换；重载时新索引在旁路完整构建后一次性替换，
// 读者要么看到旧树要么看到新树，持有旧指针的请求可安全读完。
// 约束：显式构造并注入到处理器，不作为包级单例；Store(nil) 被忽略，不会回到未就绪状态。
type Live struct {
	p atomic.Pointer[Index]
}

// NewLive：以可选的初始索引构造持有者
func NewLive(idx *Index) *Live {
	l := &Live{}
	if idx != nil {
		l.p.Store(idx)
	}
	return l
}

// Load：读取当前索引；未就绪时返回 ErrNotReady
func (l *Live) Load() (*Index, error) {
	idx := l.p.Load()
	if idx == nil {
		return nil, ErrNotReady
	}
	return idx, nil
}

// Swap：替换为新索引并返回被替换的旧索引（首次为 nil）
func (l *Live) Swap(idx *Index) *Index {
	if idx == nil {
		return l.p.Load()
	}
	return l.p.Swap(idx)
}

// Ready：是否已有可查询的索引
func (l *Live) Ready() bool { return l.p.Load() != nil }
