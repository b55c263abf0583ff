package dataset

import (
	"context"
	"errors"
	"sync"
	"time"

	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/metrics"
	"ubigeo-api/internal/ubigeo"
)

// 文档注释：一次性加载
// 背景：读取数据源 → Parse（收集全部记录缺陷）→ Build（原子构建）；任何一步失败都不产生索引。
// 返回：就绪索引；错误为数据源读取错误、ubigeo.ParseErrors 或 ubigeo.BuildErrors 之一。
// 约束：调用方（主入口）应在首次加载失败时终止进程，不得以部分数据对外服务。
func Load(ctx context.Context, src Source) (*ubigeo.Index, error) {
	l := logger.L()
	begin := time.Now()
	recs, err := src.Records(ctx)
	if err != nil {
		l.Error("dataset_read_error", "source", src.Name(), "err", err)
		return nil, err
	}
	l.Debug("dataset_read_ok", "source", src.Name(), "records", len(recs))
	ents, err := ubigeo.Parse(recs)
	if err != nil {
		var perrs ubigeo.ParseErrors
		if errors.As(err, &perrs) {
			for _, e := range perrs {
				l.Error("dataset_parse_error", "index", e.Index, "field", e.Field, "value", e.Value, "kind", e.Kind.Error())
			}
		}
		return nil, err
	}
	idx, err := ubigeo.Build(ents)
	if err != nil {
		var berrs ubigeo.BuildErrors
		if errors.As(err, &berrs) {
			for _, e := range berrs {
				l.Error("dataset_build_error", "level", e.Level.String(), "code", e.Code, "kind", e.Kind.Error(), "detail", e.Detail)
			}
		}
		return nil, err
	}
	st := idx.Stats()
	l.Info("dataset_load_ok",
		"source", src.Name(),
		"version", idx.Version(),
		"estados", st.Estados,
		"municipios", st.Municipios,
		"parroquias", st.Parroquias,
		"duration_ms", time.Since(begin).Milliseconds(),
	)
	return idx, nil
}

// 文档注释：索引重载器
// 背景：新索引在旁路完整构建，成功后一次性替换 Live；失败时保留旧索引继续服务并记录日志。
// 约束：重载串行执行，避免并发构建互相覆盖；不会把 Live 退回未就绪状态。
type Reloader struct {
	src  Source
	live *ubigeo.Live
	mu   sync.Mutex
}

func NewReloader(src Source, live *ubigeo.Live) *Reloader {
	return &Reloader{src: src, live: live}
}

// Live：被维护的持有者
func (r *Reloader) Live() *ubigeo.Live { return r.live }

// Reload：加载并替换；返回新索引
func (r *Reloader) Reload(ctx context.Context) (*ubigeo.Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	begin := time.Now()
	idx, err := Load(ctx, r.src)
	metrics.IndexLoadDurationMs.Observe(float64(time.Since(begin).Milliseconds()))
	if err != nil {
		metrics.IndexReloadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	old := r.live.Swap(idx)
	metrics.IndexReloadsTotal.WithLabelValues("ok").Inc()
	st := idx.Stats()
	metrics.IndexEntities.WithLabelValues("estado").Set(float64(st.Estados))
	metrics.IndexEntities.WithLabelValues("municipio").Set(float64(st.Municipios))
	metrics.IndexEntities.WithLabelValues("parroquia").Set(float64(st.Parroquias))
	if old != nil {
		logger.L().Info("index_swapped", "from", old.Version(), "to", idx.Version())
	} else {
		logger.L().Info("index_ready", "version", idx.Version())
	}
	return idx, nil
}

// Start：按固定间隔后台重载，ctx 取消后退出
// 约束：interval <= 0 时不启动；失败只记日志，下个周期继续
func (r *Reloader) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	l := logger.L()
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Debug("reload_tick", "interval", interval.String())
				if _, err := r.Reload(ctx); err != nil {
					l.Error("reload_error", "err", err)
				}
			}
		}
	}()
}
