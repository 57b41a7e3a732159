// Package metrics 把缓存事件导出为 Prometheus 指标
package metrics

import (
	"github.com/crypt0walker/objectcache"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "objectcache"

// NewListener 创建以 Prometheus 计数器为后端的事件监听器，并注册到 reg
// name 作为常量标签 cache 区分不同缓存
func NewListener(reg prometheus.Registerer, name string) (*objectcache.SelectiveListener, error) {
	labels := prometheus.Labels{"cache": name}

	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "hits_total",
		Help:        "Number of Get/Find calls that found the key.",
		ConstLabels: labels,
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "misses_total",
		Help:        "Number of Get/Find calls that did not find the key.",
		ConstLabels: labels,
	})
	inserts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "inserts_total",
		Help:        "Number of inserted entries.",
		ConstLabels: labels,
	})
	insertedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "inserted_bytes_total",
		Help:        "Declared bytes of inserted entries.",
		ConstLabels: labels,
	})
	erasedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "erased_bytes_total",
		Help:        "Bytes freed by explicit erase.",
		ConstLabels: labels,
	})
	evictions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "evictions_total",
		Help:        "Number of entries removed by eviction or clear.",
		ConstLabels: labels,
	})
	evictedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "evicted_bytes_total",
		Help:        "Bytes freed by eviction or clear.",
		ConstLabels: labels,
	})

	for _, c := range []prometheus.Collector{hits, misses, inserts, insertedBytes, erasedBytes, evictions, evictedBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &objectcache.SelectiveListener{
		OnHitCb:  hits.Inc,
		OnMissCb: misses.Inc,
		OnInsertCb: func(size int64) {
			inserts.Inc()
			insertedBytes.Add(float64(size))
		},
		OnEraseCb: func(size int64) {
			erasedBytes.Add(float64(size))
		},
		OnEvictCb: func(count int, size int64) {
			evictions.Add(float64(count))
			evictedBytes.Add(float64(size))
		},
	}, nil
}

// Source 可以导出容量状态的缓存
type Source interface {
	Name() string
	Size() int64
	Capacity() int64
	Count() int
}

// RegisterGauges 注册缓存当前大小、容量和条目数的 Gauge
func RegisterGauges(reg prometheus.Registerer, src Source) error {
	labels := prometheus.Labels{"cache": src.Name()}
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "size_bytes",
			Help:        "Sum of declared sizes of live entries.",
			ConstLabels: labels,
		}, func() float64 { return float64(src.Size()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "capacity_bytes",
			Help:        "Configured capacity.",
			ConstLabels: labels,
		}, func() float64 { return float64(src.Capacity()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "entries",
			Help:        "Number of live entries.",
			ConstLabels: labels,
		}, func() float64 { return float64(src.Count()) }),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}
