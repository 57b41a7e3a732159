package objectcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// LoadFunc 加载一个值并返回它的字节大小
type LoadFunc[V any] func(ctx context.Context) (V, int64, error)

// Memo 在缓存之上按名称做记忆化
// 缓存的 key 是随机生成的，Memo 维护 名称 -> key 的映射；
// 同一名称的并发加载只会执行一次 LoadFunc
// 被多个协程共享时，底层缓存必须使用并发安全的同步策略
type Memo[K comparable, V any] struct {
	cache  *Cache[K, V]
	loader *singleflight.Group
	log    logrus.FieldLogger

	mu    sync.RWMutex // protects names
	names map[string]K

	stats memoStats
}

type memoStats struct {
	hits         atomic.Int64 // 名称命中且条目仍在缓存中
	misses       atomic.Int64 // 需要加载
	loads        atomic.Int64 // 实际执行 LoadFunc 的次数
	loadErrors   atomic.Int64 // LoadFunc 失败次数
	loadDuration atomic.Int64 // 加载总耗时（纳秒）
}

// MemoStats Memo 统计信息快照
type MemoStats struct {
	Hits         int64
	Misses       int64
	Loads        int64
	LoadErrors   int64
	LoadDuration time.Duration
}

// NewMemo 创建基于 c 的 Memo
func NewMemo[K comparable, V any](c *Cache[K, V]) *Memo[K, V] {
	if c == nil {
		panic("nil cache")
	}
	return &Memo[K, V]{
		cache:  c,
		loader: &singleflight.Group{},
		log:    c.log,
		names:  make(map[string]K),
	}
}

// GetOrLoad 返回 name 对应的缓存值；不存在或已被淘汰时调用 load 加载并写入缓存
func (m *Memo[K, V]) GetOrLoad(ctx context.Context, name string, load LoadFunc[V]) (V, error) {
	var zero V
	if name == "" {
		return zero, errors.Wrap(ErrInvalidName, errors.CodeInvalidInput, "memo name is empty")
	}

	if v, ok := m.lookup(name); ok {
		m.stats.hits.Add(1)
		return v, nil
	}
	m.stats.misses.Add(1)

	// 同一名称只加载一次，其他请求等待结果
	vi, err, shared := m.loader.Do(name, func() (interface{}, error) {
		// 等待期间可能已有其他调用完成加载
		if v, ok := m.lookup(name); ok {
			return v, nil
		}
		return m.load(ctx, name, load)
	})
	if err != nil {
		return zero, err
	}
	if shared {
		m.log.Debugf("Memo load for %s shared between callers", name)
	}
	v, _ := vi.(V)
	return v, nil
}

func (m *Memo[K, V]) lookup(name string) (V, bool) {
	m.mu.RLock()
	key, ok := m.names[name]
	m.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	return m.cache.Find(key)
}

func (m *Memo[K, V]) load(ctx context.Context, name string, load LoadFunc[V]) (V, error) {
	startTime := time.Now()
	v, size, err := load(ctx)
	m.stats.loadDuration.Add(time.Since(startTime).Nanoseconds())
	m.stats.loads.Add(1)
	if err != nil {
		m.stats.loadErrors.Add(1)
		m.log.Errorf("Memo failed to load %s: %v", name, err)
		var zero V
		return zero, fmt.Errorf("failed to load %s: %w", name, err)
	}

	key, err := m.cache.Insert(v, size)
	if err != nil {
		var zero V
		return zero, err
	}

	m.mu.Lock()
	old, existed := m.names[name]
	m.names[name] = key
	m.mu.Unlock()
	// 旧 key 对应的条目通常已被淘汰，仍在缓存中时一并删除
	if existed && old != key {
		m.cache.Erase(old)
	}
	return v, nil
}

// Forget 删除 name 的映射及其缓存条目，返回释放的字节数
func (m *Memo[K, V]) Forget(name string) int64 {
	m.mu.Lock()
	key, ok := m.names[name]
	delete(m.names, name)
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return m.cache.Erase(key)
}

// Prune 删除所有指向已被淘汰条目的名称，返回删除的数量
func (m *Memo[K, V]) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for name, key := range m.names {
		if !m.cache.Contains(key) {
			delete(m.names, name)
			pruned++
		}
	}
	return pruned
}

// Len 返回名称映射的数量（包含已被淘汰但尚未 Prune 的）
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

func (m *Memo[K, V]) Stats() MemoStats {
	return MemoStats{
		Hits:         m.stats.hits.Load(),
		Misses:       m.stats.misses.Load(),
		Loads:        m.stats.loads.Load(),
		LoadErrors:   m.stats.loadErrors.Load(),
		LoadDuration: time.Duration(m.stats.loadDuration.Load()),
	}
}
