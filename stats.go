package objectcache

import "sync/atomic"

// EventListener 接收缓存事件，用于接入指标系统
// 回调在持有缓存锁时执行，不能再调用同一个缓存的方法
type EventListener interface {
	OnHit()
	OnMiss()
	OnInsert(size int64)
	OnErase(size int64)
	OnEvict(count int, size int64)
}

// SelectiveListener 只实现关心的回调，其余为空
type SelectiveListener struct {
	OnHitCb    func()
	OnMissCb   func()
	OnInsertCb func(size int64)
	OnEraseCb  func(size int64)
	OnEvictCb  func(count int, size int64)
}

var _ EventListener = (*SelectiveListener)(nil)

func (l *SelectiveListener) OnHit() {
	if l.OnHitCb != nil {
		l.OnHitCb()
	}
}

func (l *SelectiveListener) OnMiss() {
	if l.OnMissCb != nil {
		l.OnMissCb()
	}
}

func (l *SelectiveListener) OnInsert(size int64) {
	if l.OnInsertCb != nil {
		l.OnInsertCb(size)
	}
}

func (l *SelectiveListener) OnErase(size int64) {
	if l.OnEraseCb != nil {
		l.OnEraseCb(size)
	}
}

func (l *SelectiveListener) OnEvict(count int, size int64) {
	if l.OnEvictCb != nil {
		l.OnEvictCb(count, size)
	}
}

// cacheStats 保存缓存的统计信息
type cacheStats struct {
	hits         atomic.Int64 // Get/Find 命中次数
	misses       atomic.Int64 // Get/Find 未命中次数
	inserts      atomic.Int64 // 插入次数
	erases       atomic.Int64 // 显式删除次数
	evictions    atomic.Int64 // 因容量或 Clear 被移除的条目数
	evictedBytes atomic.Int64 // 因容量或 Clear 释放的字节数
}

// Stats 统计信息快照
type Stats struct {
	Hits         int64
	Misses       int64
	Inserts      int64
	Erases       int64
	Evictions    int64
	EvictedBytes int64
}

func (s *cacheStats) snapshot() Stats {
	return Stats{
		Hits:         s.hits.Load(),
		Misses:       s.misses.Load(),
		Inserts:      s.inserts.Load(),
		Erases:       s.erases.Load(),
		Evictions:    s.evictions.Load(),
		EvictedBytes: s.evictedBytes.Load(),
	}
}
