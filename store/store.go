package store

import "sync/atomic"

// Entry 缓存中的一个条目：值本身 + 调用方声明的字节大小
type Entry[V any] struct {
	Value V
	Size  int64
}

// Store 保存 key -> Entry 的映射，以及当前已用字节数和容量
// Store 本身不加锁，调用方（objectcache.Cache）按同步策略持有锁后再调用
// size 与 capacity 使用原子类型，这样 Size()/Capacity() 可以在不加锁的情况下读取
type Store[K comparable, V any] struct {
	entries  map[K]Entry[V]
	size     atomic.Int64
	capacity atomic.Int64
}

// New 创建一个容量为 capacity 字节的 Store
func New[K comparable, V any](capacity int64) *Store[K, V] {
	s := &Store[K, V]{
		entries: make(map[K]Entry[V]),
	}
	s.capacity.Store(capacity)
	return s
}

// Put 写入新条目并累加已用字节数，key 必须不存在
func (s *Store[K, V]) Put(key K, value V, size int64) {
	if _, ok := s.entries[key]; ok {
		panic("store: key already present")
	}
	s.entries[key] = Entry[V]{Value: value, Size: size}
	s.size.Add(size)
}

// Get 查找条目
func (s *Store[K, V]) Get(key K) (Entry[V], bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Has 判断 key 是否存在
func (s *Store[K, V]) Has(key K) bool {
	_, ok := s.entries[key]
	return ok
}

// Remove 删除条目并扣减已用字节数，返回被删除的条目
func (s *Store[K, V]) Remove(key K) (Entry[V], bool) {
	e, ok := s.entries[key]
	if !ok {
		return e, false
	}
	delete(s.entries, key)
	s.size.Add(-e.Size)
	return e, true
}

// Reset 清空所有条目，返回释放的字节数
func (s *Store[K, V]) Reset() int64 {
	freed := s.size.Swap(0)
	s.entries = make(map[K]Entry[V])
	return freed
}

// Range 按 map 顺序遍历所有条目，fn 返回 false 时停止
func (s *Store[K, V]) Range(fn func(key K, e Entry[V]) bool) {
	for k, e := range s.entries {
		if !fn(k, e) {
			return
		}
	}
}

func (s *Store[K, V]) Len() int { return len(s.entries) }

func (s *Store[K, V]) Size() int64 { return s.size.Load() }

func (s *Store[K, V]) Capacity() int64 { return s.capacity.Load() }

// SetCapacity 只更新容量，超出部分由调用方通过淘汰策略释放
func (s *Store[K, V]) SetCapacity(capacity int64) {
	s.capacity.Store(capacity)
}
