package store

import (
	"cmp"
	"container/heap"
	"slices"
)

// LFU 最不经常使用策略
// 访问次数最少的 key 最先被淘汰，次数相同时淘汰最久未访问的
// 基于小顶堆实现，Touch/Insert/Erase 为 O(log n)
type LFU[K comparable] struct {
	h     lfuHeap[K]
	items map[K]*lfuEntry[K]
	tick  uint64
}

type lfuEntry[K comparable] struct {
	key   K
	size  int64
	freq  uint64
	tick  uint64 // 最近一次访问的逻辑时间
	index int    // 在堆中的下标，由 heap.Interface 维护
}

func NewLFU[K comparable]() *LFU[K] {
	return &LFU[K]{items: make(map[K]*lfuEntry[K])}
}

var _ Policy[int] = (*LFU[int])(nil)

func (p *LFU[K]) Insert(key K, size int64) {
	if _, ok := p.items[key]; ok {
		panic("lfu: key already tracked by policy")
	}
	p.tick++
	e := &lfuEntry[K]{key: key, size: size, freq: 1, tick: p.tick}
	p.items[key] = e
	heap.Push(&p.h, e)
}

func (p *LFU[K]) Touch(key K) {
	e, ok := p.items[key]
	if !ok {
		panic("lfu: touch of untracked key")
	}
	p.tick++
	e.freq++
	e.tick = p.tick
	heap.Fix(&p.h, e.index)
}

func (p *LFU[K]) Erase(key K) {
	e, ok := p.items[key]
	if !ok {
		panic("lfu: erase of untracked key")
	}
	heap.Remove(&p.h, e.index)
	delete(p.items, key)
}

func (p *LFU[K]) Clear(size int64) []K {
	var keys []K
	var total int64
	for total < size && p.h.Len() > 0 {
		e := heap.Pop(&p.h).(*lfuEntry[K])
		delete(p.items, e.key)
		keys = append(keys, e.key)
		total += e.size
	}
	return keys
}

func (p *LFU[K]) Reset() {
	p.h = nil
	p.items = make(map[K]*lfuEntry[K])
	p.tick = 0
}

func (p *LFU[K]) Len() int { return len(p.h) }

func (p *LFU[K]) Keys() []K {
	entries := slices.Clone(p.h)
	slices.SortFunc(entries, compareLFU[K])
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

func compareLFU[K comparable](a, b *lfuEntry[K]) int {
	if c := cmp.Compare(a.freq, b.freq); c != 0 {
		return c
	}
	return cmp.Compare(a.tick, b.tick)
}

type lfuHeap[K comparable] []*lfuEntry[K]

func (h lfuHeap[K]) Len() int           { return len(h) }
func (h lfuHeap[K]) Less(i, j int) bool { return compareLFU(h[i], h[j]) < 0 }
func (h lfuHeap[K]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *lfuHeap[K]) Push(x any) {
	e := x.(*lfuEntry[K])
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *lfuHeap[K]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
