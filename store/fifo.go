package store

import "container/list"

// FIFO 先进先出策略，访问不会改变淘汰顺序
type FIFO[K comparable] struct {
	ll    *list.List
	items map[K]*list.Element
}

type fifoEntry[K comparable] struct {
	key  K
	size int64
}

func NewFIFO[K comparable]() *FIFO[K] {
	return &FIFO[K]{
		ll:    list.New(),
		items: make(map[K]*list.Element),
	}
}

var _ Policy[int] = (*FIFO[int])(nil)

func (p *FIFO[K]) Insert(key K, size int64) {
	if _, ok := p.items[key]; ok {
		panic("fifo: key already tracked by policy")
	}
	p.items[key] = p.ll.PushBack(&fifoEntry[K]{key: key, size: size})
}

// Touch 只校验 key 是否被跟踪
func (p *FIFO[K]) Touch(key K) {
	if _, ok := p.items[key]; !ok {
		panic("fifo: touch of untracked key")
	}
}

func (p *FIFO[K]) Erase(key K) {
	ele, ok := p.items[key]
	if !ok {
		panic("fifo: erase of untracked key")
	}
	p.ll.Remove(ele)
	delete(p.items, key)
}

// Clear 从最早插入的 key 开始淘汰
func (p *FIFO[K]) Clear(size int64) []K {
	var keys []K
	var total int64
	for total < size {
		ele := p.ll.Front()
		if ele == nil {
			break
		}
		entry := ele.Value.(*fifoEntry[K])
		p.ll.Remove(ele)
		delete(p.items, entry.key)
		keys = append(keys, entry.key)
		total += entry.size
	}
	return keys
}

func (p *FIFO[K]) Reset() {
	p.ll.Init()
	p.items = make(map[K]*list.Element)
}

func (p *FIFO[K]) Len() int { return p.ll.Len() }

func (p *FIFO[K]) Keys() []K {
	keys := make([]K, 0, p.ll.Len())
	for ele := p.ll.Front(); ele != nil; ele = ele.Next() {
		keys = append(keys, ele.Value.(*fifoEntry[K]).key)
	}
	return keys
}
