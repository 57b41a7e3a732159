// 基于golang标准库list实现的LRU淘汰策略
package store

import "container/list"

// LRU 最近最少使用策略
// 链表头部是最近使用的 key，尾部是最久未使用的 key，items 用于 O(1) 定位链表节点
type LRU[K comparable] struct {
	ll    *list.List
	items map[K]*list.Element
}

// 链表节点中保存的记录
// 淘汰尾部节点时需要知道它的 key 才能同步删除 items 中的映射，所以不能只存 size
type lruEntry[K comparable] struct {
	key  K
	size int64
}

// NewLRU 创建一个空的 LRU 策略
func NewLRU[K comparable]() *LRU[K] {
	return &LRU[K]{
		ll:    list.New(),
		items: make(map[K]*list.Element),
	}
}

var _ Policy[int] = (*LRU[int])(nil)

// Insert 把新 key 放到链表头部
func (p *LRU[K]) Insert(key K, size int64) {
	if _, ok := p.items[key]; ok {
		panic("lru: key already tracked by policy")
	}
	p.items[key] = p.ll.PushFront(&lruEntry[K]{key: key, size: size})
}

// Touch 把 key 移动到链表头部表示最近使用
func (p *LRU[K]) Touch(key K) {
	ele, ok := p.items[key]
	if !ok {
		panic("lru: touch of untracked key")
	}
	p.ll.MoveToFront(ele)
}

// Erase 从链表和索引中删除 key
func (p *LRU[K]) Erase(key K) {
	ele, ok := p.items[key]
	if !ok {
		panic("lru: erase of untracked key")
	}
	p.removeElement(ele)
}

// Clear 从尾部开始淘汰，直到累计释放 size 字节或链表为空
func (p *LRU[K]) Clear(size int64) []K {
	var keys []K
	var total int64
	for total < size {
		ele := p.ll.Back()
		if ele == nil {
			break
		}
		entry := p.removeElement(ele)
		keys = append(keys, entry.key)
		total += entry.size
	}
	return keys
}

// removeElement 从链表和索引中同时删除节点
func (p *LRU[K]) removeElement(ele *list.Element) *lruEntry[K] {
	entry := ele.Value.(*lruEntry[K])
	p.ll.Remove(ele)
	delete(p.items, entry.key)
	return entry
}

func (p *LRU[K]) Reset() {
	p.ll.Init()
	p.items = make(map[K]*list.Element)
}

func (p *LRU[K]) Len() int { return p.ll.Len() }

// Keys 从尾部（最久未使用）到头部返回所有 key
func (p *LRU[K]) Keys() []K {
	keys := make([]K, 0, p.ll.Len())
	for ele := p.ll.Back(); ele != nil; ele = ele.Prev() {
		keys = append(keys, ele.Value.(*lruEntry[K]).key)
	}
	return keys
}
