package store

import (
	"strings"

	"github.com/jmgilman/go/errors"
)

// 淘汰策略名称，用于配置
const (
	KindLRU  = "lru"
	KindFIFO = "fifo"
	KindLFU  = "lfu"
)

// Policy 定义了淘汰策略的接口
// 策略只做记账：它只知道 key 和声明的大小，从不接触缓存的值
// 策略本身不是并发安全的，调用方必须持有互斥锁
type Policy[K comparable] interface {
	// Insert 开始跟踪一个新 key，key 已被跟踪时 panic
	Insert(key K, size int64)
	// Touch 记录一次访问，key 未被跟踪时 panic
	Touch(key K)
	// Erase 停止跟踪 key，key 未被跟踪时 panic
	Erase(key K)
	// Clear 按淘汰顺序选出累计大小 >= size 的一批 key 并停止跟踪它们
	// 条目不够时提前结束，返回的 key 可能不足 size
	Clear(size int64) []K
	// Reset 清空所有跟踪状态
	Reset()
	// Len 返回被跟踪的 key 数量
	Len() int
	// Keys 按淘汰顺序（最先被淘汰的在前）返回所有 key
	Keys() []K
}

// Factory 创建一个新的空策略实例
type Factory[K comparable] func() Policy[K]

// NewPolicy 根据名称创建策略，空字符串表示 LRU
func NewPolicy[K comparable](kind string) (Policy[K], error) {
	f, err := FactoryFor[K](kind)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// FactoryFor 根据名称返回策略工厂
func FactoryFor[K comparable](kind string) (Factory[K], error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindLRU:
		return func() Policy[K] { return NewLRU[K]() }, nil
	case KindFIFO:
		return func() Policy[K] { return NewFIFO[K]() }, nil
	case KindLFU:
		return func() Policy[K] { return NewLFU[K]() }, nil
	}
	return nil, errors.WithContext(
		errors.Newf(errors.CodeInvalidConfig, "unknown eviction policy %q", kind),
		"kind", kind)
}
