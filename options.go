package objectcache

import (
	"github.com/crypt0walker/objectcache/store"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCapacity 默认容量 10MB
	DefaultCapacity int64 = 10_000_000
	// DefaultMaxKeyAttempts 生成唯一 key 的最大尝试次数
	DefaultMaxKeyAttempts = 64
)

// Options 缓存配置选项
type Options struct {
	Name           string             // 缓存名称，只用于日志和指标
	Capacity       int64              // 最大字节数
	Eviction       string             // 淘汰策略名称：lru / fifo / lfu
	NewSync        func() SyncPolicy  // 同步策略工厂，Clone 时会重新创建
	MaxKeyAttempts int                // 生成唯一 key 的最大尝试次数
	Logger         logrus.FieldLogger // 日志
	Listener       EventListener      // 事件监听，可为 nil
}

// DefaultOptions 返回默认配置：10MB、LRU、不加锁
func DefaultOptions() Options {
	return Options{
		Name:           "default",
		Capacity:       DefaultCapacity,
		Eviction:       store.KindLRU,
		NewSync:        func() SyncPolicy { return NoSync{} },
		MaxKeyAttempts: DefaultMaxKeyAttempts,
		Logger:         logrus.StandardLogger(),
	}
}

// Option 函数选项
type Option func(*Options)

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithCapacity(capacity int64) Option {
	return func(o *Options) {
		o.Capacity = capacity
	}
}

func WithEviction(kind string) Option {
	return func(o *Options) {
		o.Eviction = kind
	}
}

// WithSyncPolicy 设置同步策略工厂
func WithSyncPolicy(newSync func() SyncPolicy) Option {
	return func(o *Options) {
		o.NewSync = newSync
	}
}

// WithSynchronization 使用读写锁策略，缓存可以被多个协程并发访问
func WithSynchronization() Option {
	return WithSyncPolicy(func() SyncPolicy { return NewExclusiveSync() })
}

func WithMaxKeyAttempts(n int) Option {
	return func(o *Options) {
		o.MaxKeyAttempts = n
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithListener(l EventListener) Option {
	return func(o *Options) {
		o.Listener = l
	}
}

func (o *Options) validate() error {
	if o.Capacity < 0 {
		return invalidOptions(nil, "capacity must not be negative")
	}
	if o.MaxKeyAttempts < 1 {
		return invalidOptions(nil, "max key attempts must be positive")
	}
	if o.NewSync == nil {
		o.NewSync = func() SyncPolicy { return NoSync{} }
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return nil
}
