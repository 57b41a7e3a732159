// Package objectcache 提供按字节限制容量的对象缓存
//
// 插入对象时缓存返回一个随机生成的唯一 key，之后用这个 key 取回对象。
// 当容量不足时，缓存按淘汰策略（默认 LRU）自动移除旧对象。
// 在可能发生淘汰的场景下，应使用 Find 或 Contains 而不是直接 Get；
// 多协程场景下 Find 是唯一能在一次加锁内完成“判断存在并取值”的方法。
//
//	c := objectcache.New[int](objectcache.WithCapacity(1 << 20))
//	key, _ := c.InsertValue(10)
//	if v, ok := c.Find(key); ok {
//		fmt.Println(v)
//	}
package objectcache

import (
	"fmt"
	"reflect"

	"github.com/crypt0walker/objectcache/store"
	"github.com/sirupsen/logrus"
)

// Cache 组合存储、淘汰策略、同步策略和 key 生成器
// 同一份实现既可以单协程无锁使用（NoSync），也可以通过替换同步策略支持并发访问
type Cache[K comparable, V any] struct {
	opts      Options
	log       logrus.FieldLogger
	sync      SyncPolicy
	store     *store.Store[K, V]
	policy    store.Policy[K]
	newPolicy store.Factory[K]
	keys      KeyGenerator[K]
	stats     cacheStats
}

// ObjectCache 可以存放任意类型对象的缓存，取值时用 GetAs / FindAs 恢复具体类型
type ObjectCache = Cache[uint64, any]

// NewCache 创建缓存
// newPolicy 为 nil 时按 Options.Eviction 选择淘汰策略
func NewCache[K comparable, V any](keys KeyGenerator[K], newPolicy store.Factory[K], opts ...Option) (*Cache[K, V], error) {
	if keys == nil {
		return nil, invalidOptions(nil, "nil key generator")
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	if newPolicy == nil {
		f, err := store.FactoryFor[K](o.Eviction)
		if err != nil {
			return nil, invalidOptions(err, "unsupported eviction policy")
		}
		newPolicy = f
	}

	c := newCache[K, V](o, keys, newPolicy)
	c.log.Infof("Cache %s created, with capacity=%d, eviction=%s", o.Name, o.Capacity, o.Eviction)
	return c, nil
}

func newCache[K comparable, V any](o Options, keys KeyGenerator[K], newPolicy store.Factory[K]) *Cache[K, V] {
	return &Cache[K, V]{
		opts:      o,
		log:       o.Logger.WithField("cache", o.Name),
		sync:      o.NewSync(),
		store:     store.New[K, V](o.Capacity),
		policy:    newPolicy(),
		newPolicy: newPolicy,
		keys:      keys,
	}
}

// New 创建使用随机 uint64 key 的缓存，选项非法时 panic
func New[V any](opts ...Option) *Cache[uint64, V] {
	c, err := NewCache[uint64, V](&UniformKey{}, nil, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewSynchronized 与 New 相同，但使用读写锁同步策略，可被多个协程共享
func NewSynchronized[V any](opts ...Option) *Cache[uint64, V] {
	return New[V](append(opts[:len(opts):len(opts)], WithSynchronization())...)
}

// Insert 以调用方声明的大小缓存一个值，返回用于取回该值的 key
// size 不会与值的实际内存占用核对。容量不足时先淘汰旧条目；
// 即使淘汰后仍放不下（例如单个条目大于容量）也照常插入，缓存暂时超出容量
func (c *Cache[K, V]) Insert(value V, size int64) (K, error) {
	var zero K
	if size < 0 {
		return zero, invalidSize(size)
	}

	l := c.sync.Locker(WriteAccess)
	l.Lock()
	defer l.Unlock()

	// 先生成 key，失败时不产生任何副作用
	key, err := c.newKeyLocked()
	if err != nil {
		return zero, err
	}

	if need := c.store.Size() + size - c.store.Capacity(); need > 0 {
		c.evictLocked(need)
		if c.store.Size()+size > c.store.Capacity() {
			c.log.Warnf("Cache %s over capacity after insert: size=%d, entry=%d, capacity=%d",
				c.opts.Name, c.store.Size(), size, c.store.Capacity())
		}
	}

	c.store.Put(key, value, size)
	c.policy.Insert(key, size)
	c.stats.inserts.Add(1)
	if c.opts.Listener != nil {
		c.opts.Listener.OnInsert(size)
	}
	return key, nil
}

// InsertValue 以 SizeOf(value) 作为大小缓存一个值
// 对切片、map 等在堆上分配内存的类型，SizeOf 只能得到头部大小，应改用 Insert
func (c *Cache[K, V]) InsertValue(value V) (K, error) {
	return c.Insert(value, SizeOf(value))
}

// newKeyLocked 生成与现有条目不冲突的 key，重试次数有上限
func (c *Cache[K, V]) newKeyLocked() (K, error) {
	var key K
	for attempt := 1; attempt <= c.opts.MaxKeyAttempts; attempt++ {
		key = c.keys.NewKey()
		if !c.store.Has(key) {
			if attempt > 1 {
				c.log.Debugf("Cache %s generated unique key after %d attempts", c.opts.Name, attempt)
			}
			return key, nil
		}
	}
	c.log.Warnf("Cache %s failed to generate a unique key after %d attempts, count=%d",
		c.opts.Name, c.opts.MaxKeyAttempts, c.store.Len())
	var zero K
	return zero, keySpaceExhausted(c.opts.MaxKeyAttempts)
}

// evictLocked 让淘汰策略选出至少 size 字节的条目并从存储中删除，返回实际释放的字节数
func (c *Cache[K, V]) evictLocked(size int64) int64 {
	keys := c.policy.Clear(size)
	if len(keys) == 0 {
		return 0
	}

	var freed int64
	for _, key := range keys {
		e, ok := c.store.Remove(key)
		if !ok {
			// 策略与存储的 key 集合不一致，属于程序错误
			panic(fmt.Sprintf("objectcache: eviction policy returned unknown key %v", key))
		}
		freed += e.Size
	}

	c.stats.evictions.Add(int64(len(keys)))
	c.stats.evictedBytes.Add(freed)
	if c.opts.Listener != nil {
		c.opts.Listener.OnEvict(len(keys), freed)
	}
	c.log.Debugf("Cache %s evicted %d entries, freed %d bytes", c.opts.Name, len(keys), freed)
	return freed
}

// Contains 判断 key 是否在缓存中，不影响淘汰顺序
func (c *Cache[K, V]) Contains(key K) bool {
	l := c.sync.Locker(TrivialAccess)
	l.Lock()
	defer l.Unlock()
	return c.store.Has(key)
}

// Get 取回 key 对应的值并将其标记为最近使用
// key 不存在时返回的错误满足 errors.Is(err, ErrKeyNotFound)
func (c *Cache[K, V]) Get(key K) (V, error) {
	v, ok := c.find(key)
	if !ok {
		return v, keyNotFound(key)
	}
	return v, nil
}

// Find 与 Get 相同，但 key 不存在时返回 false 而不是错误
func (c *Cache[K, V]) Find(key K) (V, bool) {
	return c.find(key)
}

func (c *Cache[K, V]) find(key K) (V, bool) {
	l := c.sync.Locker(ReadAccess)
	l.Lock()
	defer l.Unlock()

	e, ok := c.store.Get(key)
	if !ok {
		c.stats.misses.Add(1)
		if c.opts.Listener != nil {
			c.opts.Listener.OnMiss()
		}
		var zero V
		return zero, false
	}
	c.policy.Touch(key)
	c.stats.hits.Add(1)
	if c.opts.Listener != nil {
		c.opts.Listener.OnHit()
	}
	return e.Value, true
}

// Erase 删除 key 对应的条目，返回释放的字节数；key 不存在时返回 0
func (c *Cache[K, V]) Erase(key K) int64 {
	l := c.sync.Locker(WriteAccess)
	l.Lock()
	defer l.Unlock()

	e, ok := c.store.Remove(key)
	if !ok {
		return 0
	}
	c.policy.Erase(key)
	c.stats.erases.Add(1)
	if c.opts.Listener != nil {
		c.opts.Listener.OnErase(e.Size)
	}
	return e.Size
}

// Clear 删除所有条目，返回释放的字节数
func (c *Cache[K, V]) Clear() int64 {
	l := c.sync.Locker(WriteAccess)
	l.Lock()
	defer l.Unlock()

	count := c.store.Len()
	freed := c.store.Reset()
	c.policy.Reset()
	if count > 0 {
		c.stats.evictions.Add(int64(count))
		c.stats.evictedBytes.Add(freed)
		if c.opts.Listener != nil {
			c.opts.Listener.OnEvict(count, freed)
		}
	}
	return freed
}

// ClearBytes 按淘汰顺序删除条目直到释放至少 size 字节，返回实际释放的字节数
// 条目只会被整体删除，所以返回值可能大于 size；缓存中的条目不够时返回值小于 size
func (c *Cache[K, V]) ClearBytes(size int64) int64 {
	l := c.sync.Locker(WriteAccess)
	l.Lock()
	defer l.Unlock()
	return c.evictLocked(size)
}

// SetCapacity 设置最大容量，已用大小超过新容量时淘汰旧条目并返回释放的字节数
// 负数按 0 处理
func (c *Cache[K, V]) SetCapacity(capacity int64) int64 {
	if capacity < 0 {
		capacity = 0
	}

	l := c.sync.Locker(WriteAccess)
	l.Lock()
	defer l.Unlock()

	c.store.SetCapacity(capacity)
	if over := c.store.Size() - capacity; over > 0 {
		return c.evictLocked(over)
	}
	return 0
}

// Capacity 返回最大容量（字节），不加锁
func (c *Cache[K, V]) Capacity() int64 { return c.store.Capacity() }

// Size 返回所有条目声明大小之和（字节），不加锁
func (c *Cache[K, V]) Size() int64 { return c.store.Size() }

// Count 返回条目数量
func (c *Cache[K, V]) Count() int {
	l := c.sync.Locker(TrivialAccess)
	l.Lock()
	defer l.Unlock()
	return c.store.Len()
}

// Empty 判断缓存是否为空
func (c *Cache[K, V]) Empty() bool {
	return c.Count() == 0
}

// Keys 按淘汰顺序（下一个被淘汰的在前）返回所有 key
func (c *Cache[K, V]) Keys() []K {
	l := c.sync.Locker(ReadAccess)
	l.Lock()
	defer l.Unlock()
	return c.policy.Keys()
}

// Clone 返回一个独立的副本：相同的配置、条目和淘汰顺序，新的锁
// 值按 Go 的赋值语义复制，指针、切片等引用类型与原缓存共享底层数据
// key 生成器与原缓存共享。LFU 的访问计数不会被复制
func (c *Cache[K, V]) Clone() *Cache[K, V] {
	l := c.sync.Locker(ReadAccess)
	l.Lock()
	defer l.Unlock()

	dst := newCache[K, V](c.opts, c.keys, c.newPolicy)
	dst.store.SetCapacity(c.store.Capacity())
	for _, key := range c.policy.Keys() {
		e, _ := c.store.Get(key)
		dst.store.Put(key, e.Value, e.Size)
		dst.policy.Insert(key, e.Size)
	}
	return dst
}

// Name 返回缓存名称
func (c *Cache[K, V]) Name() string { return c.opts.Name }

// Stats 返回统计信息
func (c *Cache[K, V]) Stats() Stats { return c.stats.snapshot() }

// GetAs 从存放任意类型的缓存中取值并断言为 T
// key 不存在返回 ErrKeyNotFound，类型不符返回 ErrTypeMismatch
func GetAs[T any, K comparable](c *Cache[K, any], key K) (T, error) {
	var zero T
	v, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, typeMismatch(key, reflect.TypeFor[T]().String(), v)
	}
	return t, nil
}

// FindAs 与 GetAs 相同，但 key 不存在时返回 found=false 且 err 为 nil
func FindAs[T any, K comparable](c *Cache[K, any], key K) (value T, found bool, err error) {
	v, ok := c.Find(key)
	if !ok {
		return value, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return value, false, typeMismatch(key, reflect.TypeFor[T]().String(), v)
	}
	return t, true, nil
}
