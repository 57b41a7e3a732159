package objectcache

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// KeyGenerator 生成候选 key，缓存负责检查冲突并重试
type KeyGenerator[K comparable] interface {
	NewKey() K
}

// KeyFunc 函数类型的 KeyGenerator
type KeyFunc[K comparable] func() K

func (f KeyFunc[K]) NewKey() K { return f() }

// UniformKey 生成均匀分布的随机 uint64
// 零值直接使用 math/rand/v2 的全局随机源（并发安全，随机播种）
type UniformKey struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededUniformKey 使用固定种子，便于复现
func NewSeededUniformKey(seed1, seed2 uint64) *UniformKey {
	return &UniformKey{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (g *UniformKey) NewKey() uint64 {
	if g.rng == nil {
		return rand.Uint64()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Uint64()
}

// UUIDKey 生成随机 (v4) UUID 作为 key
type UUIDKey struct{}

func (UUIDKey) NewKey() uuid.UUID { return uuid.New() }

var (
	_ KeyGenerator[uint64]    = (*UniformKey)(nil)
	_ KeyGenerator[uuid.UUID] = UUIDKey{}
	_ KeyGenerator[int]       = KeyFunc[int](nil)
)
