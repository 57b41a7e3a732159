package objectcache

import "sync"

// Access 缓存操作的访问类别，同步策略按类别决定用哪把锁
type Access int

const (
	// WriteAccess 修改存储或淘汰策略的操作：Insert、Erase、Clear、SetCapacity
	WriteAccess Access = iota
	// ReadAccess 取值的操作：Get、Find。取值会 Touch 淘汰策略，因此也是对策略的修改
	ReadAccess
	// TrivialAccess 只读聚合状态的操作：Contains、Count、Empty
	TrivialAccess
)

func (a Access) String() string {
	switch a {
	case WriteAccess:
		return "write"
	case ReadAccess:
		return "read"
	case TrivialAccess:
		return "trivial"
	}
	return "unknown"
}

// SyncPolicy 同步策略：为每种访问类别提供一把 sync.Locker
// 实现必须保证 WriteAccess 与 ReadAccess 返回的锁互斥，
// 因为 Get/Find 会修改淘汰策略内部的链表
type SyncPolicy interface {
	Locker(a Access) sync.Locker
}

// noopLocker 空锁
type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// NoSync 不做任何同步，单协程使用时零开销
type NoSync struct{}

func (NoSync) Locker(Access) sync.Locker { return noopLocker{} }

// ExclusiveSync 读写锁策略：写操作和取值操作独占，trivial 操作共享读锁
type ExclusiveSync struct {
	mu     sync.RWMutex
	shared sync.Locker
}

// NewExclusiveSync 创建读写锁同步策略
func NewExclusiveSync() *ExclusiveSync {
	s := &ExclusiveSync{}
	s.shared = s.mu.RLocker()
	return s
}

func (s *ExclusiveSync) Locker(a Access) sync.Locker {
	if a == TrivialAccess {
		return s.shared
	}
	return &s.mu
}

// MutexSync 所有操作共用一把互斥锁
type MutexSync struct {
	mu sync.Mutex
}

func NewMutexSync() *MutexSync { return &MutexSync{} }

func (s *MutexSync) Locker(Access) sync.Locker { return &s.mu }

var (
	_ SyncPolicy = NoSync{}
	_ SyncPolicy = (*ExclusiveSync)(nil)
	_ SyncPolicy = (*MutexSync)(nil)
)
