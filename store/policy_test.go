package store

import (
	"testing"

	"github.com/jmgilman/go/errors"
)

func allPolicies() map[string]Factory[int] {
	return map[string]Factory[int]{
		KindLRU:  func() Policy[int] { return NewLRU[int]() },
		KindFIFO: func() Policy[int] { return NewFIFO[int]() },
		KindLFU:  func() Policy[int] { return NewLFU[int]() },
	}
}

// 所有策略都要满足的契约
func TestPolicyContract(t *testing.T) {
	for name, newPolicy := range allPolicies() {
		t.Run(name, func(t *testing.T) {
			t.Run("duplicate insert panics", func(t *testing.T) {
				p := newPolicy()
				p.Insert(1, 1)
				expectPanic(t, func() { p.Insert(1, 1) })
			})
			t.Run("touch of untracked key panics", func(t *testing.T) {
				expectPanic(t, func() { newPolicy().Touch(7) })
			})
			t.Run("erase of untracked key panics", func(t *testing.T) {
				expectPanic(t, func() { newPolicy().Erase(7) })
			})
			t.Run("clear stops when empty", func(t *testing.T) {
				p := newPolicy()
				for i := 0; i < 5; i++ {
					p.Insert(i, 3)
				}
				if keys := p.Clear(1 << 20); len(keys) != 5 {
					t.Fatalf("expected 5 victims, got %v", keys)
				}
				if p.Len() != 0 {
					t.Fatalf("expected empty policy, got len %d", p.Len())
				}
			})
			t.Run("clear removes whole entries", func(t *testing.T) {
				p := newPolicy()
				for i := 0; i < 4; i++ {
					p.Insert(i, 10)
				}
				keys := p.Clear(11)
				if len(keys) != 2 {
					t.Fatalf("expected 2 victims for 11 bytes, got %v", keys)
				}
				if p.Len() != 2 {
					t.Fatalf("expected 2 tracked, got %d", p.Len())
				}
			})
			t.Run("non-positive target clears nothing", func(t *testing.T) {
				p := newPolicy()
				p.Insert(1, 1)
				if keys := p.Clear(0); len(keys) != 0 {
					t.Fatalf("expected no victims, got %v", keys)
				}
			})
			t.Run("keys follow removal order", func(t *testing.T) {
				p := newPolicy()
				for i := 0; i < 6; i++ {
					p.Insert(i, 1)
				}
				p.Touch(0)
				want := p.Keys()
				got := p.Clear(6)
				if len(got) != len(want) {
					t.Fatalf("expected %v, got %v", want, got)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("expected %v, got %v", want, got)
					}
				}
			})
		})
	}
}

func TestFIFO_TouchDoesNotReorder(t *testing.T) {
	p := NewFIFO[int]()
	p.Insert(1, 1)
	p.Insert(2, 1)
	p.Touch(1)

	if keys := p.Clear(1); len(keys) != 1 || keys[0] != 1 {
		t.Fatalf("expected first inserted key to go first, got %v", keys)
	}
}

func TestLFU_EvictsLeastFrequent(t *testing.T) {
	p := NewLFU[int]()
	p.Insert(1, 1)
	p.Insert(2, 1)
	p.Insert(3, 1)
	p.Touch(1)
	p.Touch(1)
	p.Touch(3)

	// 2 只被插入过一次，最先淘汰；3 其次
	keys := p.Clear(2)
	if len(keys) != 2 || keys[0] != 2 || keys[1] != 3 {
		t.Fatalf("expected [2 3], got %v", keys)
	}
}

func TestLFU_TieBreaksOnRecency(t *testing.T) {
	p := NewLFU[int]()
	p.Insert(1, 1)
	p.Insert(2, 1)

	if keys := p.Clear(1); keys[0] != 1 {
		t.Fatalf("expected older key 1 first, got %v", keys)
	}
}

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{kind: "", wantErr: false},
		{kind: "lru", wantErr: false},
		{kind: "LRU", wantErr: false},
		{kind: "fifo", wantErr: false},
		{kind: " lfu ", wantErr: false},
		{kind: "arc", wantErr: true},
	}

	for _, tt := range tests {
		p, err := NewPolicy[string](tt.kind)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("kind %q: expected error", tt.kind)
			}
			if code := errors.GetCode(err); code != errors.CodeInvalidConfig {
				t.Fatalf("kind %q: expected code %s, got %s", tt.kind, errors.CodeInvalidConfig, code)
			}
			continue
		}
		if err != nil || p == nil {
			t.Fatalf("kind %q: unexpected error %v", tt.kind, err)
		}
	}
}

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}
