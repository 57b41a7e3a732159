package objectcache_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crypt0walker/objectcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMemoGetOrLoad(t *testing.T) {
	cache := objectcache.New[string](quietLogger())
	memo := objectcache.NewMemo(cache)
	ctx := context.Background()

	var calls int
	load := func(context.Context) (string, int64, error) {
		calls++
		return "data", 4, nil
	}

	v, err := memo.GetOrLoad(ctx, "a", load)
	require.NoError(t, err)
	assert.Equal(t, "data", v)

	v, err = memo.GetOrLoad(ctx, "a", load)
	require.NoError(t, err)
	assert.Equal(t, "data", v)
	assert.Equal(t, 1, calls)

	stats := memo.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Loads)
	assert.Equal(t, 1, cache.Count())
}

func TestMemoReloadsAfterEviction(t *testing.T) {
	cache := objectcache.New[string](quietLogger(), objectcache.WithCapacity(10))
	memo := objectcache.NewMemo(cache)
	ctx := context.Background()

	var calls int
	loadA := func(context.Context) (string, int64, error) {
		calls++
		return fmt.Sprintf("a-%d", calls), 10, nil
	}
	loadB := func(context.Context) (string, int64, error) {
		return "b", 10, nil
	}

	v, err := memo.GetOrLoad(ctx, "a", loadA)
	require.NoError(t, err)
	assert.Equal(t, "a-1", v)

	// 加载 b 会把 a 淘汰
	_, err = memo.GetOrLoad(ctx, "b", loadB)
	require.NoError(t, err)

	v, err = memo.GetOrLoad(ctx, "a", loadA)
	require.NoError(t, err)
	assert.Equal(t, "a-2", v)
	assert.Equal(t, 1, cache.Count())

	// b 已被淘汰，Prune 清理它的映射
	assert.Equal(t, 1, memo.Prune())
	assert.Equal(t, 1, memo.Len())
}

func TestMemoLoadError(t *testing.T) {
	cache := objectcache.New[int](quietLogger())
	memo := objectcache.NewMemo(cache)
	boom := stderrors.New("boom")

	_, err := memo.GetOrLoad(context.Background(), "x", func(context.Context) (int, int64, error) {
		return 0, 0, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, cache.Empty())
	assert.Equal(t, int64(1), memo.Stats().LoadErrors)
}

func TestMemoInvalidNameAndForget(t *testing.T) {
	cache := objectcache.New[int](quietLogger())
	memo := objectcache.NewMemo(cache)
	ctx := context.Background()

	_, err := memo.GetOrLoad(ctx, "", func(context.Context) (int, int64, error) { return 1, 1, nil })
	assert.ErrorIs(t, err, objectcache.ErrInvalidName)

	_, err = memo.GetOrLoad(ctx, "n", func(context.Context) (int, int64, error) { return 1, 8, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(8), memo.Forget("n"))
	assert.Equal(t, int64(0), memo.Forget("n"))
	assert.True(t, cache.Empty())
}

// 同一名称的并发请求只执行一次加载
func TestMemoSuppressesDuplicateLoads(t *testing.T) {
	cache := objectcache.NewSynchronized[string](quietLogger())
	memo := objectcache.NewMemo(cache)

	var loads atomic.Int64
	start := make(chan struct{})
	var ready sync.WaitGroup
	load := func(context.Context) (string, int64, error) {
		loads.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "slow", 4, nil
	}

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		ready.Add(1)
		g.Go(func() error {
			ready.Done()
			<-start
			v, err := memo.GetOrLoad(context.Background(), "shared", load)
			if err != nil {
				return err
			}
			if v != "slow" {
				return fmt.Errorf("unexpected value %q", v)
			}
			return nil
		})
	}
	ready.Wait()
	close(start)
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), loads.Load())
	assert.Equal(t, 1, cache.Count())
}
