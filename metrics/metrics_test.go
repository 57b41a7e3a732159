package metrics_test

import (
	"testing"

	"github.com/crypt0walker/objectcache"
	"github.com/crypt0walker/objectcache/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGaugeValue(t *testing.T, reg *prometheus.Registry, name string, expected float64) {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() == name {
			found = true
			require.Len(t, family.GetMetric(), 1, "expected 1 metric value")
			assert.Equal(t, expected, family.GetMetric()[0].GetGauge().GetValue())
		}
	}
	require.True(t, found, "metric %q not found", name)
}

func assertCounterValue(t *testing.T, reg *prometheus.Registry, name string, expected float64) {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() == name {
			found = true
			require.Len(t, family.GetMetric(), 1, "expected 1 metric value")
			assert.Equal(t, expected, family.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found, "metric %q not found", name)
}

func newCache(t *testing.T, reg *prometheus.Registry, capacity int64) *objectcache.Cache[uint64, int] {
	t.Helper()
	listener, err := metrics.NewListener(reg, "test")
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	cache := objectcache.New[int](
		objectcache.WithName("test"),
		objectcache.WithCapacity(capacity),
		objectcache.WithLogger(logger),
		objectcache.WithListener(listener),
	)
	require.NoError(t, metrics.RegisterGauges(reg, cache))
	return cache
}

func TestListenerCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache := newCache(t, reg, 20)

	k1, err := cache.Insert(1, 10)
	require.NoError(t, err)
	k2, err := cache.Insert(2, 10)
	require.NoError(t, err)

	_, ok := cache.Find(k1)
	assert.True(t, ok)

	// 第三次插入淘汰 k2（k1 刚被访问过）
	_, err = cache.Insert(3, 10)
	require.NoError(t, err)
	_, ok = cache.Find(k2)
	assert.False(t, ok)

	assert.Equal(t, int64(10), cache.Erase(k1))

	assertCounterValue(t, reg, "objectcache_hits_total", 1)
	assertCounterValue(t, reg, "objectcache_misses_total", 1)
	assertCounterValue(t, reg, "objectcache_inserts_total", 3)
	assertCounterValue(t, reg, "objectcache_inserted_bytes_total", 30)
	assertCounterValue(t, reg, "objectcache_evictions_total", 1)
	assertCounterValue(t, reg, "objectcache_evicted_bytes_total", 10)
	assertCounterValue(t, reg, "objectcache_erased_bytes_total", 10)
}

func TestGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache := newCache(t, reg, 100)

	for i := 0; i < 4; i++ {
		_, err := cache.Insert(i, 5)
		require.NoError(t, err)
	}

	assertGaugeValue(t, reg, "objectcache_size_bytes", 20)
	assertGaugeValue(t, reg, "objectcache_capacity_bytes", 100)
	assertGaugeValue(t, reg, "objectcache_entries", 4)

	cache.SetCapacity(10)
	assertGaugeValue(t, reg, "objectcache_size_bytes", 10)
	assertGaugeValue(t, reg, "objectcache_capacity_bytes", 10)
	assertGaugeValue(t, reg, "objectcache_entries", 2)

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "objectcache_entries"))
}

func TestNewListenerDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewListener(reg, "dup")
	require.NoError(t, err)

	_, err = metrics.NewListener(reg, "dup")
	require.Error(t, err)

	// 不同名称的缓存可以共用一个 registry
	_, err = metrics.NewListener(reg, "other")
	require.NoError(t, err)
}
