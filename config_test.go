package objectcache_test

import (
	"testing"

	"github.com/crypt0walker/objectcache"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions(t *testing.T) {
	cfg := objectcache.DefaultConfig()
	cfg.Name = "configured"
	cfg.Capacity = 64
	cfg.Eviction = "fifo"
	cfg.Synchronized = true
	cfg.LogLevel = "error"

	opts, err := cfg.Options()
	require.NoError(t, err)

	cache := objectcache.New[int](opts...)
	assert.Equal(t, "configured", cache.Name())
	assert.Equal(t, int64(64), cache.Capacity())
}

func TestConfigZeroValueUsesDefaults(t *testing.T) {
	opts, err := objectcache.Config{LogLevel: "panic"}.Options()
	require.NoError(t, err)

	cache := objectcache.New[int](opts...)
	assert.Equal(t, objectcache.DefaultCapacity, cache.Capacity())
	assert.Equal(t, "default", cache.Name())
}

func TestConfigInvalidLogLevel(t *testing.T) {
	_, err := objectcache.Config{LogLevel: "loud"}.Options()
	require.Error(t, err)
	assert.ErrorIs(t, err, objectcache.ErrInvalidOptions)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
