package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/platform/config"
)

func TestOptions(t *testing.T) {
	opts, err := Options(config.RedisConfig{
		URL:         "redis://:pw@cache.internal:6380/2",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	_, err = Options(config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}

func TestNewWithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
