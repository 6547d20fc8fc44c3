//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"expenses/internal/platform/config"
	platformredis "expenses/internal/platform/redis"
)

// RedisContainer is a throwaway Redis reached through the same client
// constructor the server uses.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *platformredis.Client
}

// NewRedisContainer starts Redis and connects to it. Cleanup is left to Ryuk
// since the Manager shares the instance across suites.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	client, err := platformredis.New(ctx, config.RedisConfig{URL: url, PoolSize: 5})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to redis: %v", err)
	}

	return &RedisContainer{
		Container: container,
		URL:       url,
		Client:    client,
	}
}

// FlushAll removes every key so each test starts from an empty keyspace.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
