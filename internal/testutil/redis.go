package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"codrive/internal/infra"
)

const RedisEnv = "CODRIVE_TEST_REDIS"

// NewRedis connects to the Redis at CODRIVE_TEST_REDIS (host:port) or skips the test.
// Tests use unique keys, nothing is flushed.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv(RedisEnv)
	if addr == "" {
		t.Skip(RedisEnv + " not set; skipping redis test")
	}
	client, err := infra.NewRedis(context.Background(), addr)
	if err != nil {
		t.Fatalf("testutil.NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
