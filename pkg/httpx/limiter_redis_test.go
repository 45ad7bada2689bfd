package httpx_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/candor/pkg/httpx"
)

// setupRedis starts a throwaway Redis and returns a connected client.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	return client
}

func TestRedisLimiter(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("denies the call after the limit", func(t *testing.T) {
		l := httpx.NewRedisLimiter(client, "test:deny:")

		for i := range 3 {
			res := l.Check(ctx, "ip", 3, time.Minute)
			require.True(t, res.Allowed, "call %d", i+1)
			require.Equal(t, 2-i, res.Remaining)
		}

		res := l.Check(ctx, "ip", 3, time.Minute)
		require.False(t, res.Allowed)
		require.Equal(t, 0, res.Remaining)
		require.WithinDuration(t, time.Now().Add(time.Minute), res.ResetAt, 2*time.Second)

		ttl, err := client.PTTL(ctx, "test:deny:ip").Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
	})

	t.Run("resets after the window", func(t *testing.T) {
		l := httpx.NewRedisLimiter(client, "test:reset:")

		require.True(t, l.Check(ctx, "ip", 1, 200*time.Millisecond).Allowed)
		require.False(t, l.Check(ctx, "ip", 1, 200*time.Millisecond).Allowed)

		require.Eventually(t, func() bool {
			return client.Exists(ctx, "test:reset:ip").Val() == 0
		}, 2*time.Second, 50*time.Millisecond)

		require.True(t, l.Check(ctx, "ip", 1, 200*time.Millisecond).Allowed)
	})

	t.Run("fails open when redis is unreachable", func(t *testing.T) {
		dead := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
		t.Cleanup(func() { _ = dead.Close() })

		l := httpx.NewRedisLimiter(dead, "test:")
		for range 3 {
			res := l.Check(ctx, "ip", 1, time.Minute)
			require.True(t, res.Allowed)
		}
	})
}
