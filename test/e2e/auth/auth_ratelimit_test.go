package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/candor/pkg/authsdk"
)

// hitVerify sends n empty verify requests and returns the last error.
func hitVerify(ctx context.Context, client *authsdk.SDKClient, n int) error {
	var err error
	for range n {
		_, err = client.Verify(ctx, authsdk.VerifyRequest{})
	}
	return err
}

// TestRateLimitVerifyEndpoint verifies the strict verify limit (5 req/min).
func TestRateLimitVerifyEndpoint(t *testing.T) {
	client := authsdk.NewSDKClient(startCandor(t, nil))
	ctx := t.Context()

	err := hitVerify(ctx, client, 5)
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest, "first five requests reach the handler")

	err = hitVerify(ctx, client, 1)
	require.ErrorIs(t, err, authsdk.ErrRateLimited)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Greater(t, apiErr.RetryAfter, time.Duration(0))
}

// TestRateLimitSharedThroughRedis checks that two replicas sharing Redis
// share one budget.
func TestRateLimitSharedThroughRedis(t *testing.T) {
	nw := startRedis(t)
	env := map[string]string{"REDIS_URL": "redis://redis:6379/0"}

	first := authsdk.NewSDKClient(startCandor(t, env, nw))
	second := authsdk.NewSDKClient(startCandor(t, env, nw))
	ctx := t.Context()

	health, err := first.Readyz(ctx)
	assertHealthy(t, health, err)
	require.Equal(t, "redis", health.Checks.Alerts)

	require.ErrorIs(t, hitVerify(ctx, first, 3), authsdk.ErrInvalidRequest)
	require.ErrorIs(t, hitVerify(ctx, second, 2), authsdk.ErrInvalidRequest)
	require.ErrorIs(t, hitVerify(ctx, second, 1), authsdk.ErrRateLimited)
}
