package gcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var fastBackoff = Backoff{MaxRetries: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}

func TestRetry_RecoversFromTransientErrors(t *testing.T) {
	calls := 0
	out, err := Retry(context.Background(), fastBackoff, func() (string, error) {
		calls++
		if calls < 3 {
			return "", status.Error(codes.Unavailable, "try again")
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastBackoff, func() (int, error) {
		calls++
		return 0, status.Error(codes.InvalidArgument, "bad audio")
	})

	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, 1, calls)
}

func TestRetry_GivesUpAfterBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastBackoff, func() (int, error) {
		calls++
		return 0, status.Error(codes.ResourceExhausted, "quota")
	})

	require.Error(t, err)
	assert.Equal(t, fastBackoff.MaxRetries+1, calls)
}

func TestRetry_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, fastBackoff, func() (int, error) {
		t.Fatal("fn must not run")
		return 0, nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClientOptions(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	assert.Empty(t, ClientOptions(""))
	assert.Len(t, ClientOptions("ya29.token"), 1)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/gcp/sa.json")
	assert.Len(t, ClientOptions(""), 1)
}
