package gcp

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Backoff controls Retry. The zero value is replaced by DefaultBackoff.
type Backoff struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

var DefaultBackoff = Backoff{
	MaxRetries: 4,
	Initial:    750 * time.Millisecond,
	Max:        10 * time.Second,
}

// Retryable reports whether err carries a transient gRPC code
func Retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

// Retry runs fn until it succeeds, fails with a non-transient error, or the
// retry budget is spent. The delay doubles after each attempt up to b.Max.
func Retry[T any](ctx context.Context, b Backoff, fn func() (T, error)) (T, error) {
	if b.Initial <= 0 {
		b = DefaultBackoff
	}
	delay := b.Initial

	var zero T
	var last error
	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		if !Retryable(err) || attempt == b.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > b.Max {
			delay = b.Max
		}
	}
	return zero, last
}
