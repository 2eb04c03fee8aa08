// Package context holds the timeouts shared by startup checks and shutdown.
package context

import (
	"context"
	"time"
)

const (
	// DefaultPingTimeout bounds a single store or cache reachability check.
	DefaultPingTimeout = 5 * time.Second
	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// WithPingTimeout returns a background context that expires after DefaultPingTimeout.
func WithPingTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultPingTimeout)
}

// WithShutdownTimeout returns a background context that expires after DefaultShutdownTimeout.
func WithShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultShutdownTimeout)
}

// PingWithin runs ping under a timeout derived from parent. A zero timeout
// uses DefaultPingTimeout.
func PingWithin(parent context.Context, timeout time.Duration, ping func(context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return ping(ctx)
}
