// Package lock serializes work on a key across service instances.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned when another holder owns the key.
var ErrLockHeld = errors.New("lock already held")

// Locker acquires short-lived exclusive locks. Acquire never blocks waiting for
// a holder: it either takes the lock or fails with ErrLockHeld.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// NopLocker grants every request. Used when no Redis is configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
