package lock

import (
	"context"
	"errors"
)

var (
	ErrNotAcquired = errors.New("session lock not acquired")
	ErrNotOwner    = errors.New("session lock held by another owner")
)

// ReleaseFunc releases a lock obtained from Locker.Acquire.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes work on a single cart session.
type Locker interface {
	Acquire(ctx context.Context, sessionID string) (ReleaseFunc, error)
}

type noopLocker struct{}

// NewNoop returns a Locker that never blocks. It is used when no Redis is configured.
func NewNoop() Locker {
	return noopLocker{}
}

func (noopLocker) Acquire(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
