package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns on one conversation across server replicas.
// session.Manager takes it after its in-process lock.
type DistributedLocker interface {
	// Lock blocks until the lock on key (a conversation ID) is held or ctx is done.
	// The lock expires after ttl if the holder never unlocks.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
