package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises work on one session across kernel replicas
// sharing a SessionStore. The in-process per-session lock is always taken
// first; the distributed lock is layered on top when configured.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock expires after ttl
	// even if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
