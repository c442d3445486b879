package adapter

import (
	"context"
	"time"
)

// Locker is a cross-process mutual exclusion primitive.
type Locker interface {
	// TryLock acquires key for ttl and returns an ownership token.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	// Unlock releases key only if token still owns it.
	Unlock(ctx context.Context, key, token string) error
	// Extend resets the ttl of a key token still owns. It reports
	// domain.ErrIssueInProgress once the key has passed to someone else.
	Extend(ctx context.Context, key, token string, ttl time.Duration) error
}

// RateLimiter counts hits on a key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
