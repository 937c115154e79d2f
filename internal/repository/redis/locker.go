package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

const (
	lockKeyPrefix    = "gstreco:lock:"
	lockRetryBackoff = 100 * time.Millisecond
)

type sessionLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewSessionLocker creates a SessionLocker backed by redislock, for
// deployments that run more than one API instance.
func NewSessionLocker(client *redislock.Client, ttl time.Duration) port.SessionLocker {
	return &sessionLocker{client: client, ttl: ttl}
}

// Lock retries until the lock is obtained or ctx is done.
func (l *sessionLocker) Lock(ctx context.Context, key string) (port.UnlockFunc, error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetryBackoff),
	}
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, l.ttl, opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) ||
			errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.ErrSessionLocked
		}
		return nil, fmt.Errorf("sessionLocker.Lock: %w", err)
	}

	return func() {
		// Release with a fresh context; the request context may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logrus.WithFields(logrus.Fields{"key": key}).
				WithError(err).Warn("sessionLocker.Lock: releasing lock failed")
		}
	}, nil
}
