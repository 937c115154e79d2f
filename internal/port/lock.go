package port

import (
	"context"
)

// UnlockFunc releases a lock obtained from a SessionLocker.
type UnlockFunc func()

// SessionLocker serializes edit operations on one reconciliation session.
// Lock returns domain.ErrSessionLocked when the key is held elsewhere and
// cannot be obtained before ctx is done.
type SessionLocker interface {
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}
