package memory

import (
	"context"
	"sync"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

// SessionLocker is an in-process keyed mutex. It is only correct when a
// single API instance serves a given tenant.
type SessionLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewSessionLocker creates an empty in-process locker.
func NewSessionLocker() *SessionLocker {
	return &SessionLocker{slots: make(map[string]chan struct{})}
}

var _ port.SessionLocker = (*SessionLocker)(nil)

func (l *SessionLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock blocks until key is free or ctx is done.
func (l *SessionLocker) Lock(ctx context.Context, key string) (port.UnlockFunc, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, domain.ErrSessionLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
