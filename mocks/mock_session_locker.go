package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstreco/internal/port"
)

// MockSessionLocker is a mock implementation of port.SessionLocker.
type MockSessionLocker struct {
	mock.Mock
}

func (m *MockSessionLocker) Lock(ctx context.Context, key string) (port.UnlockFunc, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.UnlockFunc), args.Error(1)
}
