package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstreco/internal/domain"
)

// MockCarryForwardStore is a mock implementation of port.CarryForwardStore.
type MockCarryForwardStore struct {
	mock.Mock
}

func (m *MockCarryForwardStore) Load(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error) {
	args := m.Called(ctx, tenantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarryForwardBatch), args.Error(1)
}

func (m *MockCarryForwardStore) Append(ctx context.Context, tenantID uuid.UUID, period domain.Period, batch domain.CarryForwardBatch) error {
	args := m.Called(ctx, tenantID, period, batch)
	return args.Error(0)
}
