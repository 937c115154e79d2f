package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstreco/internal/domain"
	"gstreco/internal/service"
)

// MockReconciliationService is a mock implementation of service.ReconciliationService.
type MockReconciliationService struct {
	mock.Mock
}

func viewResult(args mock.Arguments) (*domain.ReconciliationView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationView), args.Error(1)
}

func (m *MockReconciliationService) Create(ctx context.Context, input *service.CreateSessionInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) Get(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, tenantID, sessionID))
}

func (m *MockReconciliationService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.ReconciliationSession, int, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReconciliationSession), args.Int(1), args.Error(2)
}

func (m *MockReconciliationService) Delete(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Error(0)
}

func (m *MockReconciliationService) Import(ctx context.Context, input *service.ImportInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) Run(ctx context.Context, input *service.RunInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) Override(ctx context.Context, input *service.OverrideInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) CarryForward(ctx context.Context, input *service.CarryForwardInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) Merge(ctx context.Context, input *service.MergeInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) MergeCandidates(ctx context.Context, tenantID, sessionID uuid.UUID, invoiceID string) ([]domain.MergeCandidate, error) {
	args := m.Called(ctx, tenantID, sessionID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MergeCandidate), args.Error(1)
}

func (m *MockReconciliationService) ConfirmSupplierLink(ctx context.Context, input *service.SupplierLinkInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) RejectSupplierLink(ctx context.Context, input *service.SupplierLinkInput) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, input))
}

func (m *MockReconciliationService) SetReverseChargePolicy(ctx context.Context, tenantID, sessionID uuid.UUID, include bool) (*domain.ReconciliationView, error) {
	return viewResult(m.Called(ctx, tenantID, sessionID, include))
}

func (m *MockReconciliationService) PendingCarryForward(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error) {
	args := m.Called(ctx, tenantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarryForwardBatch), args.Error(1)
}

func (m *MockReconciliationService) ExportCSV(ctx context.Context, tenantID, sessionID uuid.UUID, w io.Writer) (string, error) {
	args := m.Called(ctx, tenantID, sessionID, w)
	return args.String(0), args.Error(1)
}

func (m *MockReconciliationService) ExportXLSX(ctx context.Context, tenantID, sessionID uuid.UUID) (*service.ExportResult, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
