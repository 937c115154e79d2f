package port

import (
	"context"

	"github.com/google/uuid"

	"gstreco/internal/domain"
)

// SessionRepository defines the contract for reconciliation session persistence.
// All query methods include tenantID to enforce tenant isolation at the data layer.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.ReconciliationSession) error
	GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.ReconciliationSession, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.ReconciliationSession, int, error)
	// Update writes the session when its stored version still equals
	// session.Version and increments the version on success. A stale version
	// returns domain.ErrSessionConflict.
	Update(ctx context.Context, session *domain.ReconciliationSession) error
	Delete(ctx context.Context, tenantID, sessionID uuid.UUID) error
}

// CarryForwardStore is the period-keyed append store for deferred records.
// Append never deduplicates.
type CarryForwardStore interface {
	Load(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error)
	Append(ctx context.Context, tenantID uuid.UUID, period domain.Period, batch domain.CarryForwardBatch) error
}
