package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

type carryForwardEntry struct {
	ID        uuid.UUID      `db:"id"`
	TenantID  uuid.UUID      `db:"tenant_id"`
	Period    string         `db:"period"`
	Source    string         `db:"source"`
	Record    types.JSONText `db:"record"`
	CreatedAt time.Time      `db:"created_at"`
}

type carryForwardRepo struct {
	db *sqlx.DB
}

// NewCarryForwardRepo creates a new PostgreSQL-backed CarryForwardStore.
// Each record is one row so appends never rewrite earlier entries.
func NewCarryForwardRepo(db *sqlx.DB) port.CarryForwardStore {
	return &carryForwardRepo{db: db}
}

func (r *carryForwardRepo) Load(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error) {
	var entries []carryForwardEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, tenant_id, period, source, record, created_at
		 FROM carry_forward_entries WHERE tenant_id = $1 AND period = $2
		 ORDER BY seq`,
		tenantID, period.String())
	if err != nil {
		return nil, fmt.Errorf("carryForwardRepo.Load: %w", err)
	}

	batch := &domain.CarryForwardBatch{}
	for i := range entries {
		var rec domain.InvoiceRecord
		if err := entries[i].Record.Unmarshal(&rec); err != nil {
			return nil, fmt.Errorf("carryForwardRepo.Load decode: %w", err)
		}
		switch domain.Source(entries[i].Source) {
		case domain.SourceGSTR2B:
			batch.GSTR2B = append(batch.GSTR2B, rec)
		case domain.SourceBooks:
			batch.Books = append(batch.Books, rec)
		}
	}
	return batch, nil
}

func (r *carryForwardRepo) Append(ctx context.Context, tenantID uuid.UUID, period domain.Period, batch domain.CarryForwardBatch) error {
	if batch.Empty() {
		return nil
	}

	now := time.Now().UTC()
	entries := make([]carryForwardEntry, 0, len(batch.GSTR2B)+len(batch.Books))
	add := func(source domain.Source, records []domain.InvoiceRecord) error {
		for i := range records {
			data, err := json.Marshal(records[i])
			if err != nil {
				return err
			}
			entries = append(entries, carryForwardEntry{
				ID:        uuid.New(),
				TenantID:  tenantID,
				Period:    period.String(),
				Source:    string(source),
				Record:    data,
				CreatedAt: now,
			})
		}
		return nil
	}
	if err := add(domain.SourceGSTR2B, batch.GSTR2B); err != nil {
		return fmt.Errorf("carryForwardRepo.Append encode: %w", err)
	}
	if err := add(domain.SourceBooks, batch.Books); err != nil {
		return fmt.Errorf("carryForwardRepo.Append encode: %w", err)
	}

	// One multi-row INSERT, so a batch is stored entirely or not at all.
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO carry_forward_entries (id, tenant_id, period, source, record, created_at)
		 VALUES (:id, :tenant_id, :period, :source, :record, :created_at)`, entries)
	if err != nil {
		return fmt.Errorf("carryForwardRepo.Append: %w", err)
	}
	return nil
}
