package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

// sessionRow mirrors the reconciliation_sessions table. Record and invoice
// lists are stored as JSONB documents.
type sessionRow struct {
	ID                   uuid.UUID      `db:"id"`
	TenantID             uuid.UUID      `db:"tenant_id"`
	Period               string         `db:"period"`
	Status               string         `db:"status"`
	Config               types.JSONText `db:"config"`
	IncludeReverseCharge bool           `db:"include_reverse_charge"`
	GSTR2BRecords        types.JSONText `db:"gstr2b_records"`
	BooksRecords         types.JSONText `db:"books_records"`
	Invoices             types.JSONText `db:"invoices"`
	Suggestions          types.JSONText `db:"suggestions"`
	RejectedSuggestions  types.JSONText `db:"rejected_suggestions"`
	Version              int            `db:"version"`
	CreatedBy            uuid.UUID      `db:"created_by"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func toRow(s *domain.ReconciliationSession) (*sessionRow, error) {
	row := &sessionRow{
		ID:                   s.ID,
		TenantID:             s.TenantID,
		Period:               s.Period.String(),
		Status:               string(s.Status),
		IncludeReverseCharge: s.IncludeReverseCharge,
		Version:              s.Version,
		CreatedBy:            s.CreatedBy,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	fields := []struct {
		dst *types.JSONText
		src interface{}
	}{
		{&row.Config, s.Config},
		{&row.GSTR2BRecords, nonNil(s.GSTR2BRecords)},
		{&row.BooksRecords, nonNil(s.BooksRecords)},
		{&row.Invoices, nonNil(s.Invoices)},
		{&row.Suggestions, nonNil(s.Suggestions)},
		{&row.RejectedSuggestions, nonNil(s.RejectedSuggestions)},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = data
	}
	return row, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (row *sessionRow) toDomain() (*domain.ReconciliationSession, error) {
	period, err := domain.ParsePeriod(row.Period)
	if err != nil {
		return nil, err
	}
	s := &domain.ReconciliationSession{
		ID:                   row.ID,
		TenantID:             row.TenantID,
		Period:               period,
		Status:               domain.SessionStatus(row.Status),
		IncludeReverseCharge: row.IncludeReverseCharge,
		Version:              row.Version,
		CreatedBy:            row.CreatedBy,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
	fields := []struct {
		src types.JSONText
		dst interface{}
	}{
		{row.Config, &s.Config},
		{row.GSTR2BRecords, &s.GSTR2BRecords},
		{row.BooksRecords, &s.BooksRecords},
		{row.Invoices, &s.Invoices},
		{row.Suggestions, &s.Suggestions},
		{row.RejectedSuggestions, &s.RejectedSuggestions},
	}
	for _, f := range fields {
		if len(f.src) == 0 {
			continue
		}
		if err := f.src.Unmarshal(f.dst); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type sessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a new PostgreSQL-backed SessionRepository.
func NewSessionRepo(db *sqlx.DB) port.SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *domain.ReconciliationSession) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Version = 1

	row, err := toRow(s)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create encode: %w", err)
	}

	query := `INSERT INTO reconciliation_sessions (
		id, tenant_id, period, status, config, include_reverse_charge,
		gstr2b_records, books_records, invoices, suggestions, rejected_suggestions,
		version, created_by, created_at, updated_at
	) VALUES (
		:id, :tenant_id, :period, :status, :config, :include_reverse_charge,
		:gstr2b_records, :books_records, :invoices, :suggestions, :rejected_suggestions,
		:version, :created_by, :created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateSession
		}
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.ReconciliationSession, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM reconciliation_sessions WHERE id = $1 AND tenant_id = $2", sessionID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}
	s, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByID decode: %w", err)
	}
	return s, nil
}

// ListByTenant returns session headers only; record and invoice lists are
// left empty to keep list responses small.
func (r *sessionRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.ReconciliationSession, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM reconciliation_sessions WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("sessionRepo.ListByTenant count: %w", err)
	}

	var rows []sessionRow
	err = r.db.SelectContext(ctx, &rows,
		`SELECT id, tenant_id, period, status, config, include_reverse_charge,
		        '[]'::jsonb AS gstr2b_records, '[]'::jsonb AS books_records,
		        '[]'::jsonb AS invoices, '[]'::jsonb AS suggestions,
		        rejected_suggestions, version, created_by, created_at, updated_at
		 FROM reconciliation_sessions WHERE tenant_id = $1
		 ORDER BY period DESC, created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("sessionRepo.ListByTenant: %w", err)
	}

	sessions := make([]domain.ReconciliationSession, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("sessionRepo.ListByTenant decode: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, total, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *domain.ReconciliationSession) error {
	s.UpdatedAt = time.Now().UTC()
	row, err := toRow(s)
	if err != nil {
		return fmt.Errorf("sessionRepo.Update encode: %w", err)
	}

	result, err := r.db.NamedExecContext(ctx,
		`UPDATE reconciliation_sessions SET
			status = :status, config = :config, include_reverse_charge = :include_reverse_charge,
			gstr2b_records = :gstr2b_records, books_records = :books_records,
			invoices = :invoices, suggestions = :suggestions,
			rejected_suggestions = :rejected_suggestions,
			version = version + 1, updated_at = :updated_at
		 WHERE id = :id AND tenant_id = :tenant_id AND version = :version`, row)
	if err != nil {
		return fmt.Errorf("sessionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM reconciliation_sessions WHERE id = $1 AND tenant_id = $2)",
			s.ID, s.TenantID); err != nil {
			return fmt.Errorf("sessionRepo.Update exists: %w", err)
		}
		if !exists {
			return domain.ErrSessionNotFound
		}
		return domain.ErrSessionConflict
	}
	s.Version++
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM reconciliation_sessions WHERE id = $1 AND tenant_id = $2",
		sessionID, tenantID)
	if err != nil {
		return fmt.Errorf("sessionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
