package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gstreco/internal/config"
	"gstreco/internal/domain"
	"gstreco/internal/export"
	"gstreco/internal/ingest"
	"gstreco/internal/port"
	"gstreco/internal/reconcile"
)

const (
	lockWait    = 10 * time.Second
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportsPath = "exports"
)

// CreateSessionInput is the DTO for opening a reconciliation session.
type CreateSessionInput struct {
	TenantID  uuid.UUID
	CreatedBy uuid.UUID
	Period    domain.Period
	// Config and IncludeReverseCharge override the service defaults when set.
	Config               *domain.MatchConfig
	IncludeReverseCharge *bool
	// PullCarryForward seeds the session with records deferred to Period.
	PullCarryForward bool
}

// ImportInput is the DTO for uploading one side of a reconciliation.
type ImportInput struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	Source    domain.Source
	Filename  string
	Body      io.Reader
}

// RunInput is the DTO for running the matching pipeline.
type RunInput struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	Config    *domain.MatchConfig
}

// OverrideInput is the DTO for a manual status override. More than one ID
// makes it a bulk override.
type OverrideInput struct {
	TenantID   uuid.UUID
	SessionID  uuid.UUID
	InvoiceIDs []string
	Status     domain.MatchStatus
	Remark     string
}

// CarryForwardInput is the DTO for deferring invoices to the next period.
type CarryForwardInput struct {
	TenantID   uuid.UUID
	SessionID  uuid.UUID
	InvoiceIDs []string
}

// MergeInput is the DTO for pairing two orphans by hand.
type MergeInput struct {
	TenantID   uuid.UUID
	SessionID  uuid.UUID
	InvoiceIDA string
	InvoiceIDB string
}

// SupplierLinkInput identifies a suggestion by its Books supplier name.
type SupplierLinkInput struct {
	TenantID          uuid.UUID
	SessionID         uuid.UUID
	BooksSupplierName string
}

// ExportResult describes an archived export.
type ExportResult struct {
	Filename string `json:"filename"`
	Key      string `json:"key"`
	URL      string `json:"url"`
}

// ReconciliationService defines the reconciliation session contract.
type ReconciliationService interface {
	Create(ctx context.Context, input *CreateSessionInput) (*domain.ReconciliationView, error)
	Get(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.ReconciliationView, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.ReconciliationSession, int, error)
	Delete(ctx context.Context, tenantID, sessionID uuid.UUID) error
	Import(ctx context.Context, input *ImportInput) (*domain.ReconciliationView, error)
	Run(ctx context.Context, input *RunInput) (*domain.ReconciliationView, error)
	Override(ctx context.Context, input *OverrideInput) (*domain.ReconciliationView, error)
	CarryForward(ctx context.Context, input *CarryForwardInput) (*domain.ReconciliationView, error)
	Merge(ctx context.Context, input *MergeInput) (*domain.ReconciliationView, error)
	MergeCandidates(ctx context.Context, tenantID, sessionID uuid.UUID, invoiceID string) ([]domain.MergeCandidate, error)
	ConfirmSupplierLink(ctx context.Context, input *SupplierLinkInput) (*domain.ReconciliationView, error)
	RejectSupplierLink(ctx context.Context, input *SupplierLinkInput) (*domain.ReconciliationView, error)
	SetReverseChargePolicy(ctx context.Context, tenantID, sessionID uuid.UUID, include bool) (*domain.ReconciliationView, error)
	PendingCarryForward(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error)
	ExportCSV(ctx context.Context, tenantID, sessionID uuid.UUID, w io.Writer) (string, error)
	ExportXLSX(ctx context.Context, tenantID, sessionID uuid.UUID) (*ExportResult, error)
}

type reconciliationService struct {
	sessions     port.SessionRepository
	carryForward port.CarryForwardStore
	locker       port.SessionLocker
	storage      port.ObjectStorage
	defaults     *config.ReconcileConfig
	s3Cfg        *config.S3Config
}

// NewReconciliationService creates a new ReconciliationService implementation.
func NewReconciliationService(
	sessions port.SessionRepository,
	carryForward port.CarryForwardStore,
	locker port.SessionLocker,
	storage port.ObjectStorage,
	defaults *config.ReconcileConfig,
	s3Cfg *config.S3Config,
) ReconciliationService {
	return &reconciliationService{
		sessions:     sessions,
		carryForward: carryForward,
		locker:       locker,
		storage:      storage,
		defaults:     defaults,
		s3Cfg:        s3Cfg,
	}
}

func sessionLogger(s *domain.ReconciliationSession) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"tenant_id":  s.TenantID,
		"session_id": s.ID,
		"period":     s.Period.String(),
	})
}

func view(s *domain.ReconciliationSession) *domain.ReconciliationView {
	return &domain.ReconciliationView{
		Session: s,
		Summary: reconcile.Summarize(s.Invoices, s.GSTR2BRecords, s.BooksRecords, s.IncludeReverseCharge),
	}
}

func (s *reconciliationService) Create(ctx context.Context, input *CreateSessionInput) (*domain.ReconciliationView, error) {
	if input.Period.IsZero() {
		return nil, domain.ErrInvalidPeriod
	}

	cfg := s.defaults.MatchConfig()
	if input.Config != nil {
		cfg = *input.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	includeRC := s.defaults.IncludeReverseCharge
	if input.IncludeReverseCharge != nil {
		includeRC = *input.IncludeReverseCharge
	}

	session := &domain.ReconciliationSession{
		ID:                   uuid.New(),
		TenantID:             input.TenantID,
		Period:               input.Period,
		Status:               domain.SessionStatusDraft,
		Config:               cfg,
		IncludeReverseCharge: includeRC,
		GSTR2BRecords:        []domain.InvoiceRecord{},
		BooksRecords:         []domain.InvoiceRecord{},
		Invoices:             []domain.UnifiedInvoice{},
		Suggestions:          []domain.SupplierSuggestion{},
		RejectedSuggestions:  []string{},
		CreatedBy:            input.CreatedBy,
	}

	if input.PullCarryForward {
		batch, err := s.carryForward.Load(ctx, input.TenantID, input.Period)
		if err != nil {
			return nil, fmt.Errorf("reconciliationService.Create load carry forward: %w", err)
		}
		session.GSTR2BRecords = append(session.GSTR2BRecords, batch.GSTR2B...)
		session.BooksRecords = append(session.BooksRecords, batch.Books...)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	sessionLogger(session).WithFields(logrus.Fields{
		"carried_gstr2b": len(session.GSTR2BRecords),
		"carried_books":  len(session.BooksRecords),
	}).Info("reconciliationService.Create: session created")
	return view(session), nil
}

func (s *reconciliationService) Get(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.ReconciliationView, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return view(session), nil
}

func (s *reconciliationService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.ReconciliationSession, int, error) {
	return s.sessions.ListByTenant(ctx, tenantID, offset, limit)
}

func (s *reconciliationService) Delete(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.sessions.Delete(ctx, tenantID, sessionID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tenant_id": tenantID, "session_id": sessionID}).
		Info("reconciliationService.Delete: session deleted")
	return nil
}

// Import replaces the uploaded records of one source. Records pulled in from
// a previous period's carry-forward and records held by carried-forward
// invoices are kept ahead of the new ones; an uploaded record equal to a held
// one is dropped. The previous run is discarded except for carried-forward
// invoices.
func (s *reconciliationService) Import(ctx context.Context, input *ImportInput) (*domain.ReconciliationView, error) {
	if !input.Source.Valid() {
		return nil, domain.ErrInvalidSource
	}
	format, err := ingest.DetectFormat(input.Filename)
	if err != nil {
		return nil, err
	}
	records, err := ingest.Parse(input.Source, format, input.Body)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		heldA, heldB := reconcile.HeldRecords(reconcile.Carried(session.Invoices))
		if input.Source == domain.SourceGSTR2B {
			session.GSTR2BRecords = replaceRecords(session.GSTR2BRecords, records, heldA)
		} else {
			session.BooksRecords = replaceRecords(session.BooksRecords, records, heldB)
		}
		resetRun(session)

		sessionLogger(session).WithFields(logrus.Fields{
			"source":  input.Source,
			"format":  format,
			"records": len(records),
		}).Info("reconciliationService.Import: records imported")
		return nil
	})
}

func replaceRecords(existing, uploaded, held []domain.InvoiceRecord) []domain.InvoiceRecord {
	free, withheld := reconcile.Withhold(existing, held)
	out := make([]domain.InvoiceRecord, 0, len(existing)+len(uploaded))
	for i := range free {
		if free[i].CarriedForwardFrom != "" {
			out = append(out, free[i])
		}
	}
	out = append(out, withheld...)
	fresh, _ := reconcile.Withhold(uploaded, held)
	return append(out, fresh...)
}

func resetRun(session *domain.ReconciliationSession) {
	session.Status = domain.SessionStatusDraft
	session.Invoices = reconcile.Carried(session.Invoices)
	if session.Invoices == nil {
		session.Invoices = []domain.UnifiedInvoice{}
	}
	session.Suggestions = []domain.SupplierSuggestion{}
}

func (s *reconciliationService) Run(ctx context.Context, input *RunInput) (*domain.ReconciliationView, error) {
	if input.Config != nil {
		if err := input.Config.Validate(); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		if input.Config != nil {
			session.Config = *input.Config
		}
		return runPipeline(session)
	})
}

// runPipeline reconciles the session's records again. Carried-forward
// invoices survive the run unchanged; every other manual edit is replaced.
func runPipeline(session *domain.ReconciliationSession) error {
	if len(session.GSTR2BRecords) == 0 || len(session.BooksRecords) == 0 {
		return domain.ErrEmptySource
	}

	result := reconcile.Rerun(session.GSTR2BRecords, session.BooksRecords, session.Invoices, session.Config, session.IncludeReverseCharge)
	session.Invoices = result.Invoices
	session.Suggestions = withoutRejected(result.Suggestions, session.RejectedSuggestions)
	session.Status = domain.SessionStatusReconciled

	sessionLogger(session).WithFields(logrus.Fields{
		"invoices":    len(result.Invoices),
		"carried":     result.Summary.CarriedForward,
		"exact":       result.Summary.ExactMatches,
		"partial":     result.Summary.PartialProbableMatches,
		"unmatched":   result.Summary.Unmatched,
		"suggestions": len(session.Suggestions),
	}).Info("reconciliationService.Run: reconciliation complete")
	return nil
}

func withoutRejected(suggestions []domain.SupplierSuggestion, rejected []string) []domain.SupplierSuggestion {
	out := make([]domain.SupplierSuggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if !containsName(rejected, sg.BooksSupplierName) {
			out = append(out, sg)
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	key := reconcile.NormalizeName(name)
	for _, n := range names {
		if reconcile.NormalizeName(n) == key {
			return true
		}
	}
	return false
}

// Override applies a manual status. A carried_forward target is routed
// through carry-forward so the records reach the next period's store.
func (s *reconciliationService) Override(ctx context.Context, input *OverrideInput) (*domain.ReconciliationView, error) {
	if input.Status == domain.MatchStatusCarriedForward {
		return s.CarryForward(ctx, &CarryForwardInput{
			TenantID:   input.TenantID,
			SessionID:  input.SessionID,
			InvoiceIDs: input.InvoiceIDs,
		})
	}

	return s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		if err := requireReconciled(session); err != nil {
			return err
		}
		ids := normalizeIDs(input.InvoiceIDs)
		bulk := len(ids) > 1
		invoices, err := reconcile.Override(session.Invoices, ids, input.Status, input.Remark, bulk)
		if err != nil {
			return err
		}
		session.Invoices = invoices

		sessionLogger(session).WithFields(logrus.Fields{
			"invoices": len(ids),
			"status":   input.Status,
			"bulk":     bulk,
		}).Info("reconciliationService.Override: status overridden")
		return nil
	})
}

// CarryForward appends the selected invoices' records to the next period's
// store before persisting the updated list. A failed append leaves the
// session untouched.
//
// The store and the session are not written atomically. When the session
// save fails after a successful append, the next period already holds the
// records while this session still shows them open; the batch is logged at
// error level and a blind retry appends it a second time.
func (s *reconciliationService) CarryForward(ctx context.Context, input *CarryForwardInput) (*domain.ReconciliationView, error) {
	var (
		appended   *domain.CarryForwardBatch
		appendedTo domain.Period
	)
	v, err := s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		if err := requireReconciled(session); err != nil {
			return err
		}
		ids := normalizeIDs(input.InvoiceIDs)
		batch, invoices, err := reconcile.CarryForward(session.Invoices, ids, session.Period)
		if err != nil {
			return err
		}

		next := session.Period.Next()
		if err := s.carryForward.Append(ctx, session.TenantID, next, batch); err != nil {
			return fmt.Errorf("reconciliationService.CarryForward append: %w", err)
		}
		appended, appendedTo = &batch, next
		session.Invoices = invoices

		sessionLogger(session).WithFields(logrus.Fields{
			"invoices": len(ids),
			"to":       next.String(),
		}).Info("reconciliationService.CarryForward: invoices carried forward")
		return nil
	})
	if err != nil && appended != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id":      input.TenantID,
			"session_id":     input.SessionID,
			"to":             appendedTo.String(),
			"invoice_ids":    input.InvoiceIDs,
			"gstr2b_records": len(appended.GSTR2B),
			"books_records":  len(appended.Books),
		}).WithError(err).Error("reconciliationService.CarryForward: records appended to next period but session not saved")
	}
	return v, err
}

func (s *reconciliationService) Merge(ctx context.Context, input *MergeInput) (*domain.ReconciliationView, error) {
	return s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		if err := requireReconciled(session); err != nil {
			return err
		}
		invoices, merged, err := reconcile.Merge(session.Invoices, input.InvoiceIDA, input.InvoiceIDB, session.Config)
		if err != nil {
			return err
		}
		session.Invoices = invoices

		sessionLogger(session).WithFields(logrus.Fields{
			"merged_id": merged.ID,
			"status":    merged.MatchStatus,
		}).Info("reconciliationService.Merge: invoices merged")
		return nil
	})
}

// MergeCandidates ranks the opposite-side orphans of an orphan invoice as
// merge partners, best first. It reads the session without locking it.
func (s *reconciliationService) MergeCandidates(ctx context.Context, tenantID, sessionID uuid.UUID, invoiceID string) ([]domain.MergeCandidate, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireReconciled(session); err != nil {
		return nil, err
	}
	candidates, err := reconcile.RankMergeCandidates(session.Invoices, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("reconciliationService.MergeCandidates: %w", err)
	}
	return candidates, nil
}

// ConfirmSupplierLink copies the suggested GSTIN onto the Books records of
// that supplier and re-runs the pipeline. Earlier manual edits other than
// carry-forward are replaced by the fresh run.
func (s *reconciliationService) ConfirmSupplierLink(ctx context.Context, input *SupplierLinkInput) (*domain.ReconciliationView, error) {
	return s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		if err := requireReconciled(session); err != nil {
			return err
		}
		suggestion, ok := findSuggestion(session.Suggestions, input.BooksSupplierName)
		if !ok {
			return domain.ErrSuggestionNotFound
		}

		_, heldBooks := reconcile.HeldRecords(reconcile.Carried(session.Invoices))
		books, linked := reconcile.ApplySupplierLink(session.BooksRecords, suggestion, heldBooks)
		session.BooksRecords = books

		sessionLogger(session).WithFields(logrus.Fields{
			"books_supplier": suggestion.BooksSupplierName,
			"gstin":          suggestion.GSTR2BSupplier.GSTIN,
			"records":        linked,
		}).Info("reconciliationService.ConfirmSupplierLink: supplier linked")
		return runPipeline(session)
	})
}

func (s *reconciliationService) RejectSupplierLink(ctx context.Context, input *SupplierLinkInput) (*domain.ReconciliationView, error) {
	return s.mutate(ctx, input.TenantID, input.SessionID, func(session *domain.ReconciliationSession) error {
		suggestion, ok := findSuggestion(session.Suggestions, input.BooksSupplierName)
		if !ok {
			return domain.ErrSuggestionNotFound
		}
		session.RejectedSuggestions = append(session.RejectedSuggestions, reconcile.NormalizeName(suggestion.BooksSupplierName))
		session.Suggestions = withoutRejected(session.Suggestions, session.RejectedSuggestions)

		sessionLogger(session).WithField("books_supplier", suggestion.BooksSupplierName).
			Info("reconciliationService.RejectSupplierLink: suggestion dismissed")
		return nil
	})
}

func findSuggestion(suggestions []domain.SupplierSuggestion, booksName string) (domain.SupplierSuggestion, bool) {
	key := reconcile.NormalizeName(booksName)
	for _, sg := range suggestions {
		if reconcile.NormalizeName(sg.BooksSupplierName) == key {
			return sg, true
		}
	}
	return domain.SupplierSuggestion{}, false
}

func (s *reconciliationService) SetReverseChargePolicy(ctx context.Context, tenantID, sessionID uuid.UUID, include bool) (*domain.ReconciliationView, error) {
	return s.mutate(ctx, tenantID, sessionID, func(session *domain.ReconciliationSession) error {
		session.IncludeReverseCharge = include
		return nil
	})
}

func (s *reconciliationService) PendingCarryForward(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error) {
	batch, err := s.carryForward.Load(ctx, tenantID, period)
	if err != nil {
		return nil, fmt.Errorf("reconciliationService.PendingCarryForward: %w", err)
	}
	return batch, nil
}

// ExportCSV streams the invoice list to w and returns the download filename.
func (s *reconciliationService) ExportCSV(ctx context.Context, tenantID, sessionID uuid.UUID, w io.Writer) (string, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return "", err
	}
	if err := requireReconciled(session); err != nil {
		return "", err
	}
	if err := export.WriteCSV(w, session.Invoices); err != nil {
		return "", fmt.Errorf("reconciliationService.ExportCSV: %w", err)
	}
	return export.BuildFilename(session.Period, "csv", time.Now()), nil
}

// ExportXLSX archives a workbook to object storage and returns a presigned
// download link. The object is removed again when presigning fails.
func (s *reconciliationService) ExportXLSX(ctx context.Context, tenantID, sessionID uuid.UUID) (*ExportResult, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireReconciled(session); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	summary := view(session).Summary
	if err := export.WriteXLSX(&buf, session.Period, session.Invoices, &summary); err != nil {
		return nil, fmt.Errorf("reconciliationService.ExportXLSX render: %w", err)
	}

	filename := export.BuildFilename(session.Period, "xlsx", time.Now())
	key := fmt.Sprintf("%s/%s/%s/%s-%s", exportsPath, tenantID, sessionID, uuid.New().String()[:8], filename)
	log := sessionLogger(session).WithField("key", key)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:             s.s3Cfg.Bucket,
		Key:                key,
		Body:               &buf,
		ContentType:        xlsxMIME,
		ContentDisposition: fmt.Sprintf(`attachment; filename="%s"`, filename),
	})
	if err != nil {
		log.WithError(err).Error("reconciliationService.ExportXLSX: upload failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); delErr != nil {
			log.WithError(delErr).Warn("reconciliationService.ExportXLSX: cleanup failed")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	log.Info("reconciliationService.ExportXLSX: export archived")
	return &ExportResult{Filename: filename, Key: key, URL: url}, nil
}

func requireReconciled(session *domain.ReconciliationSession) error {
	if session.Status != domain.SessionStatusReconciled {
		return domain.ErrSessionNotReconciled
	}
	return nil
}

func (s *reconciliationService) lock(ctx context.Context, sessionID uuid.UUID) (port.UnlockFunc, error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	return s.locker.Lock(lockCtx, "session:"+sessionID.String())
}

// mutate loads the session under the session lock, applies fn and writes it
// back. fn errors abort without writing.
func (s *reconciliationService) mutate(
	ctx context.Context,
	tenantID, sessionID uuid.UUID,
	fn func(*domain.ReconciliationSession) error,
) (*domain.ReconciliationView, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		if !errors.Is(err, domain.ErrSessionConflict) {
			sessionLogger(session).WithError(err).Error("reconciliationService.mutate: update failed")
		}
		return nil, err
	}
	return view(session), nil
}

// normalizeIDs trims blanks from a client supplied ID list.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
