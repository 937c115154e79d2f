package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrSessionNotFound         = errors.New("reconciliation session not found")
	ErrSessionConflict         = errors.New("reconciliation session was modified concurrently")
	ErrSessionLocked           = errors.New("reconciliation session is being edited")
	ErrSessionNotReconciled    = errors.New("reconciliation has not been run for this session")
	ErrInvoiceNotFound         = errors.New("invoice not found in reconciliation")
	ErrInvalidMergePair        = errors.New("merge requires one GSTR-2B-only and one Books-only invoice")
	ErrCarryForwardViaOverride = errors.New("carried forward status must be applied through carry forward")
	ErrAlreadyCarriedForward   = errors.New("invoice has already been carried forward")
	ErrInvalidStatus           = errors.New("invalid match status")
	ErrInvalidCriterion        = errors.New("invalid match criterion")
	ErrInvalidTolerance        = errors.New("tolerances must not be negative")
	ErrEmptySource             = errors.New("both GSTR-2B and Books records are required")
	ErrSuggestionNotFound      = errors.New("supplier suggestion not found")
	ErrUnsupportedImportFormat = errors.New("unsupported import format")
	ErrInvalidSource           = errors.New("invalid source")
	ErrInvalidPeriod           = errors.New("invalid period; expected YYYY-MM")
	ErrNoRecordsFound          = errors.New("no valid invoices found in the uploaded file")
	ErrExportFailed            = errors.New("export upload to storage failed")
	ErrDuplicateSession        = errors.New("a reconciliation session already exists for this period")
	ErrMissingColumns          = errors.New("file must contain supplier name, invoice number and date columns")
)
