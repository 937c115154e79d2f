package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gstreco/internal/domain"
	"gstreco/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND", "reconciliation session not found"
	case errors.Is(err, domain.ErrDuplicateSession):
		return http.StatusConflict, "DUPLICATE_SESSION", "a reconciliation session already exists for this period"
	case errors.Is(err, domain.ErrSessionConflict):
		return http.StatusConflict, "SESSION_CONFLICT", "session was modified concurrently; reload and retry"
	case errors.Is(err, domain.ErrSessionLocked):
		return http.StatusConflict, "SESSION_LOCKED", "session is being edited; retry shortly"
	case errors.Is(err, domain.ErrSessionNotReconciled):
		return http.StatusBadRequest, "SESSION_NOT_RECONCILED", "run the reconciliation before editing or exporting"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found in reconciliation"
	case errors.Is(err, domain.ErrInvalidMergePair):
		return http.StatusBadRequest, "INVALID_MERGE_PAIR", "merge requires one GSTR-2B-only and one Books-only invoice"
	case errors.Is(err, domain.ErrCarryForwardViaOverride):
		return http.StatusBadRequest, "CARRY_FORWARD_VIA_OVERRIDE", "use carry forward to defer invoices"
	case errors.Is(err, domain.ErrAlreadyCarriedForward):
		return http.StatusConflict, "ALREADY_CARRIED_FORWARD", "invoice has already been carried forward"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "INVALID_STATUS", "invalid match status"
	case errors.Is(err, domain.ErrInvalidCriterion):
		return http.StatusBadRequest, "INVALID_CRITERION", "invalid match criterion"
	case errors.Is(err, domain.ErrInvalidTolerance):
		return http.StatusBadRequest, "INVALID_TOLERANCE", "tolerances must not be negative"
	case errors.Is(err, domain.ErrEmptySource):
		return http.StatusBadRequest, "EMPTY_SOURCE", "import both GSTR-2B and Books records before running"
	case errors.Is(err, domain.ErrSuggestionNotFound):
		return http.StatusNotFound, "SUGGESTION_NOT_FOUND", "supplier suggestion not found"
	case errors.Is(err, domain.ErrUnsupportedImportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported file; GSTR-2B accepts json, csv, xlsx and Books accepts csv, xlsx"
	case errors.Is(err, domain.ErrMissingColumns):
		return http.StatusBadRequest, "MISSING_COLUMNS", "file must contain supplier name, invoice number and date columns"
	case errors.Is(err, domain.ErrNoRecordsFound):
		return http.StatusBadRequest, "NO_RECORDS", "no valid invoices found in the uploaded file"
	case errors.Is(err, domain.ErrInvalidSource):
		return http.StatusBadRequest, "INVALID_SOURCE", "source must be gstr2b or books"
	case errors.Is(err, domain.ErrInvalidPeriod):
		return http.StatusBadRequest, "INVALID_PERIOD", "invalid period; expected YYYY-MM"
	case errors.Is(err, domain.ErrExportFailed):
		return http.StatusInternalServerError, "EXPORT_FAILED", "export upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// extractAuthContext extracts tenant ID and user ID from the request context.
// Returns false if auth context is missing (error response already written).
func extractAuthContext(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	var err error
	tenantID, err = middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       c.FullPath(),
		}).WithError(err).Error("internal error")
	}
	RespondError(c, status, code, msg)
}
