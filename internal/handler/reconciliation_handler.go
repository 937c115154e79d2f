package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstreco/internal/domain"
	"gstreco/internal/export"
	"gstreco/internal/service"
)

// ReconciliationHandler handles reconciliation session endpoints.
type ReconciliationHandler struct {
	svc            service.ReconciliationService
	maxUploadBytes int64
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(svc service.ReconciliationService, maxUploadMB int64) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc, maxUploadBytes: maxUploadMB << 20}
}

type matchConfigRequest struct {
	Criteria   []domain.Criterion `json:"criteria"`
	Tolerances *domain.Tolerances `json:"tolerances"`
}

// toDomain fills missing tolerances with the defaults.
func (r *matchConfigRequest) toDomain() *domain.MatchConfig {
	if r == nil {
		return nil
	}
	cfg := domain.DefaultMatchConfig()
	if r.Criteria != nil {
		cfg.Criteria = r.Criteria
	}
	if r.Tolerances != nil {
		cfg.Tolerances = *r.Tolerances
	}
	return &cfg
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid reconciliation ID")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/v1/reconciliations
func (h *ReconciliationHandler) Create(c *gin.Context) {
	tenantID, userID, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var req struct {
		Period               string              `json:"period" binding:"required"`
		Config               *matchConfigRequest `json:"config"`
		IncludeReverseCharge *bool               `json:"include_reverse_charge"`
		PullCarryForward     bool                `json:"pull_carry_forward"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "period is required")
		return
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		HandleError(c, err)
		return
	}

	v, err := h.svc.Create(c.Request.Context(), &service.CreateSessionInput{
		TenantID:             tenantID,
		CreatedBy:            userID,
		Period:               period,
		Config:               req.Config.toDomain(),
		IncludeReverseCharge: req.IncludeReverseCharge,
		PullCarryForward:     req.PullCarryForward,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, v)
}

// List handles GET /api/v1/reconciliations
func (h *ReconciliationHandler) List(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	sessions, total, err := h.svc.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, sessions, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/reconciliations/:id
func (h *ReconciliationHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	v, err := h.svc.Get(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// Delete handles DELETE /api/v1/reconciliations/:id
func (h *ReconciliationHandler) Delete(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), tenantID, sessionID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "reconciliation deleted"})
}

// Import handles POST /api/v1/reconciliations/:id/imports/:source
// (multipart form field "file").
func (h *ReconciliationHandler) Import(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	source := domain.Source(c.Param("source"))
	if !source.Valid() {
		HandleError(c, domain.ErrInvalidSource)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return
	}
	if header.Size > h.maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return
	}
	file, err := header.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file")
		return
	}
	defer file.Close()

	v, err := h.svc.Import(c.Request.Context(), &service.ImportInput{
		TenantID:  tenantID,
		SessionID: sessionID,
		Source:    source,
		Filename:  header.Filename,
		Body:      file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// Run handles POST /api/v1/reconciliations/:id/run
func (h *ReconciliationHandler) Run(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Config *matchConfigRequest `json:"config"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid match configuration")
			return
		}
	}

	v, err := h.svc.Run(c.Request.Context(), &service.RunInput{
		TenantID:  tenantID,
		SessionID: sessionID,
		Config:    req.Config.toDomain(),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// Override handles POST /api/v1/reconciliations/:id/overrides
func (h *ReconciliationHandler) Override(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		InvoiceIDs []string           `json:"invoice_ids" binding:"required,min=1"`
		Status     domain.MatchStatus `json:"status" binding:"required"`
		Remark     string             `json:"remark"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invoice_ids and status are required")
		return
	}

	v, err := h.svc.Override(c.Request.Context(), &service.OverrideInput{
		TenantID:   tenantID,
		SessionID:  sessionID,
		InvoiceIDs: req.InvoiceIDs,
		Status:     req.Status,
		Remark:     req.Remark,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// CarryForward handles POST /api/v1/reconciliations/:id/carry-forward
func (h *ReconciliationHandler) CarryForward(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invoice_ids is required")
		return
	}

	v, err := h.svc.CarryForward(c.Request.Context(), &service.CarryForwardInput{
		TenantID:   tenantID,
		SessionID:  sessionID,
		InvoiceIDs: req.InvoiceIDs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// Merge handles POST /api/v1/reconciliations/:id/merge
func (h *ReconciliationHandler) Merge(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		InvoiceIDs []string `json:"invoice_ids" binding:"required,len=2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "exactly two invoice_ids are required")
		return
	}

	v, err := h.svc.Merge(c.Request.Context(), &service.MergeInput{
		TenantID:   tenantID,
		SessionID:  sessionID,
		InvoiceIDA: req.InvoiceIDs[0],
		InvoiceIDB: req.InvoiceIDs[1],
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// MergeCandidates handles GET /api/v1/reconciliations/:id/invoices/:invoiceId/candidates
func (h *ReconciliationHandler) MergeCandidates(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceId")

	candidates, err := h.svc.MergeCandidates(c.Request.Context(), tenantID, sessionID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"invoice_id": invoiceID, "candidates": candidates})
}

func (h *ReconciliationHandler) bindSupplierLink(c *gin.Context) (*service.SupplierLinkInput, bool) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return nil, false
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return nil, false
	}

	var req struct {
		BooksSupplierName string `json:"books_supplier_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "books_supplier_name is required")
		return nil, false
	}
	return &service.SupplierLinkInput{
		TenantID:          tenantID,
		SessionID:         sessionID,
		BooksSupplierName: req.BooksSupplierName,
	}, true
}

// ConfirmSupplierLink handles POST /api/v1/reconciliations/:id/supplier-links/confirm
func (h *ReconciliationHandler) ConfirmSupplierLink(c *gin.Context) {
	input, ok := h.bindSupplierLink(c)
	if !ok {
		return
	}

	v, err := h.svc.ConfirmSupplierLink(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// RejectSupplierLink handles POST /api/v1/reconciliations/:id/supplier-links/reject
func (h *ReconciliationHandler) RejectSupplierLink(c *gin.Context) {
	input, ok := h.bindSupplierLink(c)
	if !ok {
		return
	}

	v, err := h.svc.RejectSupplierLink(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// SetPolicy handles PUT /api/v1/reconciliations/:id/policy
func (h *ReconciliationHandler) SetPolicy(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		IncludeReverseCharge *bool `json:"include_reverse_charge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "include_reverse_charge is required")
		return
	}

	v, err := h.svc.SetReverseChargePolicy(c.Request.Context(), tenantID, sessionID, *req.IncludeReverseCharge)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, v)
}

// ExportCSV handles GET /api/v1/reconciliations/:id/export/csv
func (h *ReconciliationHandler) ExportCSV(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.svc.ExportCSV(c.Request.Context(), tenantID, sessionID, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles POST /api/v1/reconciliations/:id/export/xlsx
func (h *ReconciliationHandler) ExportXLSX(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	res, err := h.svc.ExportXLSX(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// PendingCarryForward handles GET /api/v1/carry-forward/:period
func (h *ReconciliationHandler) PendingCarryForward(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	period, err := domain.ParsePeriod(c.Param("period"))
	if err != nil {
		HandleError(c, err)
		return
	}

	batch, err := h.svc.PendingCarryForward(c.Request.Context(), tenantID, period)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"period": period, "records": batch})
}

// Template handles GET /api/v1/templates/:source
func (h *ReconciliationHandler) Template(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := export.WriteTemplate(&buf, domain.Source(c.Param("source")))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
