package reconcile

import (
	"gstreco/internal/domain"
)

const (
	manualRemarkPrefix     = "[Manual] "
	bulkManualRemarkPrefix = "[Bulk Manual] "
)

// Override sets status and remark on the selected invoices and marks them as
// manual. A new list is returned; the input is left untouched.
//
// The carried-forward status cannot be written here because it must also hand
// the records to the carry-forward store; use CarryForward instead. Invoices
// that are already carried forward are terminal and cannot be overridden.
// Every id must exist in the list.
func Override(invoices []domain.UnifiedInvoice, ids []string, status domain.MatchStatus, remark string, bulk bool) ([]domain.UnifiedInvoice, error) {
	if status == domain.MatchStatusCarriedForward {
		return nil, domain.ErrCarryForwardViaOverride
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	selected, err := selection(invoices, ids)
	if err != nil {
		return nil, err
	}

	for i := range invoices {
		if selected[invoices[i].ID] && invoices[i].MatchStatus == domain.MatchStatusCarriedForward {
			return nil, domain.ErrAlreadyCarriedForward
		}
	}

	prefix := manualRemarkPrefix
	if bulk {
		prefix = bulkManualRemarkPrefix
	}

	out := make([]domain.UnifiedInvoice, len(invoices))
	copy(out, invoices)
	for i := range out {
		if !selected[out[i].ID] {
			continue
		}
		out[i].MatchStatus = status
		out[i].Remarks = prefix + remark
		out[i].IsManualMatch = true
	}
	return out, nil
}

// selection resolves ids against the list. An empty or unknown id fails the
// whole selection.
func selection(invoices []domain.UnifiedInvoice, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	present := make(map[string]bool, len(invoices))
	for i := range invoices {
		present[invoices[i].ID] = true
	}
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !present[id] {
			return nil, domain.ErrInvoiceNotFound
		}
		selected[id] = true
	}
	return selected, nil
}
