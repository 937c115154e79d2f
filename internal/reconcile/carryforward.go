package reconcile

import (
	"gstreco/internal/domain"
)

// CarryForward defers the selected invoices to the period after current.
//
// It returns the batch of original records, each tagged with current as its
// provenance, that the caller appends to the store under current.Next(), and a
// new list in which the selected invoices are carried forward. Invoices that
// are already carried forward are rejected so the same records are not
// appended twice.
func CarryForward(invoices []domain.UnifiedInvoice, ids []string, current domain.Period) (domain.CarryForwardBatch, []domain.UnifiedInvoice, error) {
	selected, err := selection(invoices, ids)
	if err != nil {
		return domain.CarryForwardBatch{}, nil, err
	}

	from := current.String()
	remark := "Carried forward to " + current.Next().String()

	var batch domain.CarryForwardBatch
	out := make([]domain.UnifiedInvoice, len(invoices))
	copy(out, invoices)
	for i := range out {
		inv := &out[i]
		if !selected[inv.ID] {
			continue
		}
		if inv.MatchStatus == domain.MatchStatusCarriedForward {
			return domain.CarryForwardBatch{}, nil, domain.ErrAlreadyCarriedForward
		}
		if inv.GSTR2B != nil {
			rec := *inv.GSTR2B
			rec.CarriedForwardFrom = from
			batch.GSTR2B = append(batch.GSTR2B, rec)
		}
		if inv.Books != nil {
			rec := *inv.Books
			rec.CarriedForwardFrom = from
			batch.Books = append(batch.Books, rec)
		}
		inv.MatchStatus = domain.MatchStatusCarriedForward
		inv.Remarks = remark
		inv.IsManualMatch = true
	}
	return batch, out, nil
}
