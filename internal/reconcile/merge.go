package reconcile

import (
	"gstreco/internal/domain"
)

const assistedMatchRemark = "[Assisted Match]"

// Merge pairs one GSTR-2B orphan with one Books orphan confirmed by a user.
//
// The arguments may be given in either order. Only the pairing is manual: the
// merged invoice is scored with cfg like any keyed pair. The two orphans are
// removed and the merged invoice is appended to a new list.
func Merge(invoices []domain.UnifiedInvoice, idA, idB string, cfg domain.MatchConfig) ([]domain.UnifiedInvoice, domain.UnifiedInvoice, error) {
	posA, posB := indexOf(invoices, idA), indexOf(invoices, idB)
	if posA < 0 || posB < 0 {
		return nil, domain.UnifiedInvoice{}, domain.ErrInvoiceNotFound
	}

	a, b := invoices[posA], invoices[posB]
	if a.MatchStatus == domain.MatchStatusOnlyInBooks {
		a, b = b, a
	}
	if a.MatchStatus != domain.MatchStatusOnlyInGSTR2B || b.MatchStatus != domain.MatchStatusOnlyInBooks ||
		a.GSTR2B == nil || b.Books == nil {
		return nil, domain.UnifiedInvoice{}, domain.ErrInvalidMergePair
	}

	out := make([]domain.UnifiedInvoice, 0, len(invoices)-1)
	for i := range invoices {
		if i != posA && i != posB {
			out = append(out, invoices[i])
		}
	}

	gstr2b, books := *a.GSTR2B, *b.Books
	id := GSTINKey(&gstr2b)
	if id == "" {
		id = a.ID
	}
	merged := domain.UnifiedInvoice{
		ID:              newIDSet(out).claim(id),
		GSTR2B:          &gstr2b,
		Books:           &books,
		InGSTR2B:        true,
		InBooks:         true,
		MatchBasis:      domain.MatchBasisGSTIN,
		MismatchReasons: []string{},
		Remarks:         assistedMatchRemark,
		IsManualMatch:   true,
	}
	merged = Score(merged, cfg)
	return append(out, merged), merged, nil
}

func indexOf(invoices []domain.UnifiedInvoice, id string) int {
	for i := range invoices {
		if invoices[i].ID == id {
			return i
		}
	}
	return -1
}
