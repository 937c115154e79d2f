package reconcile

import (
	"gstreco/internal/domain"
)

// KeyedMatch is the output of the exact GSTIN + document number pass.
type KeyedMatch struct {
	Pairs           []domain.UnifiedInvoice
	GSTR2BUnmatched []domain.InvoiceRecord
	BooksUnmatched  []domain.InvoiceRecord
}

// MatchByGSTIN pairs Books records with GSTR-2B records sharing the same
// normalized GSTIN and document number.
//
// The index is built fresh for every call. When a key occurs more than once
// in GSTR-2B the first record wins; later duplicates never enter the index and
// fall through to the unmatched list. Records without a GSTIN key are not
// matched. Unmatched lists preserve input order.
func MatchByGSTIN(gstr2b, books []domain.InvoiceRecord) KeyedMatch {
	index := make(map[string]int, len(gstr2b))
	for i := range gstr2b {
		key := GSTINKey(&gstr2b[i])
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	consumed := make([]bool, len(gstr2b))
	out := KeyedMatch{}
	for i := range books {
		key := GSTINKey(&books[i])
		pos, ok := index[key]
		if key == "" || !ok {
			out.BooksUnmatched = append(out.BooksUnmatched, books[i])
			continue
		}
		out.Pairs = append(out.Pairs, newPair(key, gstr2b[pos], books[i]))
		consumed[pos] = true
		delete(index, key)
	}

	for i := range gstr2b {
		if !consumed[i] {
			out.GSTR2BUnmatched = append(out.GSTR2BUnmatched, gstr2b[i])
		}
	}
	return out
}

func newPair(id string, gstr2b, books domain.InvoiceRecord) domain.UnifiedInvoice {
	provenance := gstr2b.CarriedForwardFrom
	if provenance == "" {
		provenance = books.CarriedForwardFrom
	}
	return domain.UnifiedInvoice{
		ID:                 id,
		GSTR2B:             &gstr2b,
		Books:              &books,
		InGSTR2B:           true,
		InBooks:            true,
		MatchStatus:        domain.MatchStatusPending,
		MatchBasis:         domain.MatchBasisGSTIN,
		MismatchReasons:    []string{},
		Remarks:            provenanceRemark(provenance),
		CarriedForwardFrom: provenance,
	}
}

func provenanceRemark(period string) string {
	if period == "" {
		return ""
	}
	return "Carried forward from " + period
}
