package reconcile

import (
	"gstreco/internal/domain"
)

// Reconcile runs the full pipeline over two record lists.
//
// Keyed pairs come first in Books order and are scored with cfg, followed by
// Books orphans and then GSTR-2B orphans. Every input record is represented
// by exactly one invoice and invoice IDs are unique. Supplier suggestions are
// advisory and computed from the keyed pass remainders.
func Reconcile(gstr2b, books []domain.InvoiceRecord, cfg domain.MatchConfig, includeReverseCharge bool) *domain.ReconciliationResult {
	return Rerun(gstr2b, books, nil, cfg, includeReverseCharge)
}

// Rerun reconciles the records again on top of a previous result.
//
// Carried-forward invoices of previous are terminal: their records are
// withheld from matching and the invoices are appended unchanged, keeping
// their IDs, after the freshly matched ones. Everything else in previous is
// discarded. The summary covers all records, withheld ones included.
func Rerun(gstr2b, books []domain.InvoiceRecord, previous []domain.UnifiedInvoice, cfg domain.MatchConfig, includeReverseCharge bool) *domain.ReconciliationResult {
	kept := Carried(previous)
	heldA, heldB := HeldRecords(kept)
	freeA, _ := Withhold(gstr2b, heldA)
	freeB, _ := Withhold(books, heldB)

	keyed := MatchByGSTIN(freeA, freeB)

	ids := newIDSet(kept)
	invoices := make([]domain.UnifiedInvoice, 0, len(gstr2b)+len(books))
	for i := range keyed.Pairs {
		pair := keyed.Pairs[i]
		pair.ID = ids.claim(pair.ID)
		invoices = append(invoices, Score(pair, cfg))
	}
	invoices = append(invoices, classifyRemainders(ids, keyed.GSTR2BUnmatched, keyed.BooksUnmatched)...)
	invoices = append(invoices, kept...)

	suggestions := SuggestSupplierLinks(keyed.GSTR2BUnmatched, keyed.BooksUnmatched)
	if suggestions == nil {
		suggestions = []domain.SupplierSuggestion{}
	}

	return &domain.ReconciliationResult{
		Invoices:    invoices,
		Summary:     Summarize(invoices, gstr2b, books, includeReverseCharge),
		Suggestions: suggestions,
	}
}
