package reconcile

import (
	"github.com/agnivade/levenshtein"

	"gstreco/internal/domain"
)

// SupplierLinkThreshold is the maximum edit distance offered as a suggestion.
const SupplierLinkThreshold = 3

// SuggestSupplierLinks looks for GSTR-2B suppliers whose names are within
// SupplierLinkThreshold edits of an unmatched Books supplier that has no GSTIN.
//
// Books orphans that do carry a GSTIN are genuine exceptions and are not
// considered. Work is done over deduplicated normalized names, so the cost is
// bounded by unique supplier counts rather than invoice volume. Ties keep the
// first GSTR-2B supplier seen.
func SuggestSupplierLinks(gstr2bUnmatched, booksUnmatched []domain.InvoiceRecord) []domain.SupplierSuggestion {
	type candidate struct {
		norm string
		ref  domain.SupplierRef
	}

	var candidates []candidate
	seen := make(map[string]bool)
	for i := range gstr2bUnmatched {
		rec := &gstr2bUnmatched[i]
		norm := NormalizeName(rec.SupplierName)
		if norm == "" || NormalizeGSTIN(rec.SupplierGSTIN) == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		candidates = append(candidates, candidate{
			norm: norm,
			ref:  domain.SupplierRef{Name: rec.SupplierName, GSTIN: rec.SupplierGSTIN},
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	var subjects []string
	seenBooks := make(map[string]bool)
	for i := range booksUnmatched {
		rec := &booksUnmatched[i]
		if NormalizeGSTIN(rec.SupplierGSTIN) != "" {
			continue
		}
		norm := NormalizeName(rec.SupplierName)
		if norm == "" || seenBooks[norm] {
			continue
		}
		seenBooks[norm] = true
		subjects = append(subjects, norm)
	}

	var out []domain.SupplierSuggestion
	for _, name := range subjects {
		best := -1
		minDistance := 0
		for j := range candidates {
			d := levenshtein.ComputeDistance(name, candidates[j].norm)
			if best == -1 || d < minDistance {
				best, minDistance = j, d
			}
		}
		if minDistance <= SupplierLinkThreshold {
			out = append(out, domain.SupplierSuggestion{
				BooksSupplierName: name,
				GSTR2BSupplier:    candidates[best].ref,
				Distance:          minDistance,
			})
		}
	}
	return out
}

// ApplySupplierLink returns a copy of books in which every GSTIN-less record
// whose normalized supplier name equals the suggestion carries the suggested
// GSTIN. Records in held belong to carried-forward invoices and keep their
// identity. Identity keys change as a result, so the caller must re-run the
// whole pipeline from the keyed pass.
func ApplySupplierLink(books []domain.InvoiceRecord, s domain.SupplierSuggestion, held []domain.InvoiceRecord) ([]domain.InvoiceRecord, int) {
	out := make([]domain.InvoiceRecord, len(books))
	copy(out, books)
	mask := heldMask(books, held)
	linked := 0
	for i := range out {
		if mask[i] || NormalizeGSTIN(out[i].SupplierGSTIN) != "" {
			continue
		}
		if NormalizeName(out[i].SupplierName) == s.BooksSupplierName {
			out[i].SupplierGSTIN = s.GSTR2BSupplier.GSTIN
			linked++
		}
	}
	return out, linked
}
