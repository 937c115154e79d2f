package reconcile

import (
	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
)

type headSums struct {
	igst, cgst, sgst, cess, total decimal.Decimal
}

func (h *headSums) add(rec *domain.InvoiceRecord) {
	h.igst = h.igst.Add(decimal.NewFromFloat(rec.IGST))
	h.cgst = h.cgst.Add(decimal.NewFromFloat(rec.CGST))
	h.sgst = h.sgst.Add(decimal.NewFromFloat(rec.SGST))
	h.cess = h.cess.Add(decimal.NewFromFloat(rec.Cess))
}

func (h *headSums) breakdown() domain.TaxBreakdown {
	return domain.TaxBreakdown{
		IGST:  h.igst.InexactFloat64(),
		CGST:  h.cgst.InexactFloat64(),
		SGST:  h.sgst.InexactFloat64(),
		Cess:  h.cess.InexactFloat64(),
		Total: h.total.InexactFloat64(),
	}
}

func rawTotals(records []domain.InvoiceRecord) headSums {
	var h headSums
	for i := range records {
		h.add(&records[i])
		h.total = h.total.Add(decimal.NewFromFloat(records[i].TotalTax))
	}
	return h
}

// Summarize recomputes every aggregate from the invoice list and the raw
// source lists. It is a pure function: calling it twice on the same inputs
// yields the same Summary.
//
// Raw per-source totals always cover the full input lists, independent of
// match outcomes. Eligible ITC is taken from GSTR-2B data of matched invoices;
// reverse-charge invoices are left out unless includeReverseCharge is set.
func Summarize(invoices []domain.UnifiedInvoice, gstr2b, books []domain.InvoiceRecord, includeReverseCharge bool) domain.Summary {
	gstr2bTotals := rawTotals(gstr2b)
	booksTotals := rawTotals(books)

	var (
		exact, partial, unmatched, ineligible, carried decimal.Decimal
		notInBooks, booksOnly                          decimal.Decimal
		eligible                                       headSums
	)
	s := domain.Summary{
		TotalGSTR2B: len(gstr2b),
		TotalBooks:  len(books),
	}

	for i := range invoices {
		inv := &invoices[i]
		amount := decimal.NewFromFloat(inv.TaxAmount())

		switch inv.MatchStatus {
		case domain.MatchStatusExact:
			s.ExactMatches++
			exact = exact.Add(amount)
		case domain.MatchStatusPartial, domain.MatchStatusProbable:
			s.PartialProbableMatches++
			partial = partial.Add(amount)
		case domain.MatchStatusIneligibleITC:
			s.Ineligible++
			ineligible = ineligible.Add(amount)
		case domain.MatchStatusCarriedForward:
			s.CarriedForward++
			carried = carried.Add(amount)
		case domain.MatchStatusOnlyInGSTR2B:
			s.Unmatched++
			unmatched = unmatched.Add(amount)
			notInBooks = notInBooks.Add(amount)
		case domain.MatchStatusOnlyInBooks:
			s.Unmatched++
			unmatched = unmatched.Add(amount)
			booksOnly = booksOnly.Add(amount)
		default:
			s.Unmatched++
			unmatched = unmatched.Add(amount)
		}

		if inv.GSTR2B != nil && inv.MatchStatus.IsMatched() &&
			(includeReverseCharge || !inv.GSTR2B.ReverseCharge) {
			eligible.add(inv.GSTR2B)
		}
	}
	eligible.total = eligible.igst.Add(eligible.cgst).Add(eligible.sgst).Add(eligible.cess)

	final := gstr2bTotals.total.Sub(notInBooks).Sub(ineligible)
	if final.IsNegative() {
		final = decimal.Zero
	}

	s.ExactMatchAmount = exact.InexactFloat64()
	s.PartialProbableMatchAmount = partial.InexactFloat64()
	s.UnmatchedAmount = unmatched.InexactFloat64()
	s.IneligibleAmount = ineligible.InexactFloat64()
	s.CarriedForwardAmount = carried.InexactFloat64()
	s.ITCAsPerGSTR2BTotal = gstr2bTotals.total.InexactFloat64()
	s.ITCNotInBooksAmount = notInBooks.InexactFloat64()
	s.ITCFromBooksOnlyAmount = booksOnly.InexactFloat64()
	s.NetITCAsPerBooks = booksTotals.total.InexactFloat64()
	s.FinalEligibleITC = final.InexactFloat64()
	s.ITCAsPerGSTR2B = gstr2bTotals.breakdown()
	s.ITCAsPerBooks = booksTotals.breakdown()
	s.EligibleITC = eligible.breakdown()
	return s
}
