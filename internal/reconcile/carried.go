package reconcile

import (
	"gstreco/internal/domain"
)

// Carried returns the carried-forward invoices of a list. Their records
// already sit in the next period's store, so later runs keep them as they are.
func Carried(invoices []domain.UnifiedInvoice) []domain.UnifiedInvoice {
	var out []domain.UnifiedInvoice
	for i := range invoices {
		if invoices[i].MatchStatus == domain.MatchStatusCarriedForward {
			out = append(out, invoices[i])
		}
	}
	return out
}

// HeldRecords returns the source records held by the given invoices.
func HeldRecords(invoices []domain.UnifiedInvoice) (gstr2b, books []domain.InvoiceRecord) {
	for i := range invoices {
		if invoices[i].GSTR2B != nil {
			gstr2b = append(gstr2b, *invoices[i].GSTR2B)
		}
		if invoices[i].Books != nil {
			books = append(books, *invoices[i].Books)
		}
	}
	return gstr2b, books
}

// Withhold splits records into those free for matching and those held. Each
// held record consumes one equal record, so duplicates in the input are only
// withheld as often as they are held. Order is preserved in both results.
func Withhold(records, held []domain.InvoiceRecord) (free, withheld []domain.InvoiceRecord) {
	mask := heldMask(records, held)
	for i := range records {
		if mask[i] {
			withheld = append(withheld, records[i])
		} else {
			free = append(free, records[i])
		}
	}
	return free, withheld
}

func heldMask(records, held []domain.InvoiceRecord) []bool {
	remaining := make(map[domain.InvoiceRecord]int, len(held))
	for _, rec := range held {
		remaining[rec]++
	}
	mask := make([]bool, len(records))
	for i, rec := range records {
		if remaining[rec] > 0 {
			remaining[rec]--
			mask[i] = true
		}
	}
	return mask
}
