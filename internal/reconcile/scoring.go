package reconcile

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
)

// Mismatch reason texts, in criterion order.
const (
	reasonDocType   = "Doc Type Mismatch"
	reasonDocDate   = "Date Mismatch"
	reasonTaxable   = "Taxable Val Mismatch (Diff: %s)"
	reasonTotalTax  = "Total Tax Mismatch (Diff: %s)"
	reasonTaxHeads  = "Tax Head Mismatch"
	partialMatchGap = 2
)

// Score classifies a matched pair against the enabled criteria.
//
// The input is never modified; a scored copy is returned. Carried-forward
// invoices are terminal and come back unchanged. An invoice that lacks one of
// its sides receives the matching single-sided status.
func Score(inv domain.UnifiedInvoice, cfg domain.MatchConfig) domain.UnifiedInvoice {
	if inv.MatchStatus == domain.MatchStatusCarriedForward {
		return inv
	}

	switch inv.Sides() {
	case domain.SidesGSTR2BOnly:
		inv.MatchStatus = domain.MatchStatusOnlyInGSTR2B
		return inv
	case domain.SidesBooksOnly:
		inv.MatchStatus = domain.MatchStatusOnlyInBooks
		return inv
	case domain.SidesNone:
		inv.MatchStatus = domain.MatchStatusUnmatched
		return inv
	}

	enabled := cfg.Enabled()
	score, reasons := evaluate(inv.GSTR2B, inv.Books, enabled, cfg.Tolerances)
	inv.MismatchReasons = reasons
	inv.MatchStatus = classify(score, len(enabled))
	return inv
}

func evaluate(g, b *domain.InvoiceRecord, criteria []domain.Criterion, tol domain.Tolerances) (int, []string) {
	score := 0
	reasons := []string{}
	fail := func(reason string) { reasons = append(reasons, reason) }

	for _, c := range criteria {
		switch c {
		case domain.CriterionSupplierGSTIN, domain.CriterionDocNo:
			// Keyed pairs share GSTIN and document number by construction.
			score++
		case domain.CriterionDocType:
			if strings.HasPrefix(strings.ToUpper(g.DocType), strings.ToUpper(b.DocType)) {
				score++
			} else {
				fail(reasonDocType)
			}
		case domain.CriterionDocDate:
			if g.DocDate == b.DocDate {
				score++
			} else {
				fail(reasonDocDate)
			}
		case domain.CriterionTaxableValue:
			diff := absDiff(g.TaxableValue, b.TaxableValue)
			if withinTolerance(diff, tol.TaxableValue) {
				score++
			} else {
				fail(formatDiff(reasonTaxable, diff))
			}
		case domain.CriterionTotalTax:
			diff := absDiff(g.TotalTax, b.TotalTax)
			if withinTolerance(diff, tol.TotalTax) {
				score++
			} else {
				fail(formatDiff(reasonTotalTax, diff))
			}
		case domain.CriterionTaxHeads:
			if withinTolerance(absDiff(g.IGST, b.IGST), tol.TotalTax) &&
				withinTolerance(absDiff(g.CGST, b.CGST), tol.TotalTax) &&
				withinTolerance(absDiff(g.SGST, b.SGST), tol.TotalTax) {
				score++
			} else {
				fail(reasonTaxHeads)
			}
		}
	}
	return score, reasons
}

// classify applies the fixed absolute slack: within two criteria of a full
// score is a partial match regardless of how many criteria are enabled.
func classify(score, enabled int) domain.MatchStatus {
	switch {
	case enabled == 0:
		return domain.MatchStatusUnmatched
	case score == enabled:
		return domain.MatchStatusExact
	case score >= enabled-partialMatchGap:
		return domain.MatchStatusPartial
	default:
		return domain.MatchStatusUnmatched
	}
}

func absDiff(a, b float64) decimal.Decimal {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
}

func withinTolerance(diff decimal.Decimal, tolerance float64) bool {
	return diff.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

func formatDiff(format string, diff decimal.Decimal) string {
	return fmt.Sprintf(format, diff.StringFixed(2))
}
