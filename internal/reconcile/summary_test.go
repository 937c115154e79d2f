package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gstreco/internal/domain"
	"gstreco/internal/reconcile"
)

func taxed(name, gstin, docNo string, igst, cgst, sgst, cess float64) domain.InvoiceRecord {
	rec := record(name, gstin, docNo)
	rec.IGST, rec.CGST, rec.SGST, rec.Cess = igst, cgst, sgst, cess
	rec.TotalTax = igst + cgst + sgst + cess
	return rec
}

func TestSummarize_Buckets(t *testing.T) {
	g1 := taxed("A", gstinAcme, "1", 100, 0, 0, 0)
	g2 := taxed("A", gstinAcme, "2", 0, 20, 20, 0)
	g3 := taxed("A", gstinAcme, "3", 50, 0, 0, 5)
	g4 := taxed("A", gstinAcme, "4", 30, 0, 0, 0)
	b1 := taxed("A", gstinAcme, "1", 90, 0, 0, 0)
	b5 := taxed("A", "", "5", 0, 7, 7, 0)
	b6 := taxed("A", gstinAcme, "6", 12, 0, 0, 0)

	invoices := []domain.UnifiedInvoice{
		withStatus(domain.MatchStatusExact, "1", &g1, &b1),
		withStatus(domain.MatchStatusProbable, "2", &g2, nil),
		withStatus(domain.MatchStatusOnlyInGSTR2B, "3", &g3, nil),
		withStatus(domain.MatchStatusIneligibleITC, "4", &g4, nil),
		withStatus(domain.MatchStatusOnlyInBooks, "5", nil, &b5),
		withStatus(domain.MatchStatusCarriedForward, "6", nil, &b6),
		withStatus(domain.MatchStatusPending, "7", nil, &b6),
	}
	gstr2b := []domain.InvoiceRecord{g1, g2, g3, g4}
	books := []domain.InvoiceRecord{b1, b5, b6}

	s := reconcile.Summarize(invoices, gstr2b, books, true)

	assert.Equal(t, 4, s.TotalGSTR2B)
	assert.Equal(t, 3, s.TotalBooks)
	assert.Equal(t, 1, s.ExactMatches)
	assert.Equal(t, 100.0, s.ExactMatchAmount)
	assert.Equal(t, 1, s.PartialProbableMatches)
	assert.Equal(t, 40.0, s.PartialProbableMatchAmount)
	assert.Equal(t, 3, s.Unmatched)
	assert.Equal(t, 55.0+14+12, s.UnmatchedAmount)
	assert.Equal(t, 1, s.Ineligible)
	assert.Equal(t, 30.0, s.IneligibleAmount)
	assert.Equal(t, 1, s.CarriedForward)
	assert.Equal(t, 12.0, s.CarriedForwardAmount)

	assert.Equal(t, 55.0, s.ITCNotInBooksAmount)
	assert.Equal(t, 14.0, s.ITCFromBooksOnlyAmount)
	assert.Equal(t, 225.0, s.ITCAsPerGSTR2BTotal)
	assert.Equal(t, 116.0, s.NetITCAsPerBooks)
	assert.Equal(t, domain.TaxBreakdown{IGST: 180, CGST: 20, SGST: 20, Cess: 5, Total: 225}, s.ITCAsPerGSTR2B)
	assert.Equal(t, domain.TaxBreakdown{IGST: 102, CGST: 7, SGST: 7, Total: 116}, s.ITCAsPerBooks)

	// Eligible ITC comes from GSTR-2B data of matched invoices only.
	assert.Equal(t, domain.TaxBreakdown{IGST: 100, CGST: 20, SGST: 20, Total: 140}, s.EligibleITC)
	assert.Equal(t, 225.0-55-30, s.FinalEligibleITC)
}

func TestSummarize_GSTR2BTotalIndependentOfOutcome(t *testing.T) {
	gstr2b := []domain.InvoiceRecord{
		taxed("A", gstinAcme, "1", 100, 0, 0, 0),
		taxed("A", gstinAcme, "2", 0, 9, 9, 0),
	}
	books := []domain.InvoiceRecord{taxed("A", gstinAcme, "1", 100, 0, 0, 0)}

	res := reconcile.Reconcile(gstr2b, books, domain.DefaultMatchConfig(), true)
	overridden, err := reconcile.Override(res.Invoices, ids(res.Invoices), domain.MatchStatusUnmatched, "x", true)
	assert.NoError(t, err)

	before := res.Summary
	after := reconcile.Summarize(overridden, gstr2b, books, true)

	assert.Equal(t, 118.0, before.ITCAsPerGSTR2BTotal)
	assert.Equal(t, before.ITCAsPerGSTR2BTotal, after.ITCAsPerGSTR2BTotal)
	assert.Equal(t, before.ITCAsPerGSTR2B, after.ITCAsPerGSTR2B)
}

func TestSummarize_FinalEligibleNeverNegative(t *testing.T) {
	g := taxed("A", gstinAcme, "1", 100, 0, 0, 0)
	invoices := []domain.UnifiedInvoice{
		withStatus(domain.MatchStatusOnlyInGSTR2B, "1", &g, nil),
		withStatus(domain.MatchStatusIneligibleITC, "2", &g, nil),
	}

	s := reconcile.Summarize(invoices, []domain.InvoiceRecord{g}, nil, true)

	assert.Equal(t, 0.0, s.FinalEligibleITC)
}

func TestSummarize_ReverseChargePolicy(t *testing.T) {
	g := taxed("A", gstinAcme, "1", 100, 0, 0, 0)
	g.ReverseCharge = true
	b := taxed("A", gstinAcme, "1", 100, 0, 0, 0)
	invoices := []domain.UnifiedInvoice{withStatus(domain.MatchStatusExact, "1", &g, &b)}
	gstr2b := []domain.InvoiceRecord{g}
	books := []domain.InvoiceRecord{b}

	excluded := reconcile.Summarize(invoices, gstr2b, books, false)
	included := reconcile.Summarize(invoices, gstr2b, books, true)

	assert.Zero(t, excluded.EligibleITC.Total)
	assert.Equal(t, 100.0, included.EligibleITC.Total)
	assert.Equal(t, excluded.FinalEligibleITC, included.FinalEligibleITC)
}

func TestSummarize_Idempotent(t *testing.T) {
	gstr2b := []domain.InvoiceRecord{
		taxed("A", gstinAcme, "1", 10.1, 0, 0, 0),
		taxed("B", gstinKolkata, "2", 0, 0.35, 0.35, 0.2),
	}
	books := []domain.InvoiceRecord{taxed("A", gstinAcme, "1", 10.1, 0, 0, 0)}
	res := reconcile.Reconcile(gstr2b, books, domain.DefaultMatchConfig(), false)

	first := reconcile.Summarize(res.Invoices, gstr2b, books, false)
	second := reconcile.Summarize(res.Invoices, gstr2b, books, false)

	assert.Equal(t, first, second)
	assert.Equal(t, res.Summary, first)
}

func TestSummarize_DecimalAccumulation(t *testing.T) {
	var gstr2b []domain.InvoiceRecord
	for i := 0; i < 10; i++ {
		gstr2b = append(gstr2b, taxed("A", gstinAcme, string(rune('a'+i)), 0.1, 0, 0, 0))
	}

	s := reconcile.Summarize(nil, gstr2b, nil, true)

	assert.Equal(t, 1.0, s.ITCAsPerGSTR2BTotal)
	assert.Equal(t, 1.0, s.FinalEligibleITC)
}
