package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
	"gstreco/internal/reconcile"
)

func TestReconcile_OrderAndStatuses(t *testing.T) {
	gstr2b := []domain.InvoiceRecord{
		record("Acme", gstinAcme, "1"),
		record("Kolkata Traders", gstinKolkata, "K1"),
	}
	books := []domain.InvoiceRecord{
		booksRecord("Acme Traders", "", "B7"),
		booksRecord("Acme", gstinAcme, "1"),
	}

	res := reconcile.Reconcile(gstr2b, books, domain.DefaultMatchConfig(), true)

	assert.Equal(t, []string{
		"29AABCU9567L1Z1-1",
		"ACME TRADERS-B7-books",
		"19AAACK1234A1Z5-K1",
	}, ids(res.Invoices))

	assert.Equal(t, domain.MatchStatusExact, res.Invoices[0].MatchStatus)
	assert.Equal(t, domain.MatchBasisGSTIN, res.Invoices[0].MatchBasis)

	assert.Equal(t, domain.MatchStatusOnlyInBooks, res.Invoices[1].MatchStatus)
	assert.Equal(t, domain.MatchBasisNone, res.Invoices[1].MatchBasis)
	assert.True(t, res.Invoices[1].InBooks)
	assert.False(t, res.Invoices[1].InGSTR2B)

	assert.Equal(t, domain.MatchStatusOnlyInGSTR2B, res.Invoices[2].MatchStatus)
	assert.Equal(t, 2, res.Summary.TotalGSTR2B)
	assert.Equal(t, 2, res.Summary.TotalBooks)
}

func TestReconcile_EveryRecordRepresentedWithUniqueIDs(t *testing.T) {
	dup := record("Acme", gstinAcme, "1")
	gstr2b := []domain.InvoiceRecord{dup, dup, dup, record("", "", "9")}
	books := []domain.InvoiceRecord{
		booksRecord("Acme", gstinAcme, "1"),
		booksRecord("Beta", "", "5"),
		booksRecord("Beta", "", "5"),
	}

	res := reconcile.Reconcile(gstr2b, books, domain.DefaultMatchConfig(), true)

	// One pair plus every unconsumed record.
	require.Len(t, res.Invoices, 1+2+1+2)
	assert.Equal(t, []string{
		"29AABCU9567L1Z1-1",
		"BETA-5-books",
		"BETA-5-books-2",
		"29AABCU9567L1Z1-1-2",
		"29AABCU9567L1Z1-1-3",
		"-9-gstr2b",
	}, ids(res.Invoices))

	seen := map[string]bool{}
	g, b := 0, 0
	for _, inv := range res.Invoices {
		assert.False(t, seen[inv.ID], "duplicate id %s", inv.ID)
		seen[inv.ID] = true
		if inv.InGSTR2B {
			g++
		}
		if inv.InBooks {
			b++
		}
	}
	assert.Equal(t, len(gstr2b), g)
	assert.Equal(t, len(books), b)
}

func TestReconcile_SharedKeyProducesOnePair(t *testing.T) {
	gstr2b := []domain.InvoiceRecord{record("Acme", " 29aabcu9567l1z1", "INV-1")}
	books := []domain.InvoiceRecord{booksRecord("ACME LTD", "29AABCU9567L1Z1", "inv 1")}

	res := reconcile.Reconcile(gstr2b, books, domain.DefaultMatchConfig(), true)

	require.Len(t, res.Invoices, 1)
	assert.True(t, res.Invoices[0].InGSTR2B)
	assert.True(t, res.Invoices[0].InBooks)
}

func TestReconcile_RemainderProvenanceRemark(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	g.CarriedForwardFrom = "2024-03"

	res := reconcile.Reconcile([]domain.InvoiceRecord{g}, nil, domain.DefaultMatchConfig(), true)

	require.Len(t, res.Invoices, 1)
	assert.Equal(t, "Carried forward from 2024-03", res.Invoices[0].Remarks)
	assert.Equal(t, "2024-03", res.Invoices[0].CarriedForwardFrom)
}

func TestReconcile_SuggestionsFromKeyedRemainders(t *testing.T) {
	gstr2b := []domain.InvoiceRecord{record("Kolkata Traders", gstinKolkata, "K1")}
	books := []domain.InvoiceRecord{booksRecord("Kolkatta Tradrs", "", "K2")}

	res := reconcile.Reconcile(gstr2b, books, domain.DefaultMatchConfig(), true)

	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, gstinKolkata, res.Suggestions[0].GSTR2BSupplier.GSTIN)
	require.Len(t, res.Invoices, 2)
	assert.Empty(t, res.Invoices[0].Books.SupplierGSTIN, "suggestions are advisory")
}

func TestReconcile_EmptyInputs(t *testing.T) {
	res := reconcile.Reconcile(nil, nil, domain.DefaultMatchConfig(), true)

	assert.Empty(t, res.Invoices)
	assert.NotNil(t, res.Suggestions)
	assert.Zero(t, res.Summary.FinalEligibleITC)
}
