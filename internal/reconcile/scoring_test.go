package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gstreco/internal/domain"
	"gstreco/internal/reconcile"
)

func TestScore_TaxableWithinToleranceIsExact(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	b.TaxableValue = 1005

	got := reconcile.Score(pair(g, b), sixCriteria())

	assert.Equal(t, domain.MatchStatusExact, got.MatchStatus)
	assert.Empty(t, got.MismatchReasons)
}

func TestScore_TotalTaxOutsideToleranceIsPartial(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	b.TaxableValue = 1005
	b.TotalTax = 230

	got := reconcile.Score(pair(g, b), sixCriteria())

	assert.Equal(t, domain.MatchStatusPartial, got.MatchStatus)
	assert.Equal(t, []string{"Total Tax Mismatch (Diff: 50.00)"}, got.MismatchReasons)
}

func TestScore_ReasonsFollowCriterionOrder(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	b.DocType = "CRN"
	b.DocDate = "02-04-2024"
	b.TaxableValue = 1100.5
	b.CGST = 11

	got := reconcile.Score(pair(g, b), domain.DefaultMatchConfig())

	assert.Equal(t, []string{
		"Doc Type Mismatch",
		"Date Mismatch",
		"Taxable Val Mismatch (Diff: 100.50)",
		"Tax Head Mismatch",
	}, got.MismatchReasons)
	// 3 of 7 criteria pass; below the partial band of 5.
	assert.Equal(t, domain.MatchStatusUnmatched, got.MatchStatus)
}

func TestScore_DocTypeIsCaseInsensitivePrefix(t *testing.T) {
	cfg := domain.MatchConfig{Criteria: []domain.Criterion{domain.CriterionDocType}}
	g := record("Acme", gstinAcme, "1")

	b := booksRecord("Acme", gstinAcme, "1")
	b.DocType = "inv"
	assert.Equal(t, domain.MatchStatusExact, reconcile.Score(pair(g, b), cfg).MatchStatus)

	b.DocType = "CRN"
	got := reconcile.Score(pair(g, b), cfg)
	assert.Equal(t, []string{"Doc Type Mismatch"}, got.MismatchReasons)
}

func TestScore_TaxHeadsUseTotalTaxTolerance(t *testing.T) {
	cfg := domain.MatchConfig{
		Criteria:   []domain.Criterion{domain.CriterionTaxHeads},
		Tolerances: domain.Tolerances{TaxableValue: 0, TotalTax: 10},
	}
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	b.SGST = 10

	assert.Equal(t, domain.MatchStatusExact, reconcile.Score(pair(g, b), cfg).MatchStatus)
}

func TestScore_NoCriteriaIsUnmatched(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")

	got := reconcile.Score(pair(g, b), domain.MatchConfig{})

	assert.Equal(t, domain.MatchStatusUnmatched, got.MatchStatus)
}

func TestScore_AbsoluteSlackWithFewCriteria(t *testing.T) {
	cfg := domain.MatchConfig{Criteria: []domain.Criterion{domain.CriterionDocDate, domain.CriterionTaxableValue}}
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	b.DocDate = "31-12-2023"
	b.TaxableValue = 99999

	got := reconcile.Score(pair(g, b), cfg)

	assert.Equal(t, domain.MatchStatusPartial, got.MatchStatus)
	assert.Len(t, got.MismatchReasons, 2)
}

func TestScore_DuplicateCriteriaCountOnce(t *testing.T) {
	cfg := domain.MatchConfig{Criteria: []domain.Criterion{domain.CriterionDocDate, domain.CriterionDocDate}}
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")

	assert.Equal(t, domain.MatchStatusExact, reconcile.Score(pair(g, b), cfg).MatchStatus)
}

func TestScore_CarriedForwardIsTerminal(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	inv := pair(g, b)
	inv.MatchStatus = domain.MatchStatusCarriedForward
	inv.Remarks = "Carried forward to 2024-05"

	got := reconcile.Score(inv, domain.DefaultMatchConfig())

	assert.Equal(t, inv, got)
}

func TestScore_SingleSided(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")

	onlyG := reconcile.Score(withStatus(domain.MatchStatusPending, "g", &g, nil), domain.DefaultMatchConfig())
	onlyB := reconcile.Score(withStatus(domain.MatchStatusPending, "b", nil, &b), domain.DefaultMatchConfig())

	assert.Equal(t, domain.MatchStatusOnlyInGSTR2B, onlyG.MatchStatus)
	assert.Equal(t, domain.MatchStatusOnlyInBooks, onlyB.MatchStatus)
}

func TestScore_DoesNotModifyInput(t *testing.T) {
	g := record("Acme", gstinAcme, "1")
	b := booksRecord("Acme", gstinAcme, "1")
	b.DocDate = "x"
	inv := pair(g, b)

	_ = reconcile.Score(inv, domain.DefaultMatchConfig())

	assert.Equal(t, domain.MatchStatusPending, inv.MatchStatus)
	assert.Empty(t, inv.MismatchReasons)
}
