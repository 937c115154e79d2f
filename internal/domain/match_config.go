package domain

// Criterion is one comparison the scoring engine can apply to a matched pair.
type Criterion string

const (
	CriterionSupplierGSTIN Criterion = "supplier_gstin"
	CriterionDocType       Criterion = "doc_type"
	CriterionDocNo         Criterion = "doc_no"
	CriterionDocDate       Criterion = "doc_date"
	CriterionTaxableValue  Criterion = "taxable_value"
	CriterionTotalTax      Criterion = "total_tax"
	CriterionTaxHeads      Criterion = "tax_heads"
)

// AllCriteria is the closed criterion set in evaluation order.
// Mismatch reasons are always reported in this order.
var AllCriteria = []Criterion{
	CriterionSupplierGSTIN,
	CriterionDocType,
	CriterionDocNo,
	CriterionDocDate,
	CriterionTaxableValue,
	CriterionTotalTax,
	CriterionTaxHeads,
}

// Valid reports whether c belongs to the closed criterion set.
func (c Criterion) Valid() bool {
	for _, k := range AllCriteria {
		if c == k {
			return true
		}
	}
	return false
}

const (
	DefaultTaxableValueTolerance = 10.00
	DefaultTotalTaxTolerance     = 10.00
)

// Tolerances are absolute amount differences accepted by the scoring engine.
type Tolerances struct {
	TaxableValue float64 `json:"taxable_value"`
	TotalTax     float64 `json:"total_tax"`
}

// MatchConfig selects the enabled criteria and tolerances for one run.
type MatchConfig struct {
	Criteria   []Criterion `json:"criteria"`
	Tolerances Tolerances  `json:"tolerances"`
}

// DefaultMatchConfig enables every criterion with the default tolerances.
func DefaultMatchConfig() MatchConfig {
	criteria := make([]Criterion, len(AllCriteria))
	copy(criteria, AllCriteria)
	return MatchConfig{
		Criteria: criteria,
		Tolerances: Tolerances{
			TaxableValue: DefaultTaxableValueTolerance,
			TotalTax:     DefaultTotalTaxTolerance,
		},
	}
}

// Has reports whether criterion c is enabled.
func (m MatchConfig) Has(c Criterion) bool {
	for _, k := range m.Criteria {
		if k == c {
			return true
		}
	}
	return false
}

// Enabled returns the distinct enabled criteria in evaluation order.
func (m MatchConfig) Enabled() []Criterion {
	out := make([]Criterion, 0, len(AllCriteria))
	for _, c := range AllCriteria {
		if m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Validate rejects unknown criteria and negative tolerances.
func (m MatchConfig) Validate() error {
	for _, c := range m.Criteria {
		if !c.Valid() {
			return ErrInvalidCriterion
		}
	}
	if m.Tolerances.TaxableValue < 0 || m.Tolerances.TotalTax < 0 {
		return ErrInvalidTolerance
	}
	return nil
}
