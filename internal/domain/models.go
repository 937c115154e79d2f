package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceRecord is a single normalized line from GSTR-2B or the purchase register.
// Records are produced by the ingest parsers and never mutated afterwards.
type InvoiceRecord struct {
	SupplierName       string  `json:"supplier_name"`
	SupplierGSTIN      string  `json:"supplier_gstin"`
	DocType            string  `json:"doc_type"`
	DocNo              string  `json:"doc_no"`
	DocDate            string  `json:"doc_date"`
	TaxableValue       float64 `json:"taxable_value"`
	IGST               float64 `json:"igst"`
	CGST               float64 `json:"cgst"`
	SGST               float64 `json:"sgst"`
	Cess               float64 `json:"cess"`
	TotalTax           float64 `json:"total_tax"`
	SupplyType         string  `json:"supply_type"`
	ReverseCharge      bool    `json:"reverse_charge"`
	CarriedForwardFrom string  `json:"carried_forward_from,omitempty"`
}

// UnifiedInvoice is one row of the reconciled view: a matched pair or an orphan.
type UnifiedInvoice struct {
	ID                 string         `json:"id"`
	GSTR2B             *InvoiceRecord `json:"gstr2b,omitempty"`
	Books              *InvoiceRecord `json:"books,omitempty"`
	InGSTR2B           bool           `json:"in_gstr2b"`
	InBooks            bool           `json:"in_books"`
	MatchStatus        MatchStatus    `json:"match_status"`
	MatchBasis         MatchBasis     `json:"match_basis"`
	MismatchReasons    []string       `json:"mismatch_reasons"`
	Remarks            string         `json:"remarks"`
	IsManualMatch      bool           `json:"is_manual_match"`
	CarriedForwardFrom string         `json:"carried_forward_from,omitempty"`
}

// Sides reports which source records the invoice carries.
func (u *UnifiedInvoice) Sides() Sides {
	switch {
	case u.GSTR2B != nil && u.Books != nil:
		return SidesBoth
	case u.GSTR2B != nil:
		return SidesGSTR2BOnly
	case u.Books != nil:
		return SidesBooksOnly
	default:
		return SidesNone
	}
}

// Primary returns the record used for display and tax amounts:
// GSTR-2B when present, Books otherwise.
func (u *UnifiedInvoice) Primary() *InvoiceRecord {
	if u.GSTR2B != nil {
		return u.GSTR2B
	}
	return u.Books
}

// TaxAmount is the total tax attributed to the invoice in summaries.
func (u *UnifiedInvoice) TaxAmount() float64 {
	if p := u.Primary(); p != nil {
		return p.TotalTax
	}
	return 0
}

// SupplierRef identifies a GSTR-2B supplier offered as a link target.
type SupplierRef struct {
	Name  string `json:"name"`
	GSTIN string `json:"gstin"`
}

// SupplierSuggestion proposes that a GSTIN-less Books supplier is the same
// party as a GSTR-2B supplier. It is advisory until confirmed.
type SupplierSuggestion struct {
	BooksSupplierName string      `json:"books_supplier_name"`
	GSTR2BSupplier    SupplierRef `json:"gstr2b_supplier"`
	Distance          int         `json:"distance"`
}

// MergeCandidate is an opposite-side orphan ranked as a possible merge
// partner for another orphan. DateDiffDays is nil when either date is
// unparseable.
type MergeCandidate struct {
	Invoice         UnifiedInvoice `json:"invoice"`
	Score           float64        `json:"score"`
	AmountDiff      float64        `json:"amount_diff"`
	DocNoSimilarity float64        `json:"doc_no_similarity"`
	DateDiffDays    *float64       `json:"date_diff_days"`
}

// TaxBreakdown holds per-head tax amounts.
type TaxBreakdown struct {
	IGST  float64 `json:"igst"`
	CGST  float64 `json:"cgst"`
	SGST  float64 `json:"sgst"`
	Cess  float64 `json:"cess"`
	Total float64 `json:"total"`
}

// Summary is the aggregate view over a reconciled invoice list.
// It is always recomputed from the list, never stored.
type Summary struct {
	TotalGSTR2B            int `json:"total_gstr2b"`
	TotalBooks             int `json:"total_books"`
	ExactMatches           int `json:"exact_matches"`
	PartialProbableMatches int `json:"partial_probable_matches"`
	Unmatched              int `json:"unmatched"`
	Ineligible             int `json:"ineligible"`
	CarriedForward         int `json:"carried_forward"`

	ExactMatchAmount           float64 `json:"exact_match_amount"`
	PartialProbableMatchAmount float64 `json:"partial_probable_match_amount"`
	UnmatchedAmount            float64 `json:"unmatched_amount"`
	IneligibleAmount           float64 `json:"ineligible_amount"`
	CarriedForwardAmount       float64 `json:"carried_forward_amount"`

	ITCAsPerGSTR2BTotal    float64 `json:"itc_as_per_gstr2b_total"`
	ITCNotInBooksAmount    float64 `json:"itc_not_in_books_amount"`
	ITCFromBooksOnlyAmount float64 `json:"itc_from_books_only_amount"`
	NetITCAsPerBooks       float64 `json:"net_itc_as_per_books"`
	FinalEligibleITC       float64 `json:"final_eligible_itc"`

	ITCAsPerGSTR2B TaxBreakdown `json:"itc_as_per_gstr2b"`
	ITCAsPerBooks  TaxBreakdown `json:"itc_as_per_books"`
	EligibleITC    TaxBreakdown `json:"eligible_itc"`
}

// ReconciliationResult is the output of a full pipeline run.
type ReconciliationResult struct {
	Invoices    []UnifiedInvoice     `json:"invoices"`
	Summary     Summary              `json:"summary"`
	Suggestions []SupplierSuggestion `json:"suggestions"`
}

// CarryForwardBatch holds raw records deferred to a later period.
type CarryForwardBatch struct {
	GSTR2B []InvoiceRecord `json:"gstr2b"`
	Books  []InvoiceRecord `json:"books"`
}

// Empty reports whether the batch carries no records.
func (b *CarryForwardBatch) Empty() bool {
	return len(b.GSTR2B) == 0 && len(b.Books) == 0
}

// ReconciliationSession is the persisted working state of one period's reconciliation.
type ReconciliationSession struct {
	ID                   uuid.UUID            `json:"id"`
	TenantID             uuid.UUID            `json:"tenant_id"`
	Period               Period               `json:"period"`
	Status               SessionStatus        `json:"status"`
	Config               MatchConfig          `json:"config"`
	IncludeReverseCharge bool                 `json:"include_reverse_charge"`
	GSTR2BRecords        []InvoiceRecord      `json:"gstr2b_records"`
	BooksRecords         []InvoiceRecord      `json:"books_records"`
	Invoices             []UnifiedInvoice     `json:"invoices"`
	Suggestions          []SupplierSuggestion `json:"suggestions"`
	RejectedSuggestions  []string             `json:"rejected_suggestions"`
	Version              int                  `json:"version"`
	CreatedBy            uuid.UUID            `json:"created_by"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// ReconciliationView pairs a session with its freshly computed summary.
type ReconciliationView struct {
	Session *ReconciliationSession `json:"session"`
	Summary Summary                `json:"summary"`
}
