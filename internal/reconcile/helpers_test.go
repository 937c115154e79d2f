package reconcile_test

import (
	"gstreco/internal/domain"
)

const (
	gstinKolkata = "19AAACK1234A1Z5"
	gstinAcme    = "29AABCU9567L1Z1"
)

func record(name, gstin, docNo string) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		SupplierName:  name,
		SupplierGSTIN: gstin,
		DocType:       "INV-B2B",
		DocNo:         docNo,
		DocDate:       "01-04-2024",
		TaxableValue:  1000,
		IGST:          180,
		TotalTax:      180,
		SupplyType:    "B2B",
	}
}

func booksRecord(name, gstin, docNo string) domain.InvoiceRecord {
	rec := record(name, gstin, docNo)
	rec.DocType = "INV"
	return rec
}

func pair(g, b domain.InvoiceRecord) domain.UnifiedInvoice {
	return domain.UnifiedInvoice{
		ID:              "pair",
		GSTR2B:          &g,
		Books:           &b,
		InGSTR2B:        true,
		InBooks:         true,
		MatchBasis:      domain.MatchBasisGSTIN,
		MismatchReasons: []string{},
	}
}

func withStatus(status domain.MatchStatus, id string, g, b *domain.InvoiceRecord) domain.UnifiedInvoice {
	return domain.UnifiedInvoice{
		ID:          id,
		GSTR2B:      g,
		Books:       b,
		InGSTR2B:    g != nil,
		InBooks:     b != nil,
		MatchStatus: status,
	}
}

func sixCriteria() domain.MatchConfig {
	cfg := domain.DefaultMatchConfig()
	cfg.Criteria = []domain.Criterion{
		domain.CriterionSupplierGSTIN,
		domain.CriterionDocType,
		domain.CriterionDocNo,
		domain.CriterionDocDate,
		domain.CriterionTaxableValue,
		domain.CriterionTotalTax,
	}
	return cfg
}

func ids(invoices []domain.UnifiedInvoice) []string {
	out := make([]string, 0, len(invoices))
	for i := range invoices {
		out = append(out, invoices[i].ID)
	}
	return out
}

func byID(invoices []domain.UnifiedInvoice, id string) *domain.UnifiedInvoice {
	for i := range invoices {
		if invoices[i].ID == id {
			return &invoices[i]
		}
	}
	return nil
}
