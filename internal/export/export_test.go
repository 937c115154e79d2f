package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
	"gstreco/internal/export"
)

func sampleInvoices() []domain.UnifiedInvoice {
	g := domain.InvoiceRecord{
		SupplierName: "Acme Traders", SupplierGSTIN: "29AABCU9567L1Z1",
		DocType: "INV-B2B", DocNo: "INV-001", DocDate: "01-04-2024",
		TaxableValue: 1000, IGST: 180, TotalTax: 180,
	}
	b := domain.InvoiceRecord{
		SupplierName: "Kolkata Mills", DocType: "INV", DocNo: "K-7",
		DocDate: "02-04-2024", TaxableValue: 500, CGST: 45, SGST: 45, TotalTax: 90,
	}
	return []domain.UnifiedInvoice{
		{
			ID: "29AABCU9567L1Z1-INV001", GSTR2B: &g, Books: &g, InGSTR2B: true, InBooks: true,
			MatchStatus: domain.MatchStatusPartial, MatchBasis: domain.MatchBasisGSTIN,
			MismatchReasons: []string{"Date Mismatch"}, Remarks: "[Manual] checked",
		},
		{
			ID: "KOLKATA MILLS-K7-books", Books: &b, InBooks: true,
			MatchStatus: domain.MatchStatusOnlyInBooks, MatchBasis: domain.MatchBasisNone,
			MismatchReasons: []string{},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleInvoices()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, export.BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "Supplier Name", header[0])
	assert.Equal(t, "Remarks", header[len(header)-1])

	first := rows[1]
	assert.Equal(t, "Acme Traders", first[0])
	assert.Equal(t, "1000.00", first[5])
	assert.Equal(t, "Yes", first[11])
	assert.Equal(t, "Partial Match", first[13])
	assert.Equal(t, "gstin", first[14])
	assert.Equal(t, "Date Mismatch; [Manual] checked", first[16])

	second := rows[2]
	assert.Equal(t, "Kolkata Mills", second[0])
	assert.Equal(t, "No", second[11])
	assert.Equal(t, "Only in Books", second[13])
	assert.Equal(t, "", second[16])
}

func TestWriteXLSX(t *testing.T) {
	summary := domain.Summary{TotalGSTR2B: 1, TotalBooks: 2, PartialProbableMatches: 1, FinalEligibleITC: 180}
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, domain.Period{Year: 2024, Month: 4}, sampleInvoices(), &summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary", "Invoices"}, f.GetSheetList())

	period, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2024-04", period)

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Supplier Name", rows[0][0])
	assert.Equal(t, "1000", rows[1][5])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"reconciliation_2024-04", "reconciliation_2024-04"},
		{"My   Report!!", "My_Report"},
		{"__a__b__", "a_b"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, export.SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)
	got := export.BuildFilename(domain.Period{Year: 2024, Month: 4}, "xlsx", now)
	assert.Equal(t, "reconciliation_2024-04_2024-05-11.xlsx", got)
}
