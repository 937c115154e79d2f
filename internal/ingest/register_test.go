package ingest_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
	"gstreco/internal/ingest"
)

func TestParseRows_DetectsColumns(t *testing.T) {
	rows := [][]string{
		{"Particulars", "GSTIN/UIN", "Supplier Invoice No.", "Date", "Voucher Type", "Purchase Value", "Taxable Amount", "IGST", "CGST Input", "SGST Input", "Cess", "RCM"},
		{"Acme Traders", "29AABCU9567L1Z1", "INV-001", "01-04-2024", "INV", "1,000.00", "50", "₹180", "", "", "", "Yes"},
		{"", "", "", "", "", "", "", "", "", "", "", ""},
		{"Grand Total", "", "", "", "", "1050", "", "180"},
	}

	recs, err := ingest.ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "Acme Traders", r.SupplierName)
	assert.Equal(t, "29AABCU9567L1Z1", r.SupplierGSTIN)
	assert.Equal(t, "INV-001", r.DocNo)
	assert.Equal(t, 1050.0, r.TaxableValue)
	assert.Equal(t, 180.0, r.IGST)
	assert.Equal(t, 180.0, r.TotalTax)
	assert.Equal(t, "B2B", r.SupplyType)
	assert.True(t, r.ReverseCharge)
}

func TestParseRows_Defaults(t *testing.T) {
	rows := [][]string{
		{"Supplier Name", "Invoice Number", "Invoice Date", "Taxable Value"},
		{"Acme", "A1", "01-04-2024", "100"},
	}

	recs, err := ingest.ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "INV", recs[0].DocType)
	assert.Equal(t, "", recs[0].SupplierGSTIN)
	assert.False(t, recs[0].ReverseCharge)
}

func TestParseRows_MissingColumns(t *testing.T) {
	_, err := ingest.ParseRows([][]string{{"Supplier Name", "Amount"}, {"Acme", "1"}})
	assert.ErrorIs(t, err, domain.ErrMissingColumns)
}

func TestParseRows_NoData(t *testing.T) {
	_, err := ingest.ParseRows(nil)
	assert.ErrorIs(t, err, domain.ErrNoRecordsFound)

	_, err = ingest.ParseRows([][]string{{"Supplier Name", "Doc No", "Date"}})
	assert.ErrorIs(t, err, domain.ErrNoRecordsFound)
}

func TestParseCSV_StripsBOM(t *testing.T) {
	body := "\ufeffSupplier Name,GSTIN,Doc No,Date,Taxable Value,CGST,SGST\n" +
		"\"Acme, Traders\",29AABCU9567L1Z1,A1,01-04-2024,1000,90,90\n"

	recs, err := ingest.ParseCSV(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Acme, Traders", recs[0].SupplierName)
	assert.Equal(t, 180.0, recs[0].TotalTax)
}

func TestParseXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Supplier Name", "GSTIN", "Doc No", "Date", "Taxable Value", "IGST"},
		{"Acme", "29AABCU9567L1Z1", "A1", "01-04-2024", 1000, 180},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	recs, err := ingest.ParseXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1000.0, recs[0].TaxableValue)
	assert.Equal(t, 180.0, recs[0].IGST)
}

func TestParseXLSX_Invalid(t *testing.T) {
	_, err := ingest.ParseXLSX(strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedImportFormat)
}
