// Package export renders reconciled invoices as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"gstreco/internal/domain"
)

// BOM is written ahead of CSV output so Excel on Windows detects UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns is the header row shared by the CSV and XLSX invoice listings.
var columns = []string{
	"Supplier Name",
	"GSTIN",
	"Doc Type",
	"Doc No",
	"Date",
	"Taxable Value",
	"IGST",
	"CGST",
	"SGST",
	"Cess",
	"Total Tax",
	"In 2B",
	"In Books",
	"Match Status",
	"Match Basis",
	"Carried Forward From",
	"Remarks",
}

// Writer wraps csv.Writer for exporting unified invoices.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices writes one row per invoice.
func (w *Writer) WriteInvoices(invoices []domain.UnifiedInvoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the BOM, header and every invoice to out.
func WriteCSV(out io.Writer, invoices []domain.UnifiedInvoice) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// invoiceToRow renders the primary record (GSTR-2B if present) of inv.
func invoiceToRow(inv *domain.UnifiedInvoice) []string {
	row := make([]string, len(columns))
	row[11] = formatBool(inv.InGSTR2B)
	row[12] = formatBool(inv.InBooks)
	row[13] = inv.MatchStatus.Label()
	row[14] = string(inv.MatchBasis)
	row[15] = inv.CarriedForwardFrom
	row[16] = remarks(inv)

	rec := inv.Primary()
	if rec == nil {
		return row
	}
	row[0] = rec.SupplierName
	row[1] = rec.SupplierGSTIN
	row[2] = rec.DocType
	row[3] = rec.DocNo
	row[4] = rec.DocDate
	row[5] = formatMoney(rec.TaxableValue)
	row[6] = formatMoney(rec.IGST)
	row[7] = formatMoney(rec.CGST)
	row[8] = formatMoney(rec.SGST)
	row[9] = formatMoney(rec.Cess)
	row[10] = formatMoney(rec.TotalTax)
	return row
}

// remarks joins mismatch reasons and free-text remarks with "; ".
func remarks(inv *domain.UnifiedInvoice) string {
	parts := make([]string, 0, len(inv.MismatchReasons)+1)
	parts = append(parts, inv.MismatchReasons...)
	if inv.Remarks != "" {
		parts = append(parts, inv.Remarks)
	}
	return strings.Join(parts, "; ")
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
