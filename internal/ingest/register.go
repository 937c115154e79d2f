package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
)

var (
	bom          = []byte{0xEF, 0xBB, 0xBF}
	nonNumeric   = regexp.MustCompile(`[^\d.-]`)
	defaultDocTp = "INV"
	defaultSupTp = "B2B"
)

// Header aliases, tried in order; a header matches when it contains the alias.
var (
	nameAliases       = []string{"supplier name", "particulars", "trade/legal name"}
	gstinAliases      = []string{"gstin"}
	docNoAliases      = []string{"doc no", "invoice number", "supplier invoice no"}
	dateAliases       = []string{"date"}
	docTypeAliases    = []string{"doc type", "invoice type", "voucher type"}
	supplyTypeAliases = []string{"supply type"}
	rcmAliases        = []string{"reverse charge", "rcm"}
)

type columnMap struct {
	name, gstin, docNo, date, docType, supplyType, rcm int
	taxable, igst, cgst, sgst, cess                   []int
}

func detectColumns(header []string) (*columnMap, error) {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	find := func(aliases []string) int {
		for _, alias := range aliases {
			for i, h := range lower {
				if strings.Contains(h, alias) {
					return i
				}
			}
		}
		return -1
	}
	all := func(match func(string) bool) []int {
		var idx []int
		for i, h := range lower {
			if match(h) {
				idx = append(idx, i)
			}
		}
		return idx
	}
	contains := func(sub string) func(string) bool {
		return func(h string) bool { return strings.Contains(h, sub) }
	}

	m := &columnMap{
		name:       find(nameAliases),
		gstin:      find(gstinAliases),
		docNo:      find(docNoAliases),
		date:       find(dateAliases),
		docType:    find(docTypeAliases),
		supplyType: find(supplyTypeAliases),
		rcm:        find(rcmAliases),
		taxable: all(func(h string) bool {
			return strings.Contains(h, "taxable") || strings.Contains(h, "purchase")
		}),
		igst: all(contains("igst")),
		cgst: all(contains("cgst")),
		sgst: all(contains("sgst")),
		cess: all(contains("cess")),
	}
	if m.name < 0 || m.docNo < 0 || m.date < 0 {
		return nil, domain.ErrMissingColumns
	}
	return m, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func sumColumns(row []string, idx []int) float64 {
	total := 0.0
	for _, i := range idx {
		v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(cell(row, i), ""), 64)
		if err == nil {
			total += v
		}
	}
	return total
}

// ParseRows maps a header row plus data rows to invoice records. Blank rows
// and rows without a document number or date (footers, totals) are skipped.
func ParseRows(rows [][]string) ([]domain.InvoiceRecord, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoRecordsFound
	}
	cols, err := detectColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var out []domain.InvoiceRecord
	for _, row := range rows[1:] {
		docNo, date := cell(row, cols.docNo), cell(row, cols.date)
		if docNo == "" || date == "" {
			continue
		}
		docType := cell(row, cols.docType)
		if cols.docType < 0 {
			docType = defaultDocTp
		}
		supplyType := cell(row, cols.supplyType)
		if cols.supplyType < 0 {
			supplyType = defaultSupTp
		}
		rcm := strings.ToUpper(cell(row, cols.rcm))

		rec := domain.InvoiceRecord{
			SupplierName:  cell(row, cols.name),
			SupplierGSTIN: cell(row, cols.gstin),
			DocType:       docType,
			DocNo:         docNo,
			DocDate:       date,
			TaxableValue:  sumColumns(row, cols.taxable),
			IGST:          sumColumns(row, cols.igst),
			CGST:          sumColumns(row, cols.cgst),
			SGST:          sumColumns(row, cols.sgst),
			Cess:          sumColumns(row, cols.cess),
			SupplyType:    supplyType,
			ReverseCharge: rcm == "Y" || rcm == "YES",
		}
		rec.TotalTax = rec.IGST + rec.CGST + rec.SGST + rec.Cess
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoRecordsFound
	}
	return out, nil
}

// ParseCSV reads a register exported as CSV. A leading UTF-8 BOM is ignored.
func ParseCSV(r io.Reader) ([]domain.InvoiceRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, bom)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv: %v", domain.ErrUnsupportedImportFormat, err)
	}
	return ParseRows(rows)
}

// ParseXLSX reads the first sheet of an Excel register.
func ParseXLSX(r io.Reader) ([]domain.InvoiceRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid xlsx: %v", domain.ErrUnsupportedImportFormat, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading xlsx rows: %w", err)
	}
	return ParseRows(rows)
}
