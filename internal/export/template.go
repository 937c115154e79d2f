package export

import (
	"encoding/csv"
	"io"

	"gstreco/internal/domain"
)

// template is a blank import file: a header row the importer recognises and
// sample rows showing the expected value formats.
type template struct {
	filename string
	rows     [][]string
}

var templates = map[domain.Source]template{
	domain.SourceBooks: {
		filename: "purchase_register_template.csv",
		rows: [][]string{
			{"Supplier Name", "GSTIN", "Doc Type", "Doc No", "Date", "Taxable Value", "IGST", "CGST", "SGST", "Cess"},
			{"ABC Corp", "29AABCU9567L1Z1", "INV", "INV/001", "01-04-2024", "10000.00", "1800.00", "0.00", "0.00", "0.00"},
			{"XYZ Pvt Ltd", "", "INV", "B2B/567", "02-04-2024", "5000.00", "0.00", "450.00", "450.00", "0.00"},
		},
	},
	domain.SourceGSTR2B: {
		filename: "gstr2b_template.csv",
		rows: [][]string{
			{"Supplier Name", "GSTIN", "Doc Type", "Doc No", "Date", "Taxable Value", "IGST", "CGST", "SGST", "Cess", "Reverse Charge"},
			{"ABC Corp", "29AABCU9567L1Z1", "INV", "GST/B2B/001", "15-04-2024", "25000.00", "4500.00", "0.00", "0.00", "0.00", "N"},
			{"DEF Logistics", "27ADEFG1234H1Z5", "INV", "RCM/001", "18-04-2024", "12000.00", "0.00", "1080.00", "1080.00", "0.00", "Y"},
		},
	},
}

// WriteTemplate writes the CSV import template for source to w, BOM first,
// and returns its download filename.
func WriteTemplate(w io.Writer, source domain.Source) (string, error) {
	tpl, ok := templates[source]
	if !ok {
		return "", domain.ErrInvalidSource
	}
	if _, err := w.Write(BOM); err != nil {
		return "", err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(tpl.rows); err != nil {
		return "", err
	}
	return tpl.filename, nil
}
