package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gstreco/internal/domain"
)

// gstr2bFile covers both the portal download ({"data": {"docdata": ...}})
// and a bare docdata object.
type gstr2bFile struct {
	Data *struct {
		DocData *gstr2bDocData `json:"docdata"`
		gstr2bDocData
	} `json:"data"`
	DocData *gstr2bDocData `json:"docdata"`
	gstr2bDocData
}

type gstr2bDocData struct {
	B2B   []gstr2bSupplier `json:"b2b"`
	B2BA  []gstr2bSupplier `json:"b2ba"`
	CDNR  []gstr2bSupplier `json:"cdnr"`
	CDNRA []gstr2bSupplier `json:"cdnra"`
}

func (d *gstr2bDocData) empty() bool {
	return len(d.B2B) == 0 && len(d.B2BA) == 0 && len(d.CDNR) == 0 && len(d.CDNRA) == 0
}

type gstr2bSupplier struct {
	CTIN      string          `json:"ctin"`
	TradeName string          `json:"trdnm"`
	Invoices  []gstr2bDocument `json:"inv"`
	Notes     []gstr2bDocument `json:"nt"`
}

type gstr2bDocument struct {
	InvoiceNo string  `json:"inum"`
	NoteNo    string  `json:"ntnum"`
	Date      string  `json:"dt"`
	Reverse   string  `json:"rev"`
	NoteType  string  `json:"typ"`
	Taxable   float64 `json:"txval"`
	IGST      float64 `json:"igst"`
	CGST      float64 `json:"cgst"`
	SGST      float64 `json:"sgst"`
	Cess      float64 `json:"cess"`
}

// ParseGSTR2BJSON reads a GSTR-2B JSON statement. Documents without a number
// or date are skipped.
func ParseGSTR2BJSON(r io.Reader) ([]domain.InvoiceRecord, error) {
	var f gstr2bFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: invalid GSTR-2B JSON: %v", domain.ErrUnsupportedImportFormat, err)
	}

	doc := &f.gstr2bDocData
	switch {
	case f.Data != nil && f.Data.DocData != nil:
		doc = f.Data.DocData
	case f.Data != nil && !f.Data.gstr2bDocData.empty():
		doc = &f.Data.gstr2bDocData
	case f.DocData != nil:
		doc = f.DocData
	}

	var out []domain.InvoiceRecord
	out = appendSection(out, doc.B2B, "B2B")
	out = appendSection(out, doc.B2BA, "B2BA")
	out = appendSection(out, doc.CDNR, "CDNR")
	out = appendSection(out, doc.CDNRA, "CDNRA")
	if len(out) == 0 {
		return nil, domain.ErrNoRecordsFound
	}
	return out, nil
}

func appendSection(out []domain.InvoiceRecord, suppliers []gstr2bSupplier, section string) []domain.InvoiceRecord {
	isNote := strings.HasPrefix(section, "CDN")
	for _, s := range suppliers {
		docs := s.Invoices
		if isNote {
			docs = s.Notes
		}
		name := s.TradeName
		if name == "" {
			name = s.CTIN
		}
		for _, d := range docs {
			docNo := d.InvoiceNo
			if docNo == "" {
				docNo = d.NoteNo
			}
			if docNo == "" || d.Date == "" {
				continue
			}
			rcm := d.Reverse == "Y"
			out = append(out, domain.InvoiceRecord{
				SupplierName:  name,
				SupplierGSTIN: s.CTIN,
				DocType:       gstr2bDocType(section, d.NoteType, rcm),
				DocNo:         docNo,
				DocDate:       d.Date,
				TaxableValue:  d.Taxable,
				IGST:          d.IGST,
				CGST:          d.CGST,
				SGST:          d.SGST,
				Cess:          d.Cess,
				TotalTax:      d.IGST + d.CGST + d.SGST + d.Cess,
				SupplyType:    section,
				ReverseCharge: rcm,
			})
		}
	}
	return out
}

// gstr2bDocType derives INV-B2B, INV-B2BA, CRN-CDNR, DBN-CDNRA or INV-RCM.
func gstr2bDocType(section, noteType string, rcm bool) string {
	if strings.HasPrefix(section, "CDN") {
		if noteType == "C" {
			return "CRN-" + section
		}
		return "DBN-" + section
	}
	if rcm {
		return "INV-RCM"
	}
	return "INV-" + section
}
