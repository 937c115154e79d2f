package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
)

const (
	summarySheet  = "Summary"
	invoicesSheet = "Invoices"
)

// WriteXLSX writes a workbook with a Summary sheet and an Invoices sheet.
func WriteXLSX(out io.Writer, period domain.Period, invoices []domain.UnifiedInvoice, summary *domain.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(invoicesSheet); err != nil {
		return fmt.Errorf("creating invoices sheet: %w", err)
	}

	if err := writeSummary(f, period, summary); err != nil {
		return err
	}
	if err := writeInvoices(f, invoices); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, period domain.Period, s *domain.Summary) error {
	rows := [][]interface{}{
		{"Period", period.String()},
		{},
		{"Counts", ""},
		{"GSTR-2B Records", s.TotalGSTR2B},
		{"Books Records", s.TotalBooks},
		{"Exact Matches", s.ExactMatches},
		{"Partial / Probable Matches", s.PartialProbableMatches},
		{"Unmatched", s.Unmatched},
		{"Ineligible", s.Ineligible},
		{"Carried Forward", s.CarriedForward},
		{},
		{"Amounts", ""},
		{"Exact Match Tax", s.ExactMatchAmount},
		{"Partial / Probable Match Tax", s.PartialProbableMatchAmount},
		{"Unmatched Tax", s.UnmatchedAmount},
		{"Ineligible Tax", s.IneligibleAmount},
		{"Carried Forward Tax", s.CarriedForwardAmount},
		{},
		{"ITC", ""},
		{"ITC as per GSTR-2B", s.ITCAsPerGSTR2BTotal},
		{"ITC not in Books", s.ITCNotInBooksAmount},
		{"ITC from Books only", s.ITCFromBooksOnlyAmount},
		{"Net ITC as per Books", s.NetITCAsPerBooks},
		{"Final Eligible ITC", s.FinalEligibleITC},
		{},
		{"Tax Head", "GSTR-2B", "Books", "Eligible"},
		{"IGST", s.ITCAsPerGSTR2B.IGST, s.ITCAsPerBooks.IGST, s.EligibleITC.IGST},
		{"CGST", s.ITCAsPerGSTR2B.CGST, s.ITCAsPerBooks.CGST, s.EligibleITC.CGST},
		{"SGST", s.ITCAsPerGSTR2B.SGST, s.ITCAsPerBooks.SGST, s.EligibleITC.SGST},
		{"Cess", s.ITCAsPerGSTR2B.Cess, s.ITCAsPerBooks.Cess, s.EligibleITC.Cess},
		{"Total", s.ITCAsPerGSTR2B.Total, s.ITCAsPerBooks.Total, s.EligibleITC.Total},
	}
	return setRows(f, summarySheet, rows)
}

func writeInvoices(f *excelize.File, invoices []domain.UnifiedInvoice) error {
	rows := make([][]interface{}, 0, len(invoices)+1)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	rows = append(rows, header)

	for i := range invoices {
		inv := &invoices[i]
		row := make([]interface{}, len(columns))
		for j, v := range invoiceToRow(inv) {
			row[j] = v
		}
		// Keep amounts numeric so the sheet can be summed.
		if rec := inv.Primary(); rec != nil {
			row[5] = rec.TaxableValue
			row[6] = rec.IGST
			row[7] = rec.CGST
			row[8] = rec.SGST
			row[9] = rec.Cess
			row[10] = rec.TotalTax
		}
		rows = append(rows, row)
	}
	return setRows(f, invoicesSheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
