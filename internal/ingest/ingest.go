// Package ingest turns uploaded GSTR-2B statements and purchase registers
// into normalized invoice records.
package ingest

import (
	"io"
	"path/filepath"
	"strings"

	"gstreco/internal/domain"
)

// Format is an accepted upload format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat infers the upload format from the file name.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.ErrUnsupportedImportFormat
	}
}

// Parse reads records for source in the given format. JSON is only accepted
// for GSTR-2B, which is the format the portal issues.
func Parse(source domain.Source, format Format, r io.Reader) ([]domain.InvoiceRecord, error) {
	if !source.Valid() {
		return nil, domain.ErrInvalidSource
	}
	switch format {
	case FormatJSON:
		if source != domain.SourceGSTR2B {
			return nil, domain.ErrUnsupportedImportFormat
		}
		return ParseGSTR2BJSON(r)
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, domain.ErrUnsupportedImportFormat
	}
}
