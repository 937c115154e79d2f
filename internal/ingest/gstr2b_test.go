package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
	"gstreco/internal/ingest"
)

const portalStatement = `{
  "data": {
    "docdata": {
      "b2b": [{
        "ctin": "29AABCU9567L1Z1",
        "trdnm": "Acme Traders",
        "inv": [
          {"inum": "INV-001", "dt": "01-04-2024", "txval": 1000, "igst": 180, "rev": "N"},
          {"inum": "INV-002", "dt": "02-04-2024", "txval": 500, "cgst": 45, "sgst": 45, "rev": "Y"},
          {"inum": "", "dt": "03-04-2024", "txval": 10}
        ]
      }],
      "cdnr": [{
        "ctin": "19AAACK1234A1Z5",
        "nt": [
          {"ntnum": "CN-9", "dt": "05-04-2024", "typ": "C", "txval": 100, "igst": 18},
          {"ntnum": "DN-3", "dt": "", "typ": "D", "txval": 100}
        ]
      }],
      "cdnra": [{
        "ctin": "19AAACK1234A1Z5",
        "trdnm": "Kolkata Mills",
        "nt": [{"ntnum": "DN-4", "dt": "06-04-2024", "typ": "D", "txval": 50, "cess": 2}]
      }]
    }
  }
}`

func TestParseGSTR2BJSON_PortalLayout(t *testing.T) {
	recs, err := ingest.ParseGSTR2BJSON(strings.NewReader(portalStatement))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "Acme Traders", recs[0].SupplierName)
	assert.Equal(t, "INV-B2B", recs[0].DocType)
	assert.Equal(t, "B2B", recs[0].SupplyType)
	assert.Equal(t, 180.0, recs[0].TotalTax)
	assert.False(t, recs[0].ReverseCharge)

	assert.Equal(t, "INV-RCM", recs[1].DocType)
	assert.True(t, recs[1].ReverseCharge)
	assert.Equal(t, 90.0, recs[1].TotalTax)

	// Missing trade name falls back to the GSTIN.
	assert.Equal(t, "19AAACK1234A1Z5", recs[2].SupplierName)
	assert.Equal(t, "CRN-CDNR", recs[2].DocType)
	assert.Equal(t, "CN-9", recs[2].DocNo)

	assert.Equal(t, "DBN-CDNRA", recs[3].DocType)
	assert.Equal(t, 2.0, recs[3].TotalTax)
}

func TestParseGSTR2BJSON_BareDocData(t *testing.T) {
	body := `{"b2ba": [{"ctin": "29AABCU9567L1Z1", "trdnm": "Acme", "inv": [{"inum": "A1", "dt": "01-04-2024", "txval": 1}]}]}`

	recs, err := ingest.ParseGSTR2BJSON(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "INV-B2BA", recs[0].DocType)
}

func TestParseGSTR2BJSON_DataWithoutDocData(t *testing.T) {
	body := `{"data": {"b2b": [{"ctin": "29AABCU9567L1Z1", "inv": [{"inum": "A1", "dt": "01-04-2024"}]}]}}`

	recs, err := ingest.ParseGSTR2BJSON(strings.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParseGSTR2BJSON_Errors(t *testing.T) {
	_, err := ingest.ParseGSTR2BJSON(strings.NewReader(`{not json`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedImportFormat)

	_, err = ingest.ParseGSTR2BJSON(strings.NewReader(`{"data": {"docdata": {}}}`))
	assert.ErrorIs(t, err, domain.ErrNoRecordsFound)
}
