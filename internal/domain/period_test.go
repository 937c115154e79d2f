package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
)

func TestParsePeriod(t *testing.T) {
	p, err := domain.ParsePeriod("2024-04")
	require.NoError(t, err)
	assert.Equal(t, domain.Period{Year: 2024, Month: 4}, p)
	assert.Equal(t, "2024-04", p.String())

	for _, bad := range []string{"", "2024", "2024-4", "2024-13", "24-04", "abcd-01", "2024-00"} {
		_, err := domain.ParsePeriod(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidPeriod, bad)
	}
}

func TestPeriod_Next(t *testing.T) {
	assert.Equal(t, "2024-05", domain.Period{Year: 2024, Month: 4}.Next().String())
	assert.Equal(t, "2025-01", domain.Period{Year: 2024, Month: 12}.Next().String())
}

func TestPeriod_JSON(t *testing.T) {
	data, err := json.Marshal(domain.Period{Year: 2024, Month: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-09"`, string(data))

	var p domain.Period
	require.NoError(t, json.Unmarshal([]byte(`"2023-11"`), &p))
	assert.Equal(t, domain.Period{Year: 2023, Month: 11}, p)

	assert.ErrorIs(t, json.Unmarshal([]byte(`"2023-1"`), &p), domain.ErrInvalidPeriod)
}
