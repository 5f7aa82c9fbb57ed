package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-segmentation/pkg/models"
)

func TestProfile(t *testing.T) {
	records := []models.TransactionRecord{
		rec("1", "United Kingdom", 10, 6, "2.55"),
		rec("2", "United Kingdom", 3, -1, "0.85"),
		rec("1", "United Kingdom", 1, 2, "3"),
		rec("", "France", 30, 1, "1"),
		rec("9", "France", 2, 1, "1"),
		rec("8", "EIRE", 2, 1, "1"),
		rec("7", "EIRE", 2, 1, "1"),
	}
	p := Profile(records)

	assert.Equal(t, 7, p.Rows)
	require.Len(t, p.Countries, 3)
	assert.Equal(t, models.CountryCount{Country: "EIRE", Customers: 2}, p.Countries[0])
	assert.Equal(t, models.CountryCount{Country: "United Kingdom", Customers: 2}, p.Countries[1])
	assert.Equal(t, models.CountryCount{Country: "France", Customers: 1}, p.Countries[2])

	assert.Equal(t, asOf.Add(-30*day), p.FirstInvoice)
	assert.Equal(t, asOf.Add(-1*day), p.LastInvoice)
	assert.Equal(t, -1, p.MinQuantity)
	assert.True(t, p.MinUnitPrice.Equal(decimal.RequireFromString("0.85")))
	assert.Equal(t, 3, p.DistinctCounts["Country"])
	assert.Equal(t, 5, p.DistinctCounts["CustomerID"])
}

func TestProfile_Empty(t *testing.T) {
	p := Profile(nil)
	assert.Equal(t, 0, p.Rows)
	assert.Empty(t, p.Countries)
}
