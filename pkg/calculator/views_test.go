package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-segmentation/pkg/models"
)

func seg(id, label, monetary string, recency, frequency int) models.SegmentedCustomer {
	return models.SegmentedCustomer{
		CustomerAggregate: models.CustomerAggregate{
			CustomerID:  id,
			RecencyDays: recency,
			Frequency:   frequency,
			Monetary:    decimal.RequireFromString(monetary),
		},
		Label: label,
	}
}

func TestSelect_SortsByMonetaryDesc(t *testing.T) {
	customers := []models.SegmentedCustomer{
		seg("a", "311", "100", 1, 1),
		seg("b", "444", "5", 1, 1),
		seg("c", "411", "900", 1, 1),
		seg("d", "111", "2000", 1, 1),
	}
	best := Select(customers, []string{"311", "411"})
	require.Len(t, best, 2)
	assert.Equal(t, "c", best[0].CustomerID)
	assert.Equal(t, "a", best[1].CustomerID)

	worst := Select(customers, []string{"444"})
	require.Len(t, worst, 1)
	assert.Equal(t, "b", worst[0].CustomerID)

	assert.Empty(t, Select(customers, nil))
}

func TestSummarize(t *testing.T) {
	customers := []models.SegmentedCustomer{
		seg("a", "444", "1.5", 1, 1),
		seg("b", "111", "10", 1, 1),
		seg("c", "444", "2", 1, 1),
	}
	got := Summarize(customers)
	require.Len(t, got, 2)
	assert.Equal(t, "111", got[0].Label)
	assert.Equal(t, 1, got[0].Customers)
	assert.Equal(t, "444", got[1].Label)
	assert.Equal(t, 2, got[1].Customers)
	assert.True(t, got[1].Monetary.Equal(decimal.RequireFromString("3.5")))
}

func TestLog10(t *testing.T) {
	l := Log10(seg("a", "111", "1000", 0, 10))
	assert.Nil(t, l.Recency)
	require.NotNil(t, l.Frequency)
	assert.InDelta(t, 1.0, *l.Frequency, 1e-12)
	require.NotNil(t, l.Monetary)
	assert.InDelta(t, 3.0, *l.Monetary, 1e-12)
}
