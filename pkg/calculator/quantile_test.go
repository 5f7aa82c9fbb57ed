package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-segmentation/pkg/models"
)

func decs(vs ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestQuartiles_LinearInterpolation(t *testing.T) {
	cases := []struct {
		name          string
		in            []decimal.Decimal
		p25, p50, p75 string
	}{
		{"single", decs("7"), "7", "7", "7"},
		{"two", decs("10", "0"), "2.5", "5", "7.5"},
		{"three", decs("400", "1", "50"), "25.5", "50", "225"},
		{"four", decs("1", "2", "3", "4"), "1.75", "2.5", "3.25"},
		{"five", decs("5", "1", "4", "2", "3"), "2", "3", "4"},
		{"ties", decs("2", "2", "2", "9"), "2", "2", "3.75"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Quartiles(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.p25, q.P25.String(), "p25")
			assert.Equal(t, tc.p50, q.P50.String(), "p50")
			assert.Equal(t, tc.p75, q.P75.String(), "p75")
		})
	}
}

func TestQuartiles_DoesNotReorderInput(t *testing.T) {
	in := decs("3", "1", "2")
	_, err := Quartiles(in)
	require.NoError(t, err)
	assert.Equal(t, "3", in[0].String())
}

func TestQuartiles_Empty(t *testing.T) {
	_, err := Quartiles(nil)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestComputeThresholds_NonDecreasing(t *testing.T) {
	aggs := []models.CustomerAggregate{
		{CustomerID: "a", RecencyDays: 300, Frequency: 1, Monetary: decimal.RequireFromString("12.5")},
		{CustomerID: "b", RecencyDays: 0, Frequency: 40, Monetary: decimal.RequireFromString("3000")},
		{CustomerID: "c", RecencyDays: 18, Frequency: 7, Monetary: decimal.RequireFromString("0.85")},
		{CustomerID: "d", RecencyDays: 18, Frequency: 7, Monetary: decimal.RequireFromString("410")},
		{CustomerID: "e", RecencyDays: 95, Frequency: 2, Monetary: decimal.RequireFromString("77.2")},
	}
	th, err := ComputeThresholds(aggs)
	require.NoError(t, err)

	for name, q := range map[string]models.Quantiles{
		"recency":   th.Recency,
		"frequency": th.Frequency,
		"monetary":  th.Monetary,
	} {
		assert.True(t, q.P25.LessThanOrEqual(q.P50), name)
		assert.True(t, q.P50.LessThanOrEqual(q.P75), name)
	}
}

func TestComputeThresholds_Empty(t *testing.T) {
	_, err := ComputeThresholds(nil)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}
