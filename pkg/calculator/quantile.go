package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"rfm-segmentation/pkg/models"
)

var (
	q25 = decimal.New(25, -2)
	q50 = decimal.New(50, -2)
	q75 = decimal.New(75, -2)
)

// ComputeThresholds calcule les seuils P25/P50/P75 des trois mesures.
func ComputeThresholds(aggregates []models.CustomerAggregate) (models.QuantileThresholds, error) {
	if len(aggregates) == 0 {
		return models.QuantileThresholds{}, models.ErrEmptyInput
	}

	recency := make([]decimal.Decimal, len(aggregates))
	frequency := make([]decimal.Decimal, len(aggregates))
	monetary := make([]decimal.Decimal, len(aggregates))
	for i, a := range aggregates {
		recency[i] = decimalInt(a.RecencyDays)
		frequency[i] = decimalInt(a.Frequency)
		monetary[i] = a.Monetary
	}

	var th models.QuantileThresholds
	var err error
	if th.Recency, err = Quartiles(recency); err != nil {
		return th, err
	}
	if th.Frequency, err = Quartiles(frequency); err != nil {
		return th, err
	}
	if th.Monetary, err = Quartiles(monetary); err != nil {
		return th, err
	}
	return th, nil
}

// Quartiles trie une copie des valeurs et renvoie P25/P50/P75.
func Quartiles(values []decimal.Decimal) (models.Quantiles, error) {
	if len(values) == 0 {
		return models.Quantiles{}, models.ErrEmptyInput
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	return models.Quantiles{
		P25: Percentile(sorted, q25),
		P50: Percentile(sorted, q50),
		P75: Percentile(sorted, q75),
	}, nil
}

// Percentile par interpolation linéaire sur des valeurs déjà triées :
// h = (n-1)·q, résultat = v[⌊h⌋] + (h-⌊h⌋)·(v[⌊h⌋+1]-v[⌊h⌋]).
// sorted ne doit pas être vide.
func Percentile(sorted []decimal.Decimal, q decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	h := q.Mul(decimalInt(n - 1))
	lo := h.Floor()
	i := int(lo.IntPart())
	if i < 0 {
		return sorted[0]
	}
	if i >= n-1 {
		return sorted[n-1]
	}
	frac := h.Sub(lo)
	return sorted[i].Add(sorted[i+1].Sub(sorted[i]).Mul(frac))
}

func decimalInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
