package calculator

import (
	"strconv"

	"github.com/shopspring/decimal"

	"rfm-segmentation/pkg/models"
)

// ScoreRecency : récence faible = client récent = 1.
func ScoreRecency(days int, q models.Quantiles) int {
	v := decimalInt(days)
	switch {
	case v.LessThanOrEqual(q.P25):
		return 1
	case v.LessThanOrEqual(q.P50):
		return 2
	case v.LessThanOrEqual(q.P75):
		return 3
	default:
		return 4
	}
}

// ScoreFrequency : échelle inversée, fréquence élevée = 1.
func ScoreFrequency(frequency int, q models.Quantiles) int {
	return invertedScore(decimalInt(frequency), q)
}

// ScoreMonetary : échelle inversée, montant élevé = 1.
func ScoreMonetary(monetary decimal.Decimal, q models.Quantiles) int {
	return invertedScore(monetary, q)
}

func invertedScore(v decimal.Decimal, q models.Quantiles) int {
	switch {
	case v.LessThanOrEqual(q.P25):
		return 4
	case v.LessThanOrEqual(q.P50):
		return 3
	case v.LessThanOrEqual(q.P75):
		return 2
	default:
		return 1
	}
}

// Label concatène les scores dans l'ordre R, F, M.
func Label(r, f, m int) string {
	return strconv.Itoa(r) + strconv.Itoa(f) + strconv.Itoa(m)
}

// ScoreCustomer applique les trois scores et le label composite.
func ScoreCustomer(a models.CustomerAggregate, th models.QuantileThresholds) models.SegmentedCustomer {
	r := ScoreRecency(a.RecencyDays, th.Recency)
	f := ScoreFrequency(a.Frequency, th.Frequency)
	m := ScoreMonetary(a.Monetary, th.Monetary)
	return models.SegmentedCustomer{
		CustomerAggregate: a,
		RecencyScore:      r,
		FrequencyScore:    f,
		MonetaryScore:     m,
		Label:             Label(r, f, m),
	}
}
