package calculator

import (
	"math"
	"sort"

	"rfm-segmentation/pkg/models"
)

// Select garde les clients dont le label fait partie de labels,
// triés par montant décroissant.
func Select(customers []models.SegmentedCustomer, labels []string) []models.SegmentedCustomer {
	wanted := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		wanted[l] = struct{}{}
	}
	out := make([]models.SegmentedCustomer, 0)
	for _, c := range customers {
		if _, ok := wanted[c.Label]; ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Monetary.GreaterThan(out[j].Monetary)
	})
	return out
}

// Summarize compte les clients et cumule le montant par label (tri par label).
func Summarize(customers []models.SegmentedCustomer) []models.SegmentSummary {
	byLabel := make(map[string]*models.SegmentSummary)
	for _, c := range customers {
		s, ok := byLabel[c.Label]
		if !ok {
			s = &models.SegmentSummary{Label: c.Label}
			byLabel[c.Label] = s
		}
		s.Customers++
		s.Monetary = s.Monetary.Add(c.Monetary)
	}
	out := make([]models.SegmentSummary, 0, len(byLabel))
	for _, s := range byLabel {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Log10 renvoie les valeurs log10 de R, F et M pour les graphiques.
func Log10(c models.SegmentedCustomer) models.LogScale {
	return models.LogScale{
		Recency:   log10(float64(c.RecencyDays)),
		Frequency: log10(float64(c.Frequency)),
		Monetary:  log10(c.Monetary.InexactFloat64()),
	}
}

func log10(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	l := math.Log10(v)
	return &l
}
