package calculator

import (
	"fmt"
	"time"

	"rfm-segmentation/pkg/models"
)

const day = 24 * time.Hour

// Segment enchaîne filtre → prix total → agrégats → quantiles → scores.
// Aucune E/S, aucun log : le résultat ne dépend que des entrées.
func Segment(records []models.TransactionRecord, cfg models.Config) (*models.SegmentResult, error) {
	cleaned := Filter(records, cfg.Country)

	asOf := cfg.AsOf
	if asOf.IsZero() {
		asOf = DefaultAsOf(cleaned)
	}

	aggregates := Aggregate(cleaned, asOf)
	thresholds, err := ComputeThresholds(aggregates)
	if err != nil {
		return nil, fmt.Errorf("quantiles %q: %w", cfg.Country, err)
	}

	customers := make([]models.SegmentedCustomer, 0, len(aggregates))
	for _, a := range aggregates {
		customers = append(customers, ScoreCustomer(a, thresholds))
	}

	return &models.SegmentResult{
		Country:    cfg.Country,
		AsOf:       asOf,
		RowsRead:   len(records),
		RowsKept:   len(cleaned),
		Thresholds: thresholds,
		Customers:  customers,
	}, nil
}

// Keep : pays ciblé, client renseigné, quantité strictement positive.
func Keep(r models.TransactionRecord, country string) bool {
	return r.Country == country && r.HasCustomer() && r.Quantity > 0
}

// Filter écarte silencieusement les lignes rejetées et calcule TotalPrice.
func Filter(records []models.TransactionRecord, country string) []models.CleanedRecord {
	out := make([]models.CleanedRecord, 0, len(records))
	for _, r := range records {
		if !Keep(r, country) {
			continue
		}
		out = append(out, models.CleanedRecord{
			TransactionRecord: r,
			TotalPrice:        r.UnitPrice.Mul(decimalInt(r.Quantity)),
		})
	}
	return out
}

// DefaultAsOf = lendemain (minuit) de la dernière facture.
func DefaultAsOf(cleaned []models.CleanedRecord) time.Time {
	var last time.Time
	for _, r := range cleaned {
		if r.InvoiceDate.After(last) {
			last = r.InvoiceDate
		}
	}
	if last.IsZero() {
		return last
	}
	y, m, d := last.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, last.Location())
}

// Aggregate regroupe par client dans l'ordre de première apparition.
func Aggregate(cleaned []models.CleanedRecord, asOf time.Time) []models.CustomerAggregate {
	index := make(map[string]int)
	lastSeen := make([]time.Time, 0)
	out := make([]models.CustomerAggregate, 0)

	for _, r := range cleaned {
		i, ok := index[r.CustomerID]
		if !ok {
			i = len(out)
			index[r.CustomerID] = i
			out = append(out, models.CustomerAggregate{CustomerID: r.CustomerID})
			lastSeen = append(lastSeen, r.InvoiceDate)
		}
		out[i].Frequency++
		out[i].Monetary = out[i].Monetary.Add(r.TotalPrice)
		if r.InvoiceDate.After(lastSeen[i]) {
			lastSeen[i] = r.InvoiceDate
		}
	}

	for i := range out {
		out[i].RecencyDays = recencyDays(asOf, lastSeen[i])
	}
	return out
}

// recencyDays tronque à la journée entière; une date de référence antérieure donne 0.
func recencyDays(asOf, last time.Time) int {
	d := asOf.Sub(last)
	if d < 0 {
		return 0
	}
	return int(d / day)
}
