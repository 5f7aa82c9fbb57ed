package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"rfm-segmentation/pkg/models"
)

// Profile décrit la table brute : clients par pays, bornes de dates,
// minima de quantité/prix et nombre de valeurs distinctes par colonne.
func Profile(records []models.TransactionRecord) models.SourceProfile {
	p := models.SourceProfile{
		Rows:           len(records),
		DistinctCounts: make(map[string]int),
	}
	if len(records) == 0 {
		return p
	}

	customersByCountry := make(map[string]map[string]struct{})
	distinct := map[string]map[string]struct{}{
		"CustomerID":  {},
		"Country":     {},
		"InvoiceNo":   {},
		"InvoiceDate": {},
		"Quantity":    {},
		"UnitPrice":   {},
	}

	p.FirstInvoice = records[0].InvoiceDate
	p.LastInvoice = records[0].InvoiceDate
	p.MinQuantity = records[0].Quantity
	p.MinUnitPrice = records[0].UnitPrice

	for _, r := range records {
		if _, ok := customersByCountry[r.Country]; !ok {
			customersByCountry[r.Country] = make(map[string]struct{})
		}
		if r.HasCustomer() {
			customersByCountry[r.Country][r.CustomerID] = struct{}{}
			distinct["CustomerID"][r.CustomerID] = struct{}{}
		}
		distinct["Country"][r.Country] = struct{}{}
		distinct["InvoiceNo"][r.InvoiceID] = struct{}{}
		distinct["InvoiceDate"][r.InvoiceDate.String()] = struct{}{}
		distinct["Quantity"][decimalInt(r.Quantity).String()] = struct{}{}
		distinct["UnitPrice"][r.UnitPrice.String()] = struct{}{}

		if r.InvoiceDate.Before(p.FirstInvoice) {
			p.FirstInvoice = r.InvoiceDate
		}
		if r.InvoiceDate.After(p.LastInvoice) {
			p.LastInvoice = r.InvoiceDate
		}
		if r.Quantity < p.MinQuantity {
			p.MinQuantity = r.Quantity
		}
		p.MinUnitPrice = decimal.Min(p.MinUnitPrice, r.UnitPrice)
	}

	for col, values := range distinct {
		p.DistinctCounts[col] = len(values)
	}

	p.Countries = make([]models.CountryCount, 0, len(customersByCountry))
	for country, customers := range customersByCountry {
		p.Countries = append(p.Countries, models.CountryCount{Country: country, Customers: len(customers)})
	}
	sort.Slice(p.Countries, func(i, j int) bool {
		if p.Countries[i].Customers != p.Countries[j].Customers {
			return p.Countries[i].Customers > p.Countries[j].Customers
		}
		return p.Countries[i].Country < p.Countries[j].Country
	})
	return p
}
