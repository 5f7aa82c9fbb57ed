package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

/*
LOAD → lignes brutes telles que lues depuis la source (CSV ou base SQL).
*/

// TransactionRecord représente une ligne de facture brute.
// CustomerID vide signifie "client absent" (la ligne sera écartée au nettoyage).
type TransactionRecord struct {
	CustomerID  string
	Country     string
	InvoiceID   string
	InvoiceDate time.Time
	Quantity    int
	UnitPrice   decimal.Decimal
}

// HasCustomer indique si la ligne porte un identifiant client.
func (r TransactionRecord) HasCustomer() bool {
	return r.CustomerID != ""
}

// NormalizeCustomerID : "17850.0" → "17850"; "nan" et "NULL" → absent.
func NormalizeCustomerID(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return ""
	}
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		return whole
	}
	return s
}

// CleanedRecord est une ligne retenue par le filtre, enrichie du prix total.
type CleanedRecord struct {
	TransactionRecord
	TotalPrice decimal.Decimal // Quantity × UnitPrice
}

/*
COMPUTE → agrégats par client, seuils de quantiles et segments.
*/

// CustomerAggregate regroupe les mesures RFM d'un client.
type CustomerAggregate struct {
	CustomerID  string          `json:"customerId"`
	RecencyDays int             `json:"recencyDays"`
	Frequency   int             `json:"frequency"`
	Monetary    decimal.Decimal `json:"monetary"`
}

// Quantiles contient les points de coupure d'une mesure.
type Quantiles struct {
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
}

// QuantileThresholds : seuils calculés une seule fois par exécution.
type QuantileThresholds struct {
	Recency   Quantiles `json:"recency"`
	Frequency Quantiles `json:"frequency"`
	Monetary  Quantiles `json:"monetary"`
}

// SegmentedCustomer : agrégat + scores ordinaux (1 = meilleur, 4 = pire) + label "RFM".
type SegmentedCustomer struct {
	CustomerAggregate
	RecencyScore   int    `json:"recencyScore"`
	FrequencyScore int    `json:"frequencyScore"`
	MonetaryScore  int    `json:"monetaryScore"`
	Label          string `json:"label"`
}

// LogScale : valeurs log10 prêtes pour un graphique. nil si la mesure est <= 0.
type LogScale struct {
	Recency   *float64 `json:"recencyLog10,omitempty"`
	Frequency *float64 `json:"frequencyLog10,omitempty"`
	Monetary  *float64 `json:"monetaryLog10,omitempty"`
}

// SegmentSummary : effectif et montant cumulé d'un label.
type SegmentSummary struct {
	Label     string          `json:"label"`
	Customers int             `json:"customers"`
	Monetary  decimal.Decimal `json:"monetary"`
}

// SegmentResult est le résultat complet d'un calcul RFM.
type SegmentResult struct {
	Country    string              `json:"country"`
	AsOf       time.Time           `json:"asOf"`
	RowsRead   int                 `json:"rowsRead"`
	RowsKept   int                 `json:"rowsKept"`
	Thresholds QuantileThresholds  `json:"thresholds"`
	Customers  []SegmentedCustomer `json:"customers"`
}

/*
PROFILE → exploration de la source avant nettoyage.
*/

// CountryCount : nombre de clients distincts par pays.
type CountryCount struct {
	Country   string `json:"country"`
	Customers int    `json:"customers"`
}

// SourceProfile résume la table brute.
type SourceProfile struct {
	Rows           int             `json:"rows"`
	Countries      []CountryCount  `json:"countries"`
	FirstInvoice   time.Time       `json:"firstInvoice"`
	LastInvoice    time.Time       `json:"lastInvoice"`
	MinQuantity    int             `json:"minQuantity"`
	MinUnitPrice   decimal.Decimal `json:"minUnitPrice"`
	DistinctCounts map[string]int  `json:"distinctCounts"`
}

/*
CONFIG → paramètres passés au calcul
*/
// Config contient les paramètres du calcul RFM.
type Config struct {
	Country string    // marché retenu, ex: "United Kingdom"
	AsOf    time.Time // date de référence; zéro = lendemain de la dernière facture retenue
}
