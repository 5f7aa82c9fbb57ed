package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"rfm-segmentation/pkg/models"
)

// Colonnes obligatoires et leurs alias (en-têtes normalisés).
var transactionColumns = map[string][]string{
	"invoiceno":   {"invoiceno", "invoice", "invoiceid"},
	"invoicedate": {"invoicedate"},
	"quantity":    {"quantity"},
	"unitprice":   {"unitprice", "price"},
	"customerid":  {"customerid"},
	"country":     {"country"},
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"2006-01-02",
}

// CSVSource charge les transactions depuis un fichier CSV.
type CSVSource struct {
	Path     string
	Progress bool
}

// Load lit le fichier entier; la barre de progression suit les octets lus.
func (s CSVSource) Load(ctx context.Context) ([]models.TransactionRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if s.Progress {
		fi, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", s.Path, err)
		}
		bar := progressbar.DefaultBytes(fi.Size(), "lecture "+fi.Name())
		defer bar.Finish()
		r = io.TeeReader(f, bar)
	}

	records, err := ReadTransactions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return records, nil
}

// Describe sert aux logs.
func (s CSVSource) Describe() string {
	return "csv:" + s.Path
}

// ReadTransactions décode un flux CSV avec en-tête. L'ordre des colonnes est
// libre, les colonnes inconnues sont ignorées. Toute valeur illisible
// interrompt la lecture (numéro de ligne dans l'erreur).
func ReadTransactions(ctx context.Context, r io.Reader) ([]models.TransactionRecord, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fichier vide: %w", models.ErrEmptyInput)
		}
		return nil, fmt.Errorf("lecture en-tête: %w", err)
	}
	idx, err := columnIndex(headers, transactionColumns)
	if err != nil {
		return nil, err
	}

	var records []models.TransactionRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ligne %d: %w", line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := parseTransaction(row, idx)
		if err != nil {
			return nil, fmt.Errorf("ligne %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseTransaction(row []string, idx map[string]int) (models.TransactionRecord, error) {
	get := func(col string) string { return strings.TrimSpace(row[idx[col]]) }

	date, err := ParseDate(get("invoicedate"))
	if err != nil {
		return models.TransactionRecord{}, err
	}
	qty, err := parseInt(get("quantity"))
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := decimal.NewFromString(get("unitprice"))
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("unitprice %q: %w", get("unitprice"), models.ErrInvalidNumber)
	}

	return models.TransactionRecord{
		CustomerID:  models.NormalizeCustomerID(get("customerid")),
		Country:     get("country"),
		InvoiceID:   get("invoiceno"),
		InvoiceDate: date,
		Quantity:    qty,
		UnitPrice:   price,
	}, nil
}

// ParseDate essaie les formats usuels des exports de factures.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invoicedate %q: %w", s, models.ErrInvalidDate)
}

func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%q: %w", s, models.ErrInvalidNumber)
	}
	return int(f), nil
}

// columnIndex associe chaque colonne attendue à sa position dans l'en-tête.
func columnIndex(headers []string, wanted map[string][]string) (map[string]int, error) {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := normalizeHeader(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	idx := make(map[string]int, len(wanted))
	var missing []string
	for col, aliases := range wanted {
		found := false
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				idx[col] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(sortStrings(missing), ", "), models.ErrMissingColumn)
	}
	return idx, nil
}

// "Customer ID" → "customerid", "unit_price" → "unitprice".
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
