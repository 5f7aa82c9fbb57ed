package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"rfm-segmentation/pkg/models"
)

// Les fichiers d'offres sont lus par position, l'en-tête est ignoré :
// offer_id, campaign, varietal, min_quantity, discount, origin, past_peak.
const offerFields = 7

// LoadOffers lit le fichier des offres.
func LoadOffers(path string) ([]models.Offer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	offers, err := ReadOffers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return offers, nil
}

// ReadOffers décode les offres.
func ReadOffers(r io.Reader) ([]models.Offer, error) {
	rows, err := readRows(r, offerFields)
	if err != nil {
		return nil, err
	}
	out := make([]models.Offer, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		id, err := parseInt(row[0])
		if err != nil {
			return nil, fmt.Errorf("ligne %d: offer_id: %w", line, err)
		}
		minQty, err := parseInt(row[3])
		if err != nil {
			return nil, fmt.Errorf("ligne %d: min_quantity: %w", line, err)
		}
		discount, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("ligne %d: discount %q: %w", line, row[4], models.ErrInvalidNumber)
		}
		pastPeak, err := strconv.ParseBool(row[6])
		if err != nil {
			return nil, fmt.Errorf("ligne %d: past_peak %q: %w", line, row[6], models.ErrInvalidNumber)
		}
		out = append(out, models.Offer{
			ID:          id,
			Campaign:    row[1],
			Varietal:    row[2],
			MinQuantity: minQty,
			Discount:    discount,
			Origin:      row[5],
			PastPeak:    pastPeak,
		})
	}
	return out, nil
}

// LoadResponses lit le fichier des réponses (customer_name, offer_id).
func LoadResponses(path string) ([]models.OfferResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	responses, err := ReadResponses(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return responses, nil
}

// ReadResponses décode les réponses.
func ReadResponses(r io.Reader) ([]models.OfferResponse, error) {
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	out := make([]models.OfferResponse, 0, len(rows))
	for i, row := range rows {
		id, err := parseInt(row[1])
		if err != nil {
			return nil, fmt.Errorf("ligne %d: offer_id: %w", i+2, err)
		}
		out = append(out, models.OfferResponse{CustomerName: row[0], OfferID: id})
	}
	return out, nil
}

// readRows saute l'en-tête et exige au moins n colonnes par ligne.
func readRows(r io.Reader, n int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fichier vide: %w", models.ErrEmptyInput)
		}
		return nil, fmt.Errorf("lecture en-tête: %w", err)
	}
	if len(header) < n {
		return nil, fmt.Errorf("%d colonnes, %d attendues: %w", len(header), n, models.ErrMissingColumn)
	}

	var rows [][]string
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ligne %d: %w", line, err)
		}
		if len(row) < n {
			return nil, fmt.Errorf("ligne %d: %d colonnes, %d attendues: %w", line, len(row), n, models.ErrMissingColumn)
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}
