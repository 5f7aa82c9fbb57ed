package cluster

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"rfm-segmentation/pkg/models"
)

// Matrix : réponses client × offre (1 = a répondu, 0 sinon).
type Matrix struct {
	Customers []string
	Offers    []int
	Data      *mat.Dense
}

// Pivot construit la matrice binaire. Les réponses à une offre absente du
// catalogue sont ignorées (jointure interne). Lignes et colonnes sont triées.
func Pivot(offers []models.Offer, responses []models.OfferResponse) (*Matrix, error) {
	known := make(map[int]bool, len(offers))
	for _, o := range offers {
		known[o.ID] = true
	}

	customerSet := make(map[string]bool)
	offerSet := make(map[int]bool)
	for _, r := range responses {
		if !known[r.OfferID] {
			continue
		}
		customerSet[r.CustomerName] = true
		offerSet[r.OfferID] = true
	}
	if len(customerSet) == 0 {
		return nil, models.ErrEmptyInput
	}

	m := &Matrix{
		Customers: sortedKeys(customerSet),
		Offers:    sortedKeys(offerSet),
	}
	row := indexOf(m.Customers)
	col := indexOf(m.Offers)

	m.Data = mat.NewDense(len(m.Customers), len(m.Offers), nil)
	for _, r := range responses {
		if !known[r.OfferID] {
			continue
		}
		m.Data.Set(row[r.CustomerName], col[r.OfferID], 1)
	}
	return m, nil
}

func sortedKeys[K int | string](set map[K]bool) []K {
	out := make([]K, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func indexOf[K comparable](keys []K) map[K]int {
	out := make(map[K]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}
