package cluster

import (
	"fmt"
	"sort"

	"rfm-segmentation/pkg/models"
)

// Analyze : pivot → k-means → ACP 2D → effectifs → profil du cluster focus.
func Analyze(offers []models.Offer, responses []models.OfferResponse, opts Options, focus int) (*models.ClusterResult, error) {
	m, err := Pivot(offers, responses)
	if err != nil {
		return nil, fmt.Errorf("pivot: %w", err)
	}
	a, err := KMeans(m.Data, opts)
	if err != nil {
		return nil, fmt.Errorf("kmeans k=%d sur %d clients: %w", opts.K, len(m.Customers), err)
	}
	proj, err := Project(m.Data)
	if err != nil {
		return nil, fmt.Errorf("acp: %w", err)
	}

	res := &models.ClusterResult{
		K:          opts.K,
		Iterations: a.Iterations,
		Inertia:    a.Inertia,
		Focus:      focus,
		Sizes:      Sizes(a.Labels),
	}
	membership := make(map[string]int, len(m.Customers))
	for i, name := range m.Customers {
		membership[name] = a.Labels[i]
		res.Customers = append(res.Customers, models.CustomerCluster{
			CustomerName: name,
			Cluster:      a.Labels[i],
			X:            proj.At(i, 0),
			Y:            proj.At(i, 1),
		})
	}
	res.Inside, res.Outside = ProfileCluster(offers, responses, membership, focus)
	return res, nil
}

// Sizes compte les clients par cluster, du plus grand au plus petit.
func Sizes(labels []int) []models.ClusterSize {
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	out := make([]models.ClusterSize, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.ClusterSize{Cluster: c, Customers: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Customers != out[j].Customers {
			return out[i].Customers > out[j].Customers
		}
		return out[i].Cluster < out[j].Cluster
	})
	return out
}

// ProfileCluster compare les offres acceptées par les membres du cluster
// focus à celles des autres clients : cépages, quantité min et remise moyennes.
func ProfileCluster(offers []models.Offer, responses []models.OfferResponse, membership map[string]int, focus int) (inside, outside models.OfferGroupProfile) {
	byID := make(map[int]models.Offer, len(offers))
	for _, o := range offers {
		byID[o.ID] = o
	}
	inside.Varietals = make(map[string]int)
	outside.Varietals = make(map[string]int)

	var inQty, inDisc, outQty, outDisc float64
	for _, r := range responses {
		o, ok := byID[r.OfferID]
		if !ok {
			continue
		}
		c, ok := membership[r.CustomerName]
		if !ok {
			continue
		}
		if c == focus {
			inside.Responses++
			inside.Varietals[o.Varietal]++
			inQty += float64(o.MinQuantity)
			inDisc += o.Discount
		} else {
			outside.Responses++
			outside.Varietals[o.Varietal]++
			outQty += float64(o.MinQuantity)
			outDisc += o.Discount
		}
	}
	if inside.Responses > 0 {
		inside.MeanMinQuantity = inQty / float64(inside.Responses)
		inside.MeanDiscount = inDisc / float64(inside.Responses)
	}
	if outside.Responses > 0 {
		outside.MeanMinQuantity = outQty / float64(outside.Responses)
		outside.MeanDiscount = outDisc / float64(outside.Responses)
	}
	return inside, outside
}
