package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"rfm-segmentation/pkg/models"
)

// Options paramètres du k-means.
type Options struct {
	K             int
	Seed          int64
	MaxIterations int
}

// Assignment : résultat d'un k-means.
type Assignment struct {
	Labels     []int
	Centroids  *mat.Dense
	Iterations int
	Inertia    float64 // somme des distances² au centroïde
}

// KMeans : initialisation k-means++ puis itérations de Lloyd jusqu'à
// stabilité des affectations ou MaxIterations. Déterministe pour un Seed donné.
func KMeans(data mat.Matrix, opts Options) (*Assignment, error) {
	n, d := data.Dims()
	if opts.K < 1 || opts.K > n {
		return nil, models.ErrInvalidK
	}
	if d == 0 {
		return nil, models.ErrInvalidShape
	}
	maxIter := opts.MaxIterations
	if maxIter < 1 {
		maxIter = 300
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, data)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	centroids := seedPlusPlus(rows, opts.K, rng)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	iter := 0
	for iter < maxIter {
		iter++
		changed := false
		for i, x := range rows {
			best := nearest(x, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(rows, labels, centroids)
	}

	inertia := 0.0
	for i, x := range rows {
		inertia += sqDist(x, centroids[labels[i]])
	}

	c := mat.NewDense(opts.K, d, nil)
	for k, row := range centroids {
		c.SetRow(k, row)
	}
	return &Assignment{Labels: labels, Centroids: c, Iterations: iter, Inertia: inertia}, nil
}

// seedPlusPlus tire le premier centre uniformément, les suivants avec une
// probabilité proportionnelle à la distance² au centre le plus proche.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))

	dist := make([]float64, len(rows))
	for len(centroids) < k {
		total := 0.0
		for i, x := range rows {
			dist[i] = sqDist(x, centroids[nearest(x, centroids)])
			total += dist[i]
		}
		next := 0
		if total == 0 {
			// Points tous confondus avec un centre : on prend le suivant non encore choisi.
			next = len(centroids) % len(rows)
		} else {
			target := rng.Float64() * total
			for i, dd := range dist {
				target -= dd
				if target <= 0 {
					next = i
					break
				}
				next = i
			}
		}
		centroids = append(centroids, clone(rows[next]))
	}
	return centroids
}

// updateCentroids recalcule les moyennes; un cluster vide garde son centre.
func updateCentroids(rows [][]float64, labels []int, centroids [][]float64) {
	d := len(rows[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for k := range sums {
		sums[k] = make([]float64, d)
	}
	for i, x := range rows {
		floats.Add(sums[labels[i]], x)
		counts[labels[i]]++
	}
	for k := range centroids {
		if counts[k] == 0 {
			continue
		}
		floats.ScaleTo(centroids[k], 1/float64(counts[k]), sums[k])
	}
}

func nearest(x []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for k, c := range centroids {
		if dd := sqDist(x, c); dd < bestDist {
			best, bestDist = k, dd
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	dd := floats.Distance(a, b, 2)
	return dd * dd
}

func clone(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
