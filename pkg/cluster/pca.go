package cluster

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"rfm-segmentation/pkg/models"
)

// Project réduit les données à 2 composantes principales.
// Les colonnes sont centrées avant projection.
func Project(data mat.Matrix) (*mat.Dense, error) {
	n, d := data.Dims()
	if n < 2 || d < 2 {
		return nil, models.ErrInvalidShape
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, models.ErrInvalidShape
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	centered := mat.DenseCopyOf(data)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, centered)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, col[i]-mean)
		}
	}

	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, 2))
	return &proj, nil
}
