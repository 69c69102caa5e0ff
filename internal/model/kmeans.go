package model

import (
	"errors"
	"fmt"
	"math"
)

// KMeans assigns rows to the nearest centroid.
type KMeans struct {
	Centroids [][]float64 `json:"centroids" yaml:"centroids"`
}

// Predict returns the index of the nearest centroid for each row, by squared
// Euclidean distance. Ties go to the lowest index.
func (k *KMeans) Predict(rows [][]float64) ([]int, error) {
	if len(k.Centroids) == 0 {
		return nil, errors.New("kmeans: no centroids")
	}

	dim := len(k.Centroids[0])
	labels := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, dim, len(row))
		}

		best, bestDist := 0, math.Inf(1)
		for c, centroid := range k.Centroids {
			var d float64
			for j, v := range row {
				diff := v - centroid[j]
				d += diff * diff
			}
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
	return labels, nil
}

// Dim returns the centroid dimension.
func (k *KMeans) Dim() int {
	if len(k.Centroids) == 0 {
		return 0
	}
	return len(k.Centroids[0])
}

// Validate checks that all centroids share one dimension.
func (k *KMeans) Validate() error {
	if len(k.Centroids) == 0 {
		return errors.New("kmeans: no centroids")
	}
	dim := len(k.Centroids[0])
	if dim == 0 {
		return errors.New("kmeans: empty centroid")
	}
	for i, c := range k.Centroids {
		if len(c) != dim {
			return fmt.Errorf("kmeans: centroid %d has %d dims, expected %d", i, len(c), dim)
		}
	}
	return nil
}
