// Package model holds the concrete clustering artifacts consumed by the
// segment classifier: a standard scaler and a k-means model.
package model

import (
	"errors"
	"fmt"
)

// StandardScaler standardizes features as (x - mean) / scale.
type StandardScaler struct {
	Features []string  `json:"feature_names" yaml:"feature_names"`
	Mean     []float64 `json:"mean" yaml:"mean"`
	Scale    []float64 `json:"scale" yaml:"scale"`
}

// FeatureNames returns the ordered columns Transform expects.
func (s *StandardScaler) FeatureNames() []string {
	out := make([]string, len(s.Features))
	copy(out, s.Features)
	return out
}

// Transform scales each row. A zero scale is treated as 1, so constant
// features are only centered.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(s.Features) {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, len(s.Features), len(row))
		}

		scaled := make([]float64, len(row))
		for j, v := range row {
			scale := s.Scale[j]
			if scale == 0 {
				scale = 1
			}
			scaled[j] = (v - s.Mean[j]) / scale
		}
		out[i] = scaled
	}
	return out, nil
}

// Validate checks the scaler's dimensions.
func (s *StandardScaler) Validate() error {
	if len(s.Features) == 0 {
		return errors.New("scaler: feature_names is empty")
	}
	if len(s.Mean) != len(s.Features) || len(s.Scale) != len(s.Features) {
		return fmt.Errorf("scaler: %d features but %d means and %d scales",
			len(s.Features), len(s.Mean), len(s.Scale))
	}

	seen := make(map[string]bool, len(s.Features))
	for _, name := range s.Features {
		if name == "" {
			return errors.New("scaler: empty feature name")
		}
		if seen[name] {
			return fmt.Errorf("scaler: duplicate feature %q", name)
		}
		seen[name] = true
	}
	return nil
}
