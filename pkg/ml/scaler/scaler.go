// Package scaler provides the standardization step applied between feature
// assembly and classification. Parameters are fixed at fit time and persisted
// with the model; serving only ever calls Transform.
package scaler

import (
	"errors"
	"fmt"
	"math"
)

var ErrNoSamples = errors.New("cannot fit scaler on empty sample set")

// StandardScaler centers each column on its training mean and divides by the
// training standard deviation.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Fit computes per-column mean and standard deviation. Constant columns get
// a standard deviation of 1 so binary flags that never fire in the training
// set pass through unscaled instead of dividing by zero.
func Fit(samples [][]float64) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	width := len(samples[0])
	means := make([]float64, width)
	stds := make([]float64, width)

	for _, sample := range samples {
		for j, v := range sample {
			means[j] += v
		}
	}
	n := float64(len(samples))
	for j := range means {
		means[j] /= n
	}

	for _, sample := range samples {
		for j, v := range sample {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	return &StandardScaler{Means: means, Stds: stds}, nil
}

// Transform standardizes one vector. The input is not modified.
func (s *StandardScaler) Transform(vector []float64) ([]float64, error) {
	if len(vector) != len(s.Means) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d", len(s.Means), len(vector))
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = (v - s.Means[i]) / s.Stds[i]
	}
	return out, nil
}

// TransformAll standardizes a sample matrix.
func (s *StandardScaler) TransformAll(samples [][]float64) ([][]float64, error) {
	out := make([][]float64, len(samples))
	for i, sample := range samples {
		scaled, err := s.Transform(sample)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
