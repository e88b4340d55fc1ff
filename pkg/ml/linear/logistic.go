// Package linear implements the logistic-regression classifier the platform
// trains on the bootstrap cohort. It fills the generic classifier capability:
// train offline, then Predict / PredictProba at serving time.
package linear

import "math"

type Options struct {
	Epochs       int
	LearningRate float64
}

// Model is the trained artifact payload: a bias plus one coefficient per
// schema position. Serialized into the model bundle as-is.
type Model struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

// Train fits by full-batch gradient descent. Deterministic: same samples,
// labels and options always produce the same weights.
func Train(samples [][]float64, labels []float64, opts Options) Model {
	if opts.Epochs <= 0 {
		opts.Epochs = 200
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.01
	}

	n := len(samples)
	if n == 0 {
		return Model{}
	}
	featureCount := len(samples[0])
	weights := make([]float64, featureCount)
	var bias float64

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		grad := make([]float64, featureCount)
		var biasGrad float64
		for i, sample := range samples {
			residual := sigmoid(dot(weights, sample)+bias) - labels[i]
			for j := 0; j < featureCount; j++ {
				grad[j] += residual * sample[j]
			}
			biasGrad += residual
		}
		for j := 0; j < featureCount; j++ {
			weights[j] -= opts.LearningRate * grad[j] / float64(n)
		}
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	return Model{Bias: bias, Coefficients: weights}
}

// PredictProba returns the probability of the positive class.
func (m Model) PredictProba(sample []float64) float64 {
	return sigmoid(dot(m.Coefficients, sample) + m.Bias)
}

// Predict returns the class label at the 0.5 decision threshold.
func (m Model) Predict(sample []float64) int {
	if m.PredictProba(sample) >= 0.5 {
		return 1
	}
	return 0
}

// LogLoss is the mean cross-entropy of the model on a labelled set.
func (m Model) LogLoss(samples [][]float64, labels []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var loss float64
	for i, sample := range samples {
		p := m.PredictProba(sample)
		loss += -labels[i]*math.Log(p+1e-9) - (1-labels[i])*math.Log(1-p+1e-9)
	}
	return loss / float64(len(samples))
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights) && i < len(sample); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
