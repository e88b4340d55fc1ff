package training

import "github.com/sepsiswatch/platform/pkg/ml/linear"

// Evaluation is the held-out test-set performance of a trained classifier.
type Evaluation struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
	LogLoss   float64 `json:"log_loss"`

	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Evaluate scores the model against a labelled set.
func Evaluate(m linear.Model, samples [][]float64, labels []float64) Evaluation {
	var ev Evaluation
	if len(samples) == 0 {
		return ev
	}

	scores := make([]float64, len(samples))
	for i, sample := range samples {
		scores[i] = m.PredictProba(sample)
		predicted := scores[i] >= 0.5
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			ev.TruePositives++
		case predicted && !actual:
			ev.FalsePositives++
		case !predicted && actual:
			ev.FalseNegatives++
		default:
			ev.TrueNegatives++
		}
	}

	total := float64(len(samples))
	ev.Accuracy = float64(ev.TruePositives+ev.TrueNegatives) / total
	if ev.TruePositives+ev.FalsePositives > 0 {
		ev.Precision = float64(ev.TruePositives) / float64(ev.TruePositives+ev.FalsePositives)
	}
	if ev.TruePositives+ev.FalseNegatives > 0 {
		ev.Recall = float64(ev.TruePositives) / float64(ev.TruePositives+ev.FalseNegatives)
	}
	if ev.Precision+ev.Recall > 0 {
		ev.F1 = 2 * ev.Precision * ev.Recall / (ev.Precision + ev.Recall)
	}
	ev.ROCAUC = rocAUC(scores, labels)
	ev.LogLoss = m.LogLoss(samples, labels)
	return ev
}

// rocAUC is the Mann-Whitney estimate: the fraction of positive/negative
// pairs ranked correctly, ties counted half. Quadratic, fine at test-split
// sizes.
func rocAUC(scores, labels []float64) float64 {
	var pairs, favorable float64
	for i, si := range scores {
		if labels[i] != 1 {
			continue
		}
		for j, sj := range scores {
			if labels[j] == 1 {
				continue
			}
			pairs++
			switch {
			case si > sj:
				favorable++
			case si == sj:
				favorable += 0.5
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return favorable / pairs
}
