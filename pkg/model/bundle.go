// Package model owns the persisted model bundle: classifier weights, fitted
// scaler parameters and the ordered feature-name list, versioned together.
// The three artifacts are written by one training run and refuse to load
// unless their schema fingerprints agree, so artifacts from different runs
// can never be mixed.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sepsiswatch/platform/pkg/clinical/schema"
	"github.com/sepsiswatch/platform/pkg/ml/linear"
	"github.com/sepsiswatch/platform/pkg/ml/scaler"
	"github.com/sepsiswatch/platform/pkg/storage"
)

const (
	modelFile    = "sepsis_model.json"
	scalerFile   = "scaler.json"
	featuresFile = "features.json"
)

// ErrArtifactMissing means no bundle has been published yet. It is a
// recoverable startup condition: the service comes up degraded and reports
// itself unavailable instead of crashing.
var ErrArtifactMissing = errors.New("model artifact not found")

// Bundle is the immutable, injected model capability. Built once, either by
// a training run or by Load, and passed by pointer into the serving layer;
// nothing mutates it afterwards.
type Bundle struct {
	Tag          string
	TrainedAt    time.Time
	Fingerprint  string
	Classifier   linear.Model
	Scaler       *scaler.StandardScaler
	FeatureNames []string
	Metrics      map[string]float64
}

type artifactHeader struct {
	Tag         string    `json:"tag"`
	TrainedAt   time.Time `json:"trained_at"`
	Fingerprint string    `json:"schema_fingerprint"`
}

type modelArtifact struct {
	artifactHeader
	Algorithm string             `json:"algorithm"`
	Weights   linear.Model       `json:"weights"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

type scalerArtifact struct {
	artifactHeader
	Scaler scaler.StandardScaler `json:"scaler"`
}

type featuresArtifact struct {
	artifactHeader
	Names []string `json:"feature_names"`
}

// Save persists the bundle as three artifacts in dir, each carrying the
// bundle fingerprint. All writes are atomic; a failed save is batch-fatal
// and publishes nothing usable.
func Save(dir string, b *Bundle) error {
	header := artifactHeader{Tag: b.Tag, TrainedAt: b.TrainedAt, Fingerprint: b.Fingerprint}

	if err := writeJSON(filepath.Join(dir, modelFile), modelArtifact{
		artifactHeader: header,
		Algorithm:      "logistic_regression",
		Weights:        b.Classifier,
		Metrics:        b.Metrics,
	}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, scalerFile), scalerArtifact{
		artifactHeader: header,
		Scaler:         *b.Scaler,
	}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, featuresFile), featuresArtifact{
		artifactHeader: header,
		Names:          b.FeatureNames,
	})
}

// Load reads and cross-checks the three artifacts. Any disagreement between
// the artifacts, or between the artifacts and the compiled-in schema, is a
// mismatch that blocks serving for that bundle.
func Load(dir string) (*Bundle, error) {
	var m modelArtifact
	if err := readJSON(filepath.Join(dir, modelFile), &m); err != nil {
		return nil, err
	}
	var s scalerArtifact
	if err := readJSON(filepath.Join(dir, scalerFile), &s); err != nil {
		return nil, err
	}
	var f featuresArtifact
	if err := readJSON(filepath.Join(dir, featuresFile), &f); err != nil {
		return nil, err
	}

	if m.Fingerprint != s.Fingerprint || m.Fingerprint != f.Fingerprint {
		return nil, schema.MismatchError{Detail: "artifact fingerprints disagree; bundle mixes training runs"}
	}
	if m.Fingerprint != schema.Fingerprint() {
		return nil, schema.MismatchError{Detail: "artifact schema does not match this build"}
	}
	if err := schema.Validate(f.Names); err != nil {
		return nil, err
	}
	if len(m.Weights.Coefficients) != schema.VectorSize {
		return nil, schema.MismatchError{Detail: fmt.Sprintf("model has %d coefficients, schema expects %d", len(m.Weights.Coefficients), schema.VectorSize)}
	}
	if len(s.Scaler.Means) != schema.VectorSize || len(s.Scaler.Stds) != schema.VectorSize {
		return nil, schema.MismatchError{Detail: fmt.Sprintf("scaler fitted on %d/%d features, schema expects %d", len(s.Scaler.Means), len(s.Scaler.Stds), schema.VectorSize)}
	}

	return &Bundle{
		Tag:          m.Tag,
		TrainedAt:    m.TrainedAt,
		Fingerprint:  m.Fingerprint,
		Classifier:   m.Weights,
		Scaler:       &s.Scaler,
		FeatureNames: f.Names,
		Metrics:      m.Metrics,
	}, nil
}

func writeJSON(path string, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrArtifactIO, err)
	}
	return storage.WriteAtomic(path, payload)
}

func readJSON(path string, v interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, filepath.Base(path))
		}
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("corrupt artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}
