// Package schema owns the ordered feature-name contract shared between
// training and serving. The classifier and scaler are fit against vectors in
// exactly this order; any reordering is a silent mispredict, so the list is
// versioned through a fingerprint persisted with every model artifact.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sepsiswatch/platform/pkg/clinical/features"
)

// VectorSize is the fixed width of an assembled feature vector.
const VectorSize = 41

// engineeredNames lists the 28 derived indicators in their declared order,
// appended after the 13 base fields.
var engineeredNames = []string{
	"age_high_risk", "age_very_high_risk", "age_pediatric",
	"gender_male", "elderly_male",
	"resp_score", "cardio_score", "coag_score", "renal_score",
	"SOFA_approx", "high_HR_flag", "very_high_HR_flag",
	"low_SBP_flag", "very_low_SBP_flag", "fever_flag",
	"hypothermia_flag", "high_resp_flag", "high_WBC_flag",
	"low_WBC_flag", "qSOFA_approx", "SIRS_count",
	"cardio_risk", "resp_risk", "metabolic_risk",
	"multi_organ_risk", "severe_risk",
	"age_adjusted_sofa", "age_adjusted_sirs",
}

// FeatureNames returns the full 41-name ordering. Callers get a fresh slice;
// the contract itself is immutable.
func FeatureNames() []string {
	names := make([]string, 0, VectorSize)
	names = append(names, features.BaseFeatureNames()...)
	names = append(names, engineeredNames...)
	return names
}

// MismatchError reports a feature set that disagrees with the schema. It is
// fatal for the model version involved: serving must stop rather than feed a
// misaligned vector to the classifier.
type MismatchError struct {
	Name   string
	Detail string
}

func (e MismatchError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("feature schema mismatch: %s (%s)", e.Name, e.Detail)
	}
	return fmt.Sprintf("feature schema mismatch: %s", e.Detail)
}

// Assemble orders the extended record into the fixed 41-wide vector. The
// mismatch branch is unreachable with a correct feature engine; it exists so
// that a schema drift fails loudly instead of mispredicting.
func Assemble(ext features.ExtendedFeatureRecord) ([]float64, error) {
	names := FeatureNames()
	vector := make([]float64, len(names))
	for i, name := range names {
		value, ok := ext.Value(name)
		if !ok {
			return nil, MismatchError{Name: name, Detail: "not produced by feature engine"}
		}
		vector[i] = value
	}
	return vector, nil
}

// Fingerprint hashes the ordered name list. Artifacts produced by a training
// run carry this value; the loader refuses any artifact whose fingerprint
// disagrees with the running code.
func Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.Join(FeatureNames(), "\n")))
	return hex.EncodeToString(sum[:])
}

// Validate checks a persisted name list against the compiled-in contract.
func Validate(names []string) error {
	expected := FeatureNames()
	if len(names) != len(expected) {
		return MismatchError{Detail: fmt.Sprintf("expected %d features, artifact has %d", len(expected), len(names))}
	}
	for i, name := range expected {
		if names[i] != name {
			return MismatchError{Name: name, Detail: fmt.Sprintf("artifact has %q at position %d", names[i], i)}
		}
	}
	return nil
}
