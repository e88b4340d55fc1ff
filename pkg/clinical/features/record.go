package features

import (
	"errors"
	"fmt"

	"github.com/sepsiswatch/platform/pkg/common/models"
)

// RawPatientRecord is a single observation of vitals, labs and demographics.
// Values are fixed at construction; fields omitted from the request resolve
// to the documented normal values below.
type RawPatientRecord struct {
	Age        float64 // years
	Gender     float64 // 1=male, 0=female
	HR         float64 // beats/min
	O2Sat      float64 // %
	Temp       float64 // Celsius
	SBP        float64 // mmHg
	MAP        float64 // mmHg
	DBP        float64 // mmHg
	Resp       float64 // breaths/min
	WBC        float64 // 10^3/uL
	Platelets  float64 // 10^3/uL
	Creatinine float64 // mg/dL
	Lactate    float64 // mmol/L
}

// Normal values used when a field is absent from the input. This is the only
// place defaulting happens.
const (
	DefaultAge        = 50
	DefaultGender     = 1
	DefaultHR         = 80
	DefaultO2Sat      = 95
	DefaultTemp       = 37
	DefaultSBP        = 120
	DefaultMAP        = 80
	DefaultDBP        = 70
	DefaultResp       = 16
	DefaultWBC        = 8
	DefaultPlatelets  = 200
	DefaultCreatinine = 1.0
	DefaultLactate    = 1.5
)

var ErrInvalidInput = errors.New("invalid patient input")

// ValidationError marks a recoverable bad-input failure: the single request is
// rejected, nothing else is affected.
type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// fieldBound is the domain-validity range checked at construction. These are
// wider than any plausible bedside reading on purpose: the goal is to catch
// unit mix-ups and typos, not to second-guess the clinician.
type fieldBound struct {
	min float64
	max float64
}

var validBounds = map[string]fieldBound{
	"Age":        {0, 120},
	"Gender":     {0, 1},
	"HR":         {10, 300},
	"O2Sat":      {10, 100},
	"Temp":       {25, 45},
	"SBP":        {20, 300},
	"MAP":        {10, 200},
	"DBP":        {10, 200},
	"Resp":       {1, 80},
	"WBC":        {0.1, 100},
	"Platelets":  {1, 1000},
	"Creatinine": {0.1, 20},
	"Lactate":    {0.1, 30},
}

// NewRawPatientRecord builds an immutable record from the transport DTO,
// applying the documented defaults for absent fields and rejecting values
// outside their domain-validity range.
func NewRawPatientRecord(req models.PredictionRequest) (RawPatientRecord, error) {
	rec := RawPatientRecord{
		Age:        resolve(req.Age, DefaultAge),
		Gender:     resolve(req.Gender, DefaultGender),
		HR:         resolve(req.HR, DefaultHR),
		O2Sat:      resolve(req.O2Sat, DefaultO2Sat),
		Temp:       resolve(req.Temp, DefaultTemp),
		SBP:        resolve(req.SBP, DefaultSBP),
		MAP:        resolve(req.MAP, DefaultMAP),
		DBP:        resolve(req.DBP, DefaultDBP),
		Resp:       resolve(req.Resp, DefaultResp),
		WBC:        resolve(req.WBC, DefaultWBC),
		Platelets:  resolve(req.Platelets, DefaultPlatelets),
		Creatinine: resolve(req.Creatinine, DefaultCreatinine),
		Lactate:    resolve(req.Lactate, DefaultLactate),
	}
	if err := rec.validate(); err != nil {
		return RawPatientRecord{}, err
	}
	return rec, nil
}

func resolve(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (r RawPatientRecord) validate() error {
	for _, name := range BaseFeatureNames() {
		value, _ := r.Value(name)
		bound := validBounds[name]
		if value < bound.min || value > bound.max {
			return ValidationError{reason: fmt.Errorf(
				"%s %.2f outside valid range [%.1f, %.1f]: %w",
				name, value, bound.min, bound.max, ErrInvalidInput)}
		}
	}
	if r.Gender != 0 && r.Gender != 1 {
		return ValidationError{reason: fmt.Errorf("Gender must be 0 or 1: %w", ErrInvalidInput)}
	}
	return nil
}

// BaseFeatureNames returns the 13 raw field names in their declared order.
// This ordering is part of the model schema contract and must never change.
func BaseFeatureNames() []string {
	return []string{
		"Age", "Gender", "HR", "O2Sat", "Temp", "SBP", "MAP", "DBP", "Resp",
		"WBC", "Platelets", "Creatinine", "Lactate",
	}
}

// Value resolves a base field by schema name.
func (r RawPatientRecord) Value(name string) (float64, bool) {
	switch name {
	case "Age":
		return r.Age, true
	case "Gender":
		return r.Gender, true
	case "HR":
		return r.HR, true
	case "O2Sat":
		return r.O2Sat, true
	case "Temp":
		return r.Temp, true
	case "SBP":
		return r.SBP, true
	case "MAP":
		return r.MAP, true
	case "DBP":
		return r.DBP, true
	case "Resp":
		return r.Resp, true
	case "WBC":
		return r.WBC, true
	case "Platelets":
		return r.Platelets, true
	case "Creatinine":
		return r.Creatinine, true
	case "Lactate":
		return r.Lactate, true
	default:
		return 0, false
	}
}

// AsMap returns the record as a name->value mapping in no particular order.
func (r RawPatientRecord) AsMap() map[string]float64 {
	out := make(map[string]float64, 13)
	for _, name := range BaseFeatureNames() {
		v, _ := r.Value(name)
		out[name] = v
	}
	return out
}
