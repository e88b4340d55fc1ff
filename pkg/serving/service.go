package serving

import (
	"context"
	"errors"
	"time"

	"github.com/sepsiswatch/platform/pkg/clinical/alerts"
	"github.com/sepsiswatch/platform/pkg/clinical/features"
	"github.com/sepsiswatch/platform/pkg/clinical/schema"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/common/models"
	"github.com/sepsiswatch/platform/pkg/model"
)

// Classifier is the injected prediction capability. The bundled logistic
// model satisfies it; tests substitute stubs.
type Classifier interface {
	Predict(sample []float64) int
	PredictProba(sample []float64) float64
}

// Scaler is the injected standardization capability, parameters fixed at
// training time.
type Scaler interface {
	Transform(vector []float64) ([]float64, error)
}

// EventPublisher is the optional audit-event sink.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error
}

// ErrModelUnavailable is returned while no model bundle is loaded. The
// service stays up in this state and rejects every prediction; visible
// unavailability beats a silent wrong answer.
var ErrModelUnavailable = errors.New("model not loaded")

// Risk tiers, ordered. Boundaries are inclusive at the lower edge: a
// probability of exactly 0.7 is VERY HIGH.
const (
	RiskVeryHigh = "VERY HIGH"
	RiskHigh     = "HIGH"
	RiskModerate = "MODERATE"
	RiskLow      = "LOW"
)

// RiskLevel maps a positive-class probability to its tier and the
// presentation class used by downstream UIs.
func RiskLevel(probability float64) (level, class string) {
	switch {
	case probability >= 0.7:
		return RiskVeryHigh, "very-high"
	case probability >= 0.5:
		return RiskHigh, "high"
	case probability >= 0.3:
		return RiskModerate, "moderate"
	default:
		return RiskLow, "low"
	}
}

// PredictionResult is the per-request outcome. Lifetime is the request; the
// audit log, not this struct, is the system of record.
type PredictionResult struct {
	PatientID   string
	Raw         features.RawPatientRecord
	Prediction  int
	Probability float64
	RiskLevel   string
	RiskClass   string
	SOFAScore   int
	SIRSCount   int
	Alerts      []string
	ModelTag    string
	Timestamp   time.Time
}

// Service orchestrates a prediction: extend, assemble, scale, classify, tier,
// re-derive display scores, evaluate alerts. Stateless per call; the injected
// capabilities are read-only after construction, so concurrent predictions
// need no coordination.
type Service struct {
	classifier Classifier
	scaler     Scaler
	modelTag   string
	rules      alerts.RulesConfig

	// Optional collaborators, wired by main. All best-effort: their
	// failures are logged, never surfaced to the caller.
	Audit  *Repository
	Cache  *ResultCache
	Events EventPublisher
}

// NewService builds a serving core from explicit capabilities. A nil
// classifier or scaler leaves the service in the unavailable state.
func NewService(classifier Classifier, scaler Scaler, modelTag string, rules alerts.RulesConfig) *Service {
	return &Service{classifier: classifier, scaler: scaler, modelTag: modelTag, rules: rules}
}

// FromBundle wires a serving core to a loaded model bundle. A nil bundle is
// allowed and produces an unavailable service.
func FromBundle(b *model.Bundle, rules alerts.RulesConfig) *Service {
	if b == nil {
		return NewService(nil, nil, "", rules)
	}
	return NewService(b.Classifier, b.Scaler, b.Tag, rules)
}

// Available reports whether a model is loaded and predictions can be served.
func (s *Service) Available() bool {
	return s.classifier != nil && s.scaler != nil
}

// ModelTag identifies the loaded bundle, empty while unavailable.
func (s *Service) ModelTag() string {
	return s.modelTag
}

// Predict runs the full pipeline for one request.
func (s *Service) Predict(ctx context.Context, req models.PredictionRequest) (*PredictionResult, error) {
	if !s.Available() {
		return nil, ErrModelUnavailable
	}

	raw, err := features.NewRawPatientRecord(req)
	if err != nil {
		return nil, err
	}

	ext := features.Extend(raw)
	vector, err := schema.Assemble(ext)
	if err != nil {
		return nil, err
	}

	scaled, err := s.scaler.Transform(vector)
	if err != nil {
		// The loader validates scaler width against the schema, so this
		// only fires on a drifted bundle. Treat it as a schema fault.
		return nil, schema.MismatchError{Detail: err.Error()}
	}

	result := &PredictionResult{
		PatientID:   req.PatientID,
		Raw:         raw,
		Prediction:  s.classifier.Predict(scaled),
		Probability: s.classifier.PredictProba(scaled),
		SOFAScore:   ext.SOFAApprox,
		SIRSCount:   ext.SIRSCount,
		Alerts:      s.rules.Evaluate(raw),
		ModelTag:    s.modelTag,
		Timestamp:   time.Now().UTC(),
	}
	result.RiskLevel, result.RiskClass = RiskLevel(result.Probability)

	s.record(ctx, result)
	return result, nil
}

func (s *Service) record(ctx context.Context, result *PredictionResult) {
	if s.Audit != nil {
		if err := s.Audit.RecordPrediction(ctx, result); err != nil {
			logger.Log.WithError(err).Warn("failed to record prediction audit row")
		}
	}
	if s.Cache != nil && result.PatientID != "" {
		if err := s.Cache.StoreLatest(ctx, result); err != nil {
			logger.Log.WithError(err).Warn("failed to cache prediction result")
		}
	}
	if s.Events != nil {
		data := map[string]interface{}{
			"patient_id":  result.PatientID,
			"risk_level":  result.RiskLevel,
			"probability": result.Probability,
			"model_tag":   result.ModelTag,
		}
		if err := s.Events.PublishEvent(ctx, "prediction.completed", "prediction-service", data); err != nil {
			logger.Log.WithError(err).Warn("failed to publish prediction event")
		}
	}
}

// ToResponse converts a result into the transport DTO.
func (r *PredictionResult) ToResponse() models.PredictionResponse {
	alertList := r.Alerts
	if alertList == nil {
		alertList = []string{}
	}
	return models.PredictionResponse{
		PatientID:   r.PatientID,
		PatientData: r.Raw.AsMap(),
		Prediction:  r.Prediction,
		Probability: r.Probability,
		RiskLevel:   r.RiskLevel,
		SOFAScore:   r.SOFAScore,
		SIRSCount:   r.SIRSCount,
		Alerts:      alertList,
		ModelTag:    r.ModelTag,
		Timestamp:   r.Timestamp,
	}
}
