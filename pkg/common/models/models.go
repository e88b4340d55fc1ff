package models

import "time"

// Event is the envelope published to the platform event bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // prediction.completed, model.published
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// PredictionRequest is the transport DTO for a single risk assessment.
// Every clinical field is optional; absent fields resolve to the documented
// normal values when the raw record is built.
type PredictionRequest struct {
	PatientID  string   `json:"patient_id,omitempty"`
	Age        *float64 `json:"age,omitempty"`
	Gender     *float64 `json:"gender,omitempty"` // 1=male, 0=female
	HR         *float64 `json:"hr,omitempty"`
	O2Sat      *float64 `json:"o2sat,omitempty"`
	Temp       *float64 `json:"temp,omitempty"`
	SBP        *float64 `json:"sbp,omitempty"`
	MAP        *float64 `json:"map,omitempty"`
	DBP        *float64 `json:"dbp,omitempty"`
	Resp       *float64 `json:"resp,omitempty"`
	WBC        *float64 `json:"wbc,omitempty"`
	Platelets  *float64 `json:"platelets,omitempty"`
	Creatinine *float64 `json:"creatinine,omitempty"`
	Lactate    *float64 `json:"lactate,omitempty"`
}

// PredictionResponse mirrors serving.PredictionResult on the wire.
type PredictionResponse struct {
	PatientID   string             `json:"patient_id,omitempty"`
	PatientData map[string]float64 `json:"patient_data"`
	Prediction  int                `json:"prediction"`
	Probability float64            `json:"probability"`
	RiskLevel   string             `json:"risk_level"`
	SOFAScore   int                `json:"sofa_score"`
	SIRSCount   int                `json:"sirs_count"`
	Alerts      []string           `json:"alerts"`
	ModelTag    string             `json:"model_tag"`
	Timestamp   time.Time          `json:"timestamp"`
}

// HealthResponse is returned by the serving health check.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelTag    string `json:"model_tag,omitempty"`
}
