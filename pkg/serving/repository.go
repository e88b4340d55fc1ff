package serving

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PredictionLog is the audit row written per served prediction.
type PredictionLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;column:id"`
	PatientID   string            `gorm:"column:patient_id"`
	ModelTag    string            `gorm:"column:model_tag"`
	PatientData datatypes.JSONMap `gorm:"column:patient_data"`
	Prediction  int               `gorm:"column:prediction"`
	Probability float64           `gorm:"column:probability"`
	RiskLevel   string            `gorm:"column:risk_level"`
	SOFAScore   int               `gorm:"column:sofa_score"`
	SIRSCount   int               `gorm:"column:sirs_count"`
	Alerts      datatypes.JSON    `gorm:"column:alerts"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
}

func (PredictionLog) TableName() string {
	return "prediction_logs"
}

// Repository persists prediction audit rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PredictionLog{})
}

func (r *Repository) RecordPrediction(ctx context.Context, result *PredictionResult) error {
	data := make(map[string]interface{}, 13)
	for name, value := range result.Raw.AsMap() {
		data[name] = value
	}

	alertsJSON := datatypes.JSON([]byte("[]"))
	if len(result.Alerts) > 0 {
		if payload, err := alertsValue(result.Alerts); err == nil {
			alertsJSON = payload
		}
	}

	row := PredictionLog{
		ID:          uuid.New(),
		PatientID:   result.PatientID,
		ModelTag:    result.ModelTag,
		PatientData: datatypes.JSONMap(data),
		Prediction:  result.Prediction,
		Probability: result.Probability,
		RiskLevel:   result.RiskLevel,
		SOFAScore:   result.SOFAScore,
		SIRSCount:   result.SIRSCount,
		Alerts:      alertsJSON,
		CreatedAt:   result.Timestamp,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Recent returns the newest audit rows up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []PredictionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func alertsValue(alerts []string) (datatypes.JSON, error) {
	payload, err := json.Marshal(alerts)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}
