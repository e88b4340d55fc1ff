package training

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrRunNotFound = errors.New("training run not found")

// RunModel records one offline training run for lineage: which dataset, how
// many samples, what metrics, where the artifacts went.
type RunModel struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;column:id"`
	ModelTag     string            `gorm:"column:model_tag"`
	DatasetPath  string            `gorm:"column:dataset_path"`
	ArtifactDir  string            `gorm:"column:artifact_dir"`
	Fingerprint  string            `gorm:"column:schema_fingerprint"`
	Samples      int               `gorm:"column:samples"`
	Status       string            `gorm:"column:status"`
	Metrics      datatypes.JSONMap `gorm:"column:metrics"`
	ErrorMessage string            `gorm:"column:error_message"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
	CompletedAt  *time.Time        `gorm:"column:completed_at"`
}

func (RunModel) TableName() string {
	return "training_runs"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&RunModel{})
}

func (r *Repository) Create(ctx context.Context, run *RunModel) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*RunModel, error) {
	var run RunModel
	result := r.db.WithContext(ctx).First(&run, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	return &run, result.Error
}

func (r *Repository) List(ctx context.Context, limit int) ([]RunModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []RunModel
	result := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&runs)
	return runs, result.Error
}
