package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tax-classifier-backend/internal/models"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Expose DB for service-level transactions
func (r *JobRepository) DB() *gorm.DB {
	return r.db
}

func (r *JobRepository) Create(job *models.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Updates(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.Job{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}
