package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tax-classifier-backend/internal/models"
)

type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// AppendBatch inserts a batch of rows atomically, so polling readers never
// observe a partially written batch.
func (r *PredictionRepository) AppendBatch(rows []models.PredictionRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}

// FindByJob returns a page of rows in input order.
func (r *PredictionRepository) FindByJob(jobID uuid.UUID, limit, offset int) ([]models.PredictionRow, error) {
	var rows []models.PredictionRow
	err := r.db.
		Where("job_id = ?", jobID).
		Order("row_index ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// AllByJob returns every row of a job in input order.
func (r *PredictionRepository) AllByJob(jobID uuid.UUID) ([]models.PredictionRow, error) {
	var rows []models.PredictionRow
	err := r.db.
		Where("job_id = ?", jobID).
		Order("row_index ASC").
		Find(&rows).Error
	return rows, err
}

func (r *PredictionRepository) CountByJob(jobID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.PredictionRow{}).
		Where("job_id = ?", jobID).
		Count(&count).Error
	return count, err
}
