package models

import (
	"time"

	"github.com/google/uuid"
)

// Job status values. Transitions are monotonic: pending -> processing ->
// completed|failed, nothing leaves a terminal status.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

type Job struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"job_id"`
	FileName      string    `json:"file_name"`
	FileHash      string    `gorm:"index" json:"file_hash"`
	BusinessType  string    `gorm:"index" json:"business_type"`
	Status        string    `gorm:"index" json:"status"`
	TotalRows     int       `json:"total_rows"`
	ProcessedRows int       `json:"processed_rows"`

	// Summary fields, frozen when the job transitions to completed.
	AvgConfidence float64 `json:"avg_confidence"`
	RiskPercent   float64 `json:"risk_percent"`

	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the job can no longer change status.
func (j *Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
