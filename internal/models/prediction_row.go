package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PredictionRow is one classified GL row belonging to a job. Row order within
// a job follows RowIndex and mirrors the normalized input order exactly.
type PredictionRow struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	JobID          uuid.UUID `gorm:"index" json:"-"`
	RowIndex       int       `gorm:"index" json:"row_index"`
	SheetName      string    `json:"sheet_name,omitempty"`
	AccountName    string    `json:"account_name"`
	PredictedLabel string    `gorm:"index" json:"predicted_tax_object"`

	// Percentage in [0,100], never a raw probability.
	ConfidencePercent float64 `json:"confidence_percent"`

	Explanation string         `json:"explanation"`
	Probability datatypes.JSON `json:"probability_distribution,omitempty"`
	CreatedAt   time.Time      `json:"-"`
}
