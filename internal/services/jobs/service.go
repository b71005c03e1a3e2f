// Package jobs owns the asynchronous classification job lifecycle: the
// pending -> processing -> completed/failed state machine, batch scheduling
// against the classifier gateway and the polling read side.
package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tax-classifier-backend/internal/classifier"
	"tax-classifier-backend/internal/models"
	"tax-classifier-backend/internal/normalizer"
	"tax-classifier-backend/internal/repository"
	"tax-classifier-backend/internal/selection"
	"tax-classifier-backend/internal/services/aggregate"
	"tax-classifier-backend/internal/taxonomy"
)

var (
	// ErrJobNotCompleted is returned when rows are requested before the job
	// reaches completed.
	ErrJobNotCompleted = errors.New("job not completed")
	// ErrInvalidBusinessType is returned for unrecognized business types.
	ErrInvalidBusinessType = errors.New("invalid business type")
)

// Progress is the cached polling view of a running job.
type Progress struct {
	ProcessedRows int    `json:"processed_rows"`
	TotalRows     int    `json:"total_rows"`
	Status        string `json:"status"`
}

type JobService struct {
	jobRepo    *repository.JobRepository
	predRepo   *repository.PredictionRepository
	classifier classifier.Classifier

	// BatchSize bounds rows per gateway call; MaxAttempts and RetryDelay
	// shape the per-batch retry budget.
	BatchSize   int
	MaxAttempts int
	RetryDelay  time.Duration

	progressCache sync.Map // jobID -> *Progress
}

func NewJobService(
	jobRepo *repository.JobRepository,
	predRepo *repository.PredictionRepository,
	clf classifier.Classifier,
) *JobService {
	return &JobService{
		jobRepo:     jobRepo,
		predRepo:    predRepo,
		classifier:  clf,
		BatchSize:   100,
		MaxAttempts: 3,
		RetryDelay:  500 * time.Millisecond,
	}
}

// Submit validates the request, normalizes the file synchronously and
// creates a pending job whose rows are classified in the background.
// Validation failures reject the submission before any job is created.
func (s *JobService) Submit(
	fileData []byte,
	filename string,
	businessType string,
	sel *selection.CategorySelection,
	opts normalizer.Options,
) (*models.Job, error) {
	if !taxonomy.IsValidBusinessType(businessType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBusinessType, businessType)
	}
	if sel != nil {
		if err := selection.Validate(*sel); err != nil {
			return nil, err
		}
	}

	inputs, err := normalizer.Normalize(fileData, filename, opts)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(fileData)
	job := &models.Job{
		ID:           uuid.New(),
		FileName:     filename,
		FileHash:     hex.EncodeToString(hash[:]),
		BusinessType: businessType,
		Status:       models.JobPending,
		TotalRows:    len(inputs),
		CreatedAt:    time.Now(),
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	s.progressCache.Store(job.ID, &Progress{TotalRows: len(inputs), Status: models.JobPending})

	go s.process(context.Background(), job.ID, inputs)

	return job, nil
}

// process is the single writer for its job. Batches run strictly in input
// order; each batch either fully succeeds or, after the retry budget, fails
// the whole job.
func (s *JobService) process(ctx context.Context, jobID uuid.UUID, inputs []normalizer.Input) {
	if !s.transition(jobID, models.JobPending, models.JobProcessing, nil) {
		return
	}
	s.updateProgress(jobID, 0, len(inputs), models.JobProcessing)

	processed := 0
	for start := 0; start < len(inputs); start += s.BatchSize {
		end := start + s.BatchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		batch := inputs[start:end]

		texts := make([]string, len(batch))
		for i, in := range batch {
			texts[i] = in.AccountName
		}

		var preds []classifier.Prediction
		err := withRetry(ctx, func() error {
			var callErr error
			preds, callErr = s.classifier.Classify(ctx, texts)
			return callErr
		}, retryOptions{maxAttempts: s.MaxAttempts, initialDelay: s.RetryDelay})

		if err != nil {
			log.Printf("job %s failed at rows %d-%d: %v", jobID, start, end-1, err)
			s.fail(jobID, err)
			return
		}

		rows := make([]models.PredictionRow, len(batch))
		for i, p := range preds {
			rows[i] = buildRow(jobID, batch[i], p)
		}
		if err := s.predRepo.AppendBatch(rows); err != nil {
			log.Printf("job %s failed to store rows: %v", jobID, err)
			s.fail(jobID, err)
			return
		}

		processed = end
		if err := s.jobRepo.Updates(jobID, map[string]interface{}{"processed_rows": processed}); err != nil {
			log.Printf("job %s progress update failed: %v", jobID, err)
		}
		s.updateProgress(jobID, processed, len(inputs), models.JobProcessing)
	}

	s.complete(jobID, len(inputs))
}

func buildRow(jobID uuid.UUID, in normalizer.Input, p classifier.Prediction) models.PredictionRow {
	row := models.PredictionRow{
		ID:                uuid.New(),
		JobID:             jobID,
		RowIndex:          in.RowIndex,
		SheetName:         in.SheetName,
		AccountName:       in.AccountName,
		PredictedLabel:    p.PredictedLabel,
		ConfidencePercent: p.ConfidencePercent,
		Explanation:       p.Explanation,
		CreatedAt:         time.Now(),
	}
	if len(p.Probabilities) > 0 {
		if raw, err := json.Marshal(p.Probabilities); err == nil {
			row.Probability = datatypes.JSON(raw)
		}
	}
	return row
}

// complete computes the summary exactly once from the final row set and
// freezes it onto the job record.
func (s *JobService) complete(jobID uuid.UUID, totalRows int) {
	rows, err := s.predRepo.AllByJob(jobID)
	if err != nil {
		s.fail(jobID, err)
		return
	}
	summary := aggregate.Compute(rows)

	now := time.Now()
	ok := s.transition(jobID, models.JobProcessing, models.JobCompleted, map[string]interface{}{
		"processed_rows": totalRows,
		"total_rows":     summary.TotalRows,
		"avg_confidence": summary.AvgConfidence,
		"risk_percent":   summary.RiskPercent,
		"completed_at":   &now,
	})
	if !ok {
		return
	}
	s.updateProgress(jobID, totalRows, totalRows, models.JobCompleted)
	log.Printf("job %s completed: %d rows, avg confidence %.1f, risk %.1f%%",
		jobID, summary.TotalRows, summary.AvgConfidence, summary.RiskPercent)
}

func (s *JobService) fail(jobID uuid.UUID, cause error) {
	s.jobRepo.DB().Model(&models.Job{}).
		Where("id = ? AND status IN ?", jobID, []string{models.JobPending, models.JobProcessing}).
		Updates(map[string]interface{}{
			"status":        models.JobFailed,
			"error_message": cause.Error(),
		})
	if p, ok := s.progressCache.Load(jobID); ok {
		prog := p.(*Progress)
		s.updateProgress(jobID, prog.ProcessedRows, prog.TotalRows, models.JobFailed)
	}
}

// transition performs a guarded status update so terminal states can never
// be left again.
func (s *JobService) transition(jobID uuid.UUID, from, to string, extra map[string]interface{}) bool {
	fields := map[string]interface{}{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	result := s.jobRepo.DB().Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, from).
		Updates(fields)
	if result.Error != nil {
		log.Printf("job %s transition %s->%s failed: %v", jobID, from, to, result.Error)
		return false
	}
	return result.RowsAffected == 1
}

func (s *JobService) updateProgress(jobID uuid.UUID, processed, total int, status string) {
	s.progressCache.Store(jobID, &Progress{
		ProcessedRows: processed,
		TotalRows:     total,
		Status:        status,
	})
}

// GetJob returns the job record without rows. Any status may be read at any
// time for progress display.
func (s *JobService) GetJob(jobID uuid.UUID) (*models.Job, error) {
	return s.jobRepo.GetByID(jobID)
}

// GetProgress serves polling reads from the in-memory cache, falling back to
// the persisted record after a restart.
func (s *JobService) GetProgress(jobID uuid.UUID) (*Progress, error) {
	if p, ok := s.progressCache.Load(jobID); ok {
		return p.(*Progress), nil
	}
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, err
	}
	return &Progress{
		ProcessedRows: job.ProcessedRows,
		TotalRows:     job.TotalRows,
		Status:        job.Status,
	}, nil
}

// GetRows releases the prediction rows of a completed job, paginated in
// input order.
func (s *JobService) GetRows(jobID uuid.UUID, page, pageSize int) ([]models.PredictionRow, int64, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, 0, err
	}
	if job.Status != models.JobCompleted {
		return nil, 0, fmt.Errorf("%w: status is %s", ErrJobNotCompleted, job.Status)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1000
	}

	rows, err := s.predRepo.FindByJob(jobID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.predRepo.CountByJob(jobID)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Aggregate recomputes the full summary from a completed job's stored rows.
func (s *JobService) Aggregate(jobID uuid.UUID) (aggregate.Summary, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return aggregate.Summary{}, err
	}
	if job.Status != models.JobCompleted {
		return aggregate.Summary{}, fmt.Errorf("%w: status is %s", ErrJobNotCompleted, job.Status)
	}

	rows, err := s.predRepo.AllByJob(jobID)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Compute(rows), nil
}
