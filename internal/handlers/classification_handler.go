package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tax-classifier-backend/internal/classifier"
	"tax-classifier-backend/internal/inspector"
	"tax-classifier-backend/internal/models"
	"tax-classifier-backend/internal/normalizer"
	"tax-classifier-backend/internal/selection"
	"tax-classifier-backend/internal/services/aggregate"
	service "tax-classifier-backend/internal/services/jobs"
	"tax-classifier-backend/internal/taxonomy"
)

type ClassificationHandler struct {
	jobs *service.JobService
	clf  classifier.Classifier
}

func NewClassificationHandler(jobs *service.JobService, clf classifier.Classifier) *ClassificationHandler {
	return &ClassificationHandler{jobs: jobs, clf: clf}
}

// InspectFile returns sheet structure and a capped preview for an upload.
func (h *ClassificationHandler) InspectFile(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := inspector.Inspect(data, filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateJob accepts a file plus business_type and starts an asynchronous
// classification job.
func (h *ClassificationHandler) CreateJob(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	businessType := c.PostForm("business_type")

	var sel *selection.CategorySelection
	if raw := c.PostForm("selection"); raw != "" {
		var parsed selection.CategorySelection
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selection payload"})
			return
		}
		sel = &parsed
	}

	opts := normalizer.Options{
		Sheet:      c.PostForm("sheet"),
		CombineAll: c.PostForm("combine_all") == "true",
	}

	job, err := h.jobs.Submit(data, filename, businessType, sel, opts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBusinessType),
			errors.Is(err, selection.ErrInvalidSelection),
			errors.Is(err, normalizer.ErrNoUsableColumn),
			errors.Is(err, inspector.ErrUnsupportedFormat),
			errors.Is(err, inspector.ErrCorruptFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	log.Println("Created job", job.ID, "for", filename, "rows:", job.TotalRows)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID.String(),
		"status": job.Status,
	})
}

// GetJob returns the job record without rows. The summary block appears only
// once the job is completed.
func (h *ClassificationHandler) GetJob(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	progress, _ := h.jobs.GetProgress(jobID)

	resp := gin.H{
		"job_id":        job.ID.String(),
		"status":        job.Status,
		"file_name":     job.FileName,
		"business_type": job.BusinessType,
		"created_at":    job.CreatedAt,
	}
	if progress != nil {
		resp["processed_rows"] = progress.ProcessedRows
		resp["total_rows"] = progress.TotalRows
	}
	if job.Status == models.JobCompleted {
		resp["summary"] = gin.H{
			"total_rows":     job.TotalRows,
			"avg_confidence": job.AvgConfidence,
			"risk_percent":   job.RiskPercent,
		}
	}
	if job.Status == models.JobFailed {
		resp["error_message"] = job.ErrorMessage
	}

	c.JSON(http.StatusOK, resp)
}

// GetJobRows returns the full prediction sequence of a completed job.
func (h *ClassificationHandler) GetJobRows(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "1000"))

	rows, total, err := h.jobs.GetRows(jobID, page, pageSize)
	if err != nil {
		writeJobReadError(c, err)
		return
	}

	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	c.JSON(http.StatusOK, gin.H{
		"rows": rows,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
			"pages":     pages,
		},
	})
}

// GetJobAggregate recomputes the summary statistics from stored rows.
func (h *ClassificationHandler) GetJobAggregate(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}

	summary, err := h.jobs.Aggregate(jobID)
	if err != nil {
		writeJobReadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":    summary,
		"top_labels": summary.TopN(10),
	})
}

// PredictDirect classifies a capped batch of raw text lines synchronously,
// bypassing the job lifecycle entirely.
func (h *ClassificationHandler) PredictDirect(c *gin.Context) {
	var payload struct {
		Texts []string `json:"texts"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(payload.Texts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no texts provided"})
		return
	}

	texts := normalizer.CapTexts(payload.Texts)

	preds, err := h.clf.Classify(c.Request.Context(), texts)
	if err != nil {
		if errors.Is(err, classifier.ErrTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// Ad-hoc aggregate over the same rows, no job persisted.
	rows := make([]models.PredictionRow, len(preds))
	for i, p := range preds {
		rows[i] = models.PredictionRow{
			RowIndex:          i,
			AccountName:       p.AccountName,
			PredictedLabel:    p.PredictedLabel,
			ConfidencePercent: p.ConfidencePercent,
			Explanation:       p.Explanation,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": preds,
		"summary":     aggregate.Compute(rows),
		"truncated":   len(texts) < len(payload.Texts),
	})
}

// GetCatalog serves the static KBLI category/division catalog.
func (h *ClassificationHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, taxonomy.KBLICatalog())
}

// GetLabels serves the tax-object label taxonomy with display metadata.
func (h *ClassificationHandler) GetLabels(c *gin.Context) {
	labels := make([]gin.H, 0, len(taxonomy.AllLabels))
	for _, l := range taxonomy.AllLabels {
		info := taxonomy.Info(l)
		labels = append(labels, gin.H{
			"label":       string(l),
			"emoji":       info.Emoji,
			"category":    info.Category,
			"description": info.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels, "business_types": taxonomy.BusinessTypes})
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func parseJobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJobReadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	case errors.Is(err, service.ErrJobNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
