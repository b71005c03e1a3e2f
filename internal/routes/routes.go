package routes

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tax-classifier-backend/internal/classifier"
	handler "tax-classifier-backend/internal/handlers"
	"tax-classifier-backend/internal/repository"
	service "tax-classifier-backend/internal/services/jobs"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	jobRepo := repository.NewJobRepository(db)
	predRepo := repository.NewPredictionRepository(db)

	modelURL := os.Getenv("MODEL_URL")
	if modelURL == "" {
		modelURL = "http://localhost:8500"
	}
	gateway := classifier.NewGateway(modelURL, 30*time.Second)

	jobService := service.NewJobService(jobRepo, predRepo, gateway)

	h := handler.NewClassificationHandler(jobService, gateway)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// File inspection
	api.POST("/files/inspect", h.InspectFile)

	// Job lifecycle routes
	jobs := api.Group("/jobs")
	jobs.POST("", h.CreateJob)
	jobs.GET("/:jobId", h.GetJob)
	jobs.GET("/:jobId/rows", h.GetJobRows)
	jobs.GET("/:jobId/aggregate", h.GetJobAggregate)

	// Direct text analysis (no job created)
	api.POST("/predict/direct", h.PredictDirect)

	// Static catalogs
	api.GET("/kbli/categories", h.GetCatalog)
	api.GET("/labels", h.GetLabels)
}
