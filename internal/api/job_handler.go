package api

import (
	"errors"
	"net/http"

	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/service"
	"github.com/comment-profiler/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// JobHandler handles profile-job endpoints
type JobHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(services *service.Services, log zerolog.Logger) *JobHandler {
	return &JobHandler{
		services: services,
		log:      log.With().Str("handler", "job").Logger(),
	}
}

// CreateJob handles POST /v1/profile-jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	ctx := c.Request.Context()

	// Get idempotency key from header
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey != "" {
		existingJob, err := h.services.Job.GetJobByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to check idempotency key")
		}
		if existingJob != nil {
			h.log.Info().Str("job_id", existingJob.ID).Msg("Returning existing job for idempotency key")
			c.JSON(http.StatusOK, existingJob)
			return
		}
	}

	var req models.ProfileJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.IdempotencyKey = idempotencyKey

	// Jobs need a loaded comments dataset to run against
	if _, ok := h.services.Datasets.Get(store.DatasetComments); !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no comments dataset loaded, upload one first"})
		return
	}

	job, err := h.services.Job.CreateJob(ctx, &req)
	if err != nil {
		if errors.Is(err, dataset.ErrInvalidStrategy) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("Failed to create job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":   job.ID,
		"status":   job.Status,
		"type":     job.Type,
		"strategy": job.Strategy,
		"message":  "Profile job created and queued for processing",
	})
}

// GetJobStatus handles GET /v1/profile-jobs/:job_id
func (h *JobHandler) GetJobStatus(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	job, err := h.services.Job.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job status"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetJobErrors handles GET /v1/profile-jobs/:job_id/errors
func (h *JobHandler) GetJobErrors(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	errs, err := h.services.Job.GetJobErrors(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"error_count": len(errs),
		"errors":      errs,
	})
}

// DownloadResult handles GET /v1/profile-jobs/:job_id/result
func (h *JobHandler) DownloadResult(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")

	job, err := h.services.Job.GetJob(ctx, jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if job.Status != models.JobStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not completed", "status": job.Status})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+string(job.Type)+"_"+jobID+".json")
	c.Header("Content-Type", "application/json")
	c.File(job.OutputPath)
}
