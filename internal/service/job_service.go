package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// jobService is the concrete implementation of JobService
type jobService struct {
	jobs     store.JobStore
	datasets *store.DatasetRegistry
	batch    BatchService
	cfg      *config.Config
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
	// Semaphore: buffered channel bounding concurrent job processing
	sem chan struct{}
}

// newJobService creates a new JobService. Profile jobs spend most of
// their time waiting on the LLM endpoint, so the worker pool is sized
// above the CPU count.
func newJobService(jobs store.JobStore, datasets *store.DatasetRegistry, batch BatchService, cfg *config.Config, log zerolog.Logger) *jobService {
	maxWorkers := runtime.NumCPU() * 2
	if maxWorkers < 2 {
		maxWorkers = 2
	}
	if maxWorkers > 8 {
		maxWorkers = 8 // LLM endpoints rate-limit; keep concurrency modest
	}

	log.Info().Int("max_workers", maxWorkers).Msg("Initializing job service worker pool")

	return &jobService{
		jobs:     jobs,
		datasets: datasets,
		batch:    batch,
		cfg:      cfg,
		log:      log.With().Str("service", "job").Logger(),
		sem:      make(chan struct{}, maxWorkers),
	}
}

// CreateJob validates and queues a profile-generation job
func (s *jobService) CreateJob(ctx context.Context, req *models.ProfileJobRequest) (*models.Job, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.cfg.Batch.Strategy
	}
	if strategy != dataset.StrategyTop && strategy != dataset.StrategyRandom {
		return nil, fmt.Errorf("%w: %q", dataset.ErrInvalidStrategy, strategy)
	}

	count := req.Count
	if count <= 0 {
		count = s.cfg.Batch.UserCount
	}

	jobType := models.JobTypeProfiles
	if req.Type == string(models.JobTypeHistories) {
		jobType = models.JobTypeHistories
	}

	job := &models.Job{
		ID:             uuid.New().String(),
		Type:           jobType,
		Strategy:       strategy,
		UserCount:      count,
		Multimodal:     req.Multimodal,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now(),
	}
	job.OutputPath = filepath.Join(s.cfg.Batch.OutputDir, fmt.Sprintf("%s_%s.json", job.Type, job.ID))

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("type", string(job.Type)).
		Str("strategy", strategy).
		Int("count", count).
		Msg("Profile job created")

	return job, nil
}

// StartProcessor starts the background job processor
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processPendingJobs()
		}
	}
}

// StopProcessor stops the background job processor
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// processPendingJobs claims and runs all pending jobs
func (s *jobService) processPendingJobs() {
	jobs, err := s.jobs.GetPendingJobs(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return
	}

	for _, job := range jobs {
		// Acquire a semaphore slot; blocks when all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}

		// Mark as processing atomically
		marked, err := s.jobs.MarkJobAsProcessing(s.ctx, job.ID)
		if err != nil || !marked {
			<-s.sem
			continue // Another worker already picked it up
		}

		s.wg.Add(1)
		go func(j *models.Job) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			// Panic recovery so one bad job cannot take the process down
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					j.Status = models.JobStatusFailed
					s.jobs.Update(s.ctx, j)
				}
			}()
			s.processJob(j)
		}(job)
	}
}

// processJob runs a single profile/history generation job
func (s *jobService) processJob(job *models.Job) {
	select {
	case <-s.ctx.Done():
		s.log.Warn().Str("job_id", job.ID).Msg("Job processing cancelled due to shutdown")
		return
	default:
	}

	startTime := time.Now()
	now := startTime
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	s.jobs.Update(s.ctx, job)

	s.log.Info().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("Processing job")

	err := s.runBatch(job)

	duration := time.Since(startTime)
	job.DurationMs = duration.Milliseconds()
	if job.ProcessedCount > 0 && duration.Seconds() > 0 {
		job.UsersPerSec = float64(job.ProcessedCount) / duration.Seconds()
	}
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = models.JobStatusFailed
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Job failed")
	} else {
		job.Status = models.JobStatusCompleted
		job.DownloadURL = "/v1/profile-jobs/" + job.ID + "/result"
		s.log.Info().
			Str("job_id", job.ID).
			Int("total", job.TotalUsers).
			Int("successful", job.SuccessfulCount).
			Int("skipped", job.SkippedCount).
			Int("failed", job.FailedCount).
			Int64("duration_ms", job.DurationMs).
			Float64("users_per_sec", job.UsersPerSec).
			Msg("Job completed")
	}

	s.jobs.Update(s.ctx, job)
}

// runBatch executes the pipeline for one job and writes its output file
func (s *jobService) runBatch(job *models.Job) error {
	comments, ok := s.datasets.Get(store.DatasetComments)
	if !ok {
		return fmt.Errorf("%w: no comments dataset loaded", dataset.ErrMissingInput)
	}
	meta, ok := s.datasets.Metadata()
	if !ok {
		return fmt.Errorf("%w: no articles or qa dataset loaded", dataset.ErrMissingInput)
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return err
	}

	opts := BatchOptions{
		Strategy:   job.Strategy,
		Count:      job.UserCount,
		Multimodal: job.Multimodal,
		OnProgress: func(processed, successful, skipped, failed int) {
			job.ProcessedCount = processed
			job.SuccessfulCount = successful
			job.SkippedCount = skipped
			job.FailedCount = failed
			s.jobs.Update(s.ctx, job)
		},
		Checkpoint: func(partial []*models.Profile) error {
			return WriteJSON(job.OutputPath, partial)
		},
	}

	switch job.Type {
	case models.JobTypeHistories:
		histories, skipped, err := s.batch.BuildHistories(s.ctx, meta, comments, opts)
		if err != nil {
			return err
		}
		s.finishJob(job, len(histories)+len(skipped), skipped)
		return WriteJSON(job.OutputPath, histories)
	default:
		profiles, skipped, err := s.batch.GenerateProfiles(s.ctx, meta, comments, opts)
		if err != nil {
			return err
		}
		s.finishJob(job, len(profiles)+len(skipped), skipped)
		return WriteJSON(job.OutputPath, profiles)
	}
}

func (s *jobService) finishJob(job *models.Job, total int, skipped []models.JobError) {
	job.TotalUsers = total
	if len(skipped) > 0 {
		s.jobs.AddErrors(s.ctx, job.ID, skipped)
	}
}

// GetJob retrieves a job by ID with its per-user errors
func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	// Limit the inline error list; the full list has its own endpoint
	errs, err := s.jobs.GetErrors(ctx, id, 100)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job errors")
	}

	return &models.JobResponse{
		Job:        *job,
		Errors:     errs,
		ErrorCount: job.SkippedCount + job.FailedCount,
	}, nil
}

// GetJobByIdempotencyKey retrieves a job by idempotency key
func (s *jobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	return s.jobs.GetByIdempotencyKey(ctx, key)
}

// GetJobErrors retrieves all per-user errors for a job
func (s *jobService) GetJobErrors(ctx context.Context, id string) ([]models.JobError, error) {
	return s.jobs.GetErrors(ctx, id, 0)
}
