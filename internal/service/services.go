package service

import (
	"context"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/store"
	"github.com/rs/zerolog"
)

// ProfileGenerator produces a profile for one user history. Implemented
// by profile.Generator; the batch service only needs this one call.
type ProfileGenerator interface {
	Generate(ctx context.Context, history *models.UserHistory, multimodal bool) *models.Profile
}

// Checkpoint persists partial batch output. It is invoked by the batch
// runner after every checkpoint interval of appended results so long
// batches lose at most one interval of work.
type Checkpoint func(partial []*models.Profile) error

// BatchOptions parameterizes one batch run
type BatchOptions struct {
	Strategy   string
	Count      int
	Multimodal bool
	// Checkpoint, when set, is called with the profiles accumulated so
	// far every config.Batch.CheckpointEvery appended results.
	Checkpoint Checkpoint
	// OnProgress, when set, is called after every processed user
	OnProgress func(processed, successful, skipped, failed int)
}

// BatchService runs the selection/history/profile pipeline
type BatchService interface {
	SelectUsers(comments *dataset.Table, n int, strategy string) ([]string, error)
	BuildHistories(ctx context.Context, meta, comments *dataset.Table, opts BatchOptions) ([]*models.UserHistory, []models.JobError, error)
	GenerateProfiles(ctx context.Context, meta, comments *dataset.Table, opts BatchOptions) ([]*models.Profile, []models.JobError, error)
}

// JobService manages asynchronous profile-generation jobs
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	CreateJob(ctx context.Context, req *models.ProfileJobRequest) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetJobErrors(ctx context.Context, id string) ([]models.JobError, error)
}

// Services holds all service interfaces
type Services struct {
	Batch    BatchService
	Job      JobService
	Datasets *store.DatasetRegistry
}

// NewServices creates all services
func NewServices(datasets *store.DatasetRegistry, jobs store.JobStore, generator ProfileGenerator, cfg *config.Config, log zerolog.Logger) *Services {
	batchSvc := newBatchService(generator, cfg, log)
	jobSvc := newJobService(jobs, datasets, batchSvc, cfg, log)

	return &Services{
		Batch:    batchSvc,
		Job:      jobSvc,
		Datasets: datasets,
	}
}
