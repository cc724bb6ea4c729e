package store

import (
	"context"
	"sync"

	"github.com/comment-profiler/internal/models"
)

// JobStore defines the interface for job state operations
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetPendingJobs(ctx context.Context) ([]*models.Job, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddErrors(ctx context.Context, jobID string, errs []models.JobError) error
	GetErrors(ctx context.Context, jobID string, limit int) ([]models.JobError, error)
	Count(ctx context.Context) (int, error)
}

// jobStore is the in-memory JobStore. Jobs only live for the duration of
// a server run; the durable artifacts are the output JSON files.
type jobStore struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	byKey  map[string]string
	order  []string
	errors map[string][]models.JobError
}

// NewJobStore creates an empty in-memory job store
func NewJobStore() JobStore {
	return &jobStore{
		jobs:   make(map[string]*models.Job),
		byKey:  make(map[string]string),
		errors: make(map[string][]models.JobError),
	}
}

func (s *jobStore) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	s.order = append(s.order, job.ID)
	if job.IdempotencyKey != "" {
		s.byKey[job.IdempotencyKey] = job.ID
	}
	return nil
}

func (s *jobStore) Update(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *jobStore) GetByID(ctx context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (s *jobStore) GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	job := s.jobs[id]
	copied := *job
	return &copied, nil
}

func (s *jobStore) GetPendingJobs(ctx context.Context) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*models.Job
	for _, id := range s.order {
		if job := s.jobs[id]; job.Status == models.JobStatusPending {
			copied := *job
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

// MarkJobAsProcessing transitions a pending job to processing. Returns
// false when another worker already claimed it.
func (s *jobStore) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	return true, nil
}

func (s *jobStore) AddErrors(ctx context.Context, jobID string, errs []models.JobError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors[jobID] = append(s.errors[jobID], errs...)
	return nil
}

func (s *jobStore) GetErrors(ctx context.Context, jobID string, limit int) ([]models.JobError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errs := s.errors[jobID]
	if limit > 0 && len(errs) > limit {
		errs = errs[:limit]
	}
	out := make([]models.JobError, len(errs))
	copy(out, errs)
	return out, nil
}

func (s *jobStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs), nil
}
