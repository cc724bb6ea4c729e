package store_test

import (
	"context"
	"testing"

	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/store"
)

func newJob(id, key string) *models.Job {
	return &models.Job{
		ID:             id,
		Type:           models.JobTypeProfiles,
		Status:         models.JobStatusPending,
		IdempotencyKey: key,
	}
}

func TestJobStoreCreateAndGet(t *testing.T) {
	s := store.NewJobStore()
	ctx := context.Background()

	if err := s.Create(ctx, newJob("j1", "")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	job, err := s.GetByID(ctx, "j1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job == nil || job.ID != "j1" {
		t.Fatalf("unexpected job: %+v", job)
	}

	// Mutating the returned copy must not leak into the store.
	job.Status = models.JobStatusFailed
	again, _ := s.GetByID(ctx, "j1")
	if again.Status != models.JobStatusPending {
		t.Errorf("store state mutated through returned copy: %s", again.Status)
	}
}

func TestJobStoreGetMissing(t *testing.T) {
	s := store.NewJobStore()
	job, err := s.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job != nil {
		t.Errorf("expected nil for unknown id, got %+v", job)
	}
}

func TestJobStoreIdempotencyKey(t *testing.T) {
	s := store.NewJobStore()
	ctx := context.Background()

	if err := s.Create(ctx, newJob("j1", "key-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	job, err := s.GetByIdempotencyKey(ctx, "key-1")
	if err != nil {
		t.Fatalf("GetByIdempotencyKey failed: %v", err)
	}
	if job == nil || job.ID != "j1" {
		t.Errorf("expected j1 for key-1, got %+v", job)
	}

	if job, _ := s.GetByIdempotencyKey(ctx, "other"); job != nil {
		t.Errorf("expected nil for unknown key, got %+v", job)
	}
}

func TestMarkJobAsProcessingClaimsOnce(t *testing.T) {
	s := store.NewJobStore()
	ctx := context.Background()

	if err := s.Create(ctx, newJob("j1", "")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	claimed, err := s.MarkJobAsProcessing(ctx, "j1")
	if err != nil || !claimed {
		t.Fatalf("first claim should succeed, got claimed=%v err=%v", claimed, err)
	}
	claimed, err = s.MarkJobAsProcessing(ctx, "j1")
	if err != nil {
		t.Fatalf("second claim errored: %v", err)
	}
	if claimed {
		t.Error("job claimed twice")
	}

	pending, err := s.GetPendingJobs(ctx)
	if err != nil {
		t.Fatalf("GetPendingJobs failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("claimed job still pending: %v", pending)
	}
}

func TestJobStoreErrors(t *testing.T) {
	s := store.NewJobStore()
	ctx := context.Background()

	if err := s.Create(ctx, newJob("j1", "")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	errs := []models.JobError{
		{UID: "u1", Message: "no data for user"},
		{UID: "u2", Message: "no content identifier"},
		{UID: "u3", Message: "model refused"},
	}
	if err := s.AddErrors(ctx, "j1", errs); err != nil {
		t.Fatalf("AddErrors failed: %v", err)
	}

	got, err := s.GetErrors(ctx, "j1", 2)
	if err != nil {
		t.Fatalf("GetErrors failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit not applied, got %d errors", len(got))
	}

	all, _ := s.GetErrors(ctx, "j1", 100)
	if len(all) != 3 {
		t.Errorf("expected 3 errors, got %d", len(all))
	}
}

func TestDatasetRegistryMetadataPrefersArticles(t *testing.T) {
	r := store.NewDatasetRegistry()
	articles := dataset.New([]string{"article_id", "content"}, [][]string{{"a1", "story"}})
	qa := dataset.New([]string{"question_id", "answer_id", "content"}, [][]string{{"q1", "ans1", "answer"}})

	if _, ok := r.Metadata(); ok {
		t.Error("empty registry should have no metadata")
	}

	r.Put(store.DatasetQA, qa)
	if meta, ok := r.Metadata(); !ok || !meta.HasColumn("question_id") {
		t.Error("qa table should serve as metadata when alone")
	}

	r.Put(store.DatasetArticles, articles)
	if meta, ok := r.Metadata(); !ok || !meta.HasColumn("article_id") {
		t.Error("articles table should win over qa")
	}
}

func TestDatasetRegistryList(t *testing.T) {
	r := store.NewDatasetRegistry()
	r.Put(store.DatasetComments, dataset.New([]string{"uid"}, [][]string{{"u1"}, {"u2"}}))
	r.Put(store.DatasetArticles, dataset.New([]string{"article_id"}, [][]string{{"a1"}}))

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(list))
	}
	// Sorted by name: articles before comments.
	if list[0].Name != store.DatasetArticles || list[1].Name != store.DatasetComments {
		t.Errorf("unexpected order: %v", list)
	}
	if list[1].Rows != 2 {
		t.Errorf("expected 2 rows for comments, got %d", list[1].Rows)
	}
}
