package models

import (
	"time"
)

// JobStatus represents the status of a profile-generation job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeProfiles  JobType = "profiles"
	JobTypeHistories JobType = "histories"
)

// Job represents an asynchronous history/profile generation run
type Job struct {
	ID              string     `json:"job_id"`
	Type            JobType    `json:"type"`
	Strategy        string     `json:"strategy"`
	UserCount       int        `json:"user_count"`
	Multimodal      bool       `json:"multimodal,omitempty"`
	Status          JobStatus  `json:"status"`
	IdempotencyKey  string     `json:"idempotency_key,omitempty"`
	TotalUsers      int        `json:"total_users"`
	ProcessedCount  int        `json:"processed"`
	SuccessfulCount int        `json:"successful"`
	SkippedCount    int        `json:"skipped"`
	FailedCount     int        `json:"failed"`
	DurationMs      int64      `json:"duration_ms,omitempty"`
	UsersPerSec     float64    `json:"users_per_sec,omitempty"`
	OutputPath      string     `json:"-"`
	DownloadURL     string     `json:"download_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// JobError records one user that could not be processed in a batch
type JobError struct {
	UID     string `json:"uid"`
	Message string `json:"message"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	Job
	Errors     []JobError `json:"errors,omitempty"`
	ErrorCount int        `json:"error_count,omitempty"`
}

// ProfileJobRequest represents a profile-generation job request
type ProfileJobRequest struct {
	Type           string `json:"type"`     // profiles (default) or histories
	Strategy       string `json:"strategy"` // top or random
	Count          int    `json:"count"`
	Multimodal     bool   `json:"multimodal"`
	IdempotencyKey string `json:"-"` // From header
}
