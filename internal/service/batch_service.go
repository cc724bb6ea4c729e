package service

import (
	"context"
	"errors"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/history"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/validation"
	"github.com/rs/zerolog"
)

// batchService is the concrete implementation of BatchService
type batchService struct {
	generator ProfileGenerator
	builder   *history.Builder
	validator *validation.Validator
	cfg       *config.Config
	log       zerolog.Logger
}

// newBatchService creates a new BatchService
func newBatchService(generator ProfileGenerator, cfg *config.Config, log zerolog.Logger) *batchService {
	return &batchService{
		generator: generator,
		builder:   history.NewBuilder(cfg.Columns, log),
		validator: validation.NewValidator(cfg.Columns),
		cfg:       cfg,
		log:       log.With().Str("service", "batch").Logger(),
	}
}

// SelectUsers picks the uids a batch run will process
func (s *batchService) SelectUsers(comments *dataset.Table, n int, strategy string) ([]string, error) {
	return dataset.SelectUsers(comments, n, strategy, s.cfg.Batch.RandomSeed, s.cfg.Columns.UID)
}

// BuildHistories builds one history record per selected user. Users
// failing with no-data or no-content-identifier are skipped and
// reported; any other builder failure aborts the batch.
func (s *batchService) BuildHistories(ctx context.Context, meta, comments *dataset.Table, opts BatchOptions) ([]*models.UserHistory, []models.JobError, error) {
	uids, skipped, err := s.prepare(meta, comments, opts)
	if err != nil {
		return nil, nil, err
	}

	histories := make([]*models.UserHistory, 0, len(uids))
	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return histories, skipped, err
		}

		record, err := s.builder.Build(meta, comments, uid)
		if err != nil {
			if skippable(err) {
				s.log.Warn().Err(err).Str("uid", uid).Msg("Skipping user")
				skipped = append(skipped, models.JobError{UID: uid, Message: err.Error()})
				continue
			}
			return histories, skipped, err
		}
		histories = append(histories, record)

		if opts.OnProgress != nil {
			opts.OnProgress(len(histories)+len(skipped), len(histories), len(skipped), 0)
		}
	}

	return histories, skipped, nil
}

// GenerateProfiles runs the full pipeline: select users, build each
// history, call the LLM per user. Generation failures become error
// profiles rather than aborting; builder skips are reported alongside.
// Partial output is checkpointed every CheckpointEvery appended
// profiles so a long run can lose at most one interval of work.
func (s *batchService) GenerateProfiles(ctx context.Context, meta, comments *dataset.Table, opts BatchOptions) ([]*models.Profile, []models.JobError, error) {
	uids, skipped, err := s.prepare(meta, comments, opts)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Int("users", len(uids)).Str("strategy", opts.Strategy).
		Bool("multimodal", opts.Multimodal).Msg("Starting profile batch")

	profiles := make([]*models.Profile, 0, len(uids))
	successful, failed := 0, 0
	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return profiles, skipped, err
		}

		record, err := s.builder.Build(meta, comments, uid)
		if err != nil {
			if skippable(err) {
				s.log.Warn().Err(err).Str("uid", uid).Msg("Skipping user")
				skipped = append(skipped, models.JobError{UID: uid, Message: err.Error()})
				s.progress(opts, len(profiles)+len(skipped), successful, len(skipped), failed)
				continue
			}
			return profiles, skipped, err
		}

		p := s.generator.Generate(ctx, record, opts.Multimodal)
		profiles = append(profiles, p)
		if p.Failed() {
			failed++
			s.log.Warn().Str("uid", uid).Str("error", p.Error).Msg("Profile generation failed")
		} else {
			successful++
		}
		s.progress(opts, len(profiles)+len(skipped), successful, len(skipped), failed)

		if opts.Checkpoint != nil && len(profiles)%s.cfg.Batch.CheckpointEvery == 0 {
			if err := opts.Checkpoint(profiles); err != nil {
				s.log.Error().Err(err).Int("profiles", len(profiles)).Msg("Checkpoint write failed")
			} else {
				s.log.Info().Int("profiles", len(profiles)).Msg("Partial output checkpointed")
			}
		}
	}

	s.log.Info().Int("profiles", len(profiles)).Int("successful", successful).
		Int("failed", failed).Int("skipped", len(skipped)).Msg("Profile batch completed")

	return profiles, skipped, nil
}

// prepare validates the input tables and selects the batch's uids
func (s *batchService) prepare(meta, comments *dataset.Table, opts BatchOptions) ([]string, []models.JobError, error) {
	if err := s.validator.ValidateCommentsSchema(comments); err != nil {
		return nil, nil, err
	}
	if err := s.validator.ValidateMetadataSchema(meta); err != nil {
		return nil, nil, err
	}
	for _, w := range s.validator.CheckCommentRows(comments) {
		s.log.Warn().Int("line", w.Line).Str("field", w.Field).Msg(w.Message)
	}

	uids, err := s.SelectUsers(comments, opts.Count, opts.Strategy)
	if err != nil {
		return nil, nil, err
	}
	return uids, []models.JobError{}, nil
}

func (s *batchService) progress(opts BatchOptions, processed, successful, skipped, failed int) {
	if opts.OnProgress != nil {
		opts.OnProgress(processed, successful, skipped, failed)
	}
}

// skippable reports whether a builder failure is recoverable at the
// batch level (skip the user, continue).
func skippable(err error) bool {
	return errors.Is(err, history.ErrNoDataForUser) || errors.Is(err, history.ErrNoContentIdentifier)
}
