package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/profile"
	"github.com/comment-profiler/internal/service"
	"github.com/comment-profiler/internal/store"
	"github.com/spf13/cobra"
)

var (
	profilesHistories  string
	profilesComments   string
	profilesMetadata   string
	profilesOut        string
	profilesStrategy   string
	profilesCount      int
	profilesMultimodal bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Generate user profiles via the chat-completion endpoint",
	Long: `Generate one profile per user history. Input is either a prebuilt
history JSON (--histories) or raw CSVs (--comments and --metadata), in
which case the history records are built first. Partial output is
written every few profiles so long runs lose little work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if profilesStrategy != "" {
			cfg.Batch.Strategy = profilesStrategy
		}
		if profilesCount > 0 {
			cfg.Batch.UserCount = profilesCount
		}

		generator := profile.NewGenerator(cfg.LLM, log)
		ctx := context.Background()

		checkpoint := func(partial []*models.Profile) error {
			return service.WriteJSON(profilesOut, partial)
		}

		var profiles []*models.Profile
		if profilesHistories != "" {
			histories, err := readHistories(profilesHistories)
			if err != nil {
				return err
			}
			profiles = generateFromHistories(ctx, generator, histories, cfg.Batch.CheckpointEvery, checkpoint)
		} else {
			if profilesComments == "" || profilesMetadata == "" {
				return fmt.Errorf("either --histories or both --comments and --metadata are required")
			}
			comments, err := dataset.Load(profilesComments)
			if err != nil {
				return err
			}
			meta, err := dataset.Load(profilesMetadata)
			if err != nil {
				return err
			}

			services := service.NewServices(store.NewDatasetRegistry(), store.NewJobStore(), generator, cfg, log)
			profiles, _, err = services.Batch.GenerateProfiles(ctx, meta, comments, service.BatchOptions{
				Strategy:   cfg.Batch.Strategy,
				Count:      cfg.Batch.UserCount,
				Multimodal: profilesMultimodal,
				Checkpoint: checkpoint,
			})
			if err != nil {
				return err
			}
		}

		if err := service.WriteJSON(profilesOut, profiles); err != nil {
			return err
		}

		fmt.Printf("Wrote %d profiles to %s\n", len(profiles), profilesOut)
		return nil
	},
}

// readHistories loads a prebuilt user-history JSON artifact
func readHistories(path string) ([]*models.UserHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var histories []*models.UserHistory
	if err := json.Unmarshal(data, &histories); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return histories, nil
}

// generateFromHistories runs the generator over prebuilt histories with
// the same checkpointing the full pipeline uses.
func generateFromHistories(ctx context.Context, generator service.ProfileGenerator,
	histories []*models.UserHistory, checkpointEvery int, checkpoint service.Checkpoint) []*models.Profile {

	profiles := make([]*models.Profile, 0, len(histories))
	for i, h := range histories {
		profiles = append(profiles, generator.Generate(ctx, h, profilesMultimodal))
		if checkpoint != nil && (i+1)%checkpointEvery == 0 {
			if err := checkpoint(profiles); err == nil {
				fmt.Printf("Processed %d/%d users, partial output saved\n", i+1, len(histories))
			}
		}
	}
	return profiles
}

func init() {
	profilesCmd.Flags().StringVar(&profilesHistories, "histories", "", "prebuilt user histories JSON file")
	profilesCmd.Flags().StringVar(&profilesComments, "comments", "", "comments CSV file")
	profilesCmd.Flags().StringVar(&profilesMetadata, "metadata", "", "articles or Q&A metadata CSV file")
	profilesCmd.Flags().StringVar(&profilesOut, "out", "user_profiles.json", "output JSON file")
	profilesCmd.Flags().StringVar(&profilesStrategy, "strategy", "", "user selection strategy: top or random")
	profilesCmd.Flags().IntVar(&profilesCount, "count", 0, "number of users to select")
	profilesCmd.Flags().BoolVar(&profilesMultimodal, "multimodal", false, "attach shared images for a vision model")
}
