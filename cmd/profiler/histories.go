package main

import (
	"context"
	"fmt"

	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/profile"
	"github.com/comment-profiler/internal/service"
	"github.com/comment-profiler/internal/store"
	"github.com/spf13/cobra"
)

var (
	historiesComments string
	historiesMetadata string
	historiesOut      string
	historiesStrategy string
	historiesCount    int
)

var historiesCmd = &cobra.Command{
	Use:   "histories",
	Short: "Build per-user history records from comment and metadata CSVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if historiesStrategy != "" {
			cfg.Batch.Strategy = historiesStrategy
		}
		if historiesCount > 0 {
			cfg.Batch.UserCount = historiesCount
		}

		comments, err := dataset.Load(historiesComments)
		if err != nil {
			return err
		}
		meta, err := dataset.Load(historiesMetadata)
		if err != nil {
			return err
		}

		generator := profile.NewGenerator(cfg.LLM, log)
		services := service.NewServices(store.NewDatasetRegistry(), store.NewJobStore(), generator, cfg, log)

		records, skipped, err := services.Batch.BuildHistories(context.Background(), meta, comments, service.BatchOptions{
			Strategy: cfg.Batch.Strategy,
			Count:    cfg.Batch.UserCount,
		})
		if err != nil {
			return err
		}

		if err := service.WriteJSON(historiesOut, records); err != nil {
			return err
		}

		fmt.Printf("Wrote %d history records to %s (%d users skipped)\n", len(records), historiesOut, len(skipped))
		return nil
	},
}

func init() {
	historiesCmd.Flags().StringVar(&historiesComments, "comments", "", "comments CSV file (required)")
	historiesCmd.Flags().StringVar(&historiesMetadata, "metadata", "", "articles or Q&A metadata CSV file (required)")
	historiesCmd.Flags().StringVar(&historiesOut, "out", "user_histories.json", "output JSON file")
	historiesCmd.Flags().StringVar(&historiesStrategy, "strategy", "", "user selection strategy: top or random")
	historiesCmd.Flags().IntVar(&historiesCount, "count", 0, "number of users to select")
	historiesCmd.MarkFlagRequired("comments")
	historiesCmd.MarkFlagRequired("metadata")
}
