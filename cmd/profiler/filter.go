package main

import (
	"fmt"

	"github.com/comment-profiler/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	filterInput  string
	filterOutput string
	filterCount  int
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Write the top-N users' comment rows to a new CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		table, err := dataset.Load(filterInput)
		if err != nil {
			return err
		}

		uids, err := dataset.SelectUsers(table, filterCount, dataset.StrategyTop, cfg.Batch.RandomSeed, cfg.Columns.UID)
		if err != nil {
			return err
		}

		filtered, err := dataset.FilterUsers(table, uids, cfg.Columns.UID)
		if err != nil {
			return err
		}
		if err := filtered.Save(filterOutput); err != nil {
			return err
		}

		log.Info().Int("users", len(uids)).Int("rows", filtered.Len()).
			Str("output", filterOutput).Msg("Filtered comments written")
		fmt.Printf("Wrote %d rows for %d users to %s\n", filtered.Len(), len(uids), filterOutput)
		return nil
	},
}

func init() {
	filterCmd.Flags().StringVar(&filterInput, "input", "", "comments CSV file (required)")
	filterCmd.Flags().StringVar(&filterOutput, "output", "", "output CSV file (required)")
	filterCmd.Flags().IntVar(&filterCount, "count", 100, "number of top users to keep")
	filterCmd.MarkFlagRequired("input")
	filterCmd.MarkFlagRequired("output")
}
