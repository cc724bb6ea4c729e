package main

import (
	"fmt"

	"github.com/comment-profiler/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	topInput string
	topCount int
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the most frequent commenters in a comments CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}

		table, err := dataset.Load(topInput)
		if err != nil {
			return err
		}

		freq, err := dataset.CountUserFrequency(table, cfg.Columns.UID)
		if err != nil {
			return err
		}

		n := topCount
		if n > len(freq) {
			n = len(freq)
		}
		fmt.Printf("Top %d users by comment frequency:\n", n)
		for _, f := range freq[:n] {
			fmt.Printf("%s\t%d\n", f.UID, f.Count)
		}
		return nil
	},
}

func init() {
	topCmd.Flags().StringVar(&topInput, "input", "", "comments CSV file (required)")
	topCmd.Flags().IntVar(&topCount, "count", 10, "number of users to list")
	topCmd.MarkFlagRequired("input")
}
