package main

import (
	"fmt"
	"os"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profiler",
	Short: "User history and profile generation from comment CSV exports",
	Long: `profiler ingests social-media comment/article CSV exports, reshapes a
user's activity into a nested history record, and forwards it to an
OpenAI-compatible chat-completion endpoint to produce a structured
profile.

Offline subcommands cover the batch pipeline (top, filter, histories,
profiles); serve exposes the same pipeline as an HTTP API.`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(historiesCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads .env, the configuration and the logger shared by all
// subcommands.
func setup() (*config.Config, zerolog.Logger, error) {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, log, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, log, nil
}
