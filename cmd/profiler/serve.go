package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/comment-profiler/internal/api"
	"github.com/comment-profiler/internal/profile"
	"github.com/comment-profiler/internal/service"
	"github.com/comment-profiler/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the profile-generation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		log.Info().Msg("Starting comment-profiler API server...")

		// Wire stores, generator and services
		datasets := store.NewDatasetRegistry()
		jobs := store.NewJobStore()
		generator := profile.NewGenerator(cfg.LLM, log)
		services := service.NewServices(datasets, jobs, generator, cfg, log)

		// Start background job processor
		go services.Job.StartProcessor(context.Background())
		log.Info().Msg("Background job processor started")

		// Initialize router
		router := api.NewRouter(services, cfg, log)

		// Create HTTP server
		srv := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.ReadTimeout,
		}

		// Start server in goroutine
		go func() {
			log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Server failed")
			}
		}()

		// Graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop job processor
		services.Job.StopProcessor()

		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		log.Info().Msg("Server exited gracefully")
		return nil
	},
}
