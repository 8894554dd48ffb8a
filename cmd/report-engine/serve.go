// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/api"
	"github.com/pdiddy/report-engine/internal/llm"
	"github.com/pdiddy/report-engine/internal/logger"
	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/store"
	"github.com/pdiddy/report-engine/internal/websearch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the pipeline over HTTP",
	Long: `Serve starts an HTTP API: POST /v1/reports runs the pipeline for a query,
GET /v1/reports lists stored runs, GET /v1/reports/{id} fetches one, and
DELETE /v1/reports/{id} removes one. Every run is recorded in the report
history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		providerFlag, _ := cmd.Flags().GetString("provider")
		modelFlag, _ := cmd.Flags().GetString("model")
		cfg, err := buildConfig(providerFlag, modelFlag)
		if err != nil {
			return err
		}

		log := logger.New("api")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		backend, closeBackend, err := llm.NewBackend(ctx, cfg.AI)
		if err != nil {
			return err
		}
		defer closeBackend()

		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		p := pipeline.New(backend, websearch.NewClient(cfg.Search), logger.New("pipeline"))
		srv := api.NewServer(p, st, log)

		httpServer := &http.Server{
			Addr:              cfg.Serve.BindAddr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Pipeline runs hold the request open across several model
			// and search calls.
			WriteTimeout: 5 * time.Minute,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("api server starting", "addr", cfg.Serve.BindAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("provider", "", "AI provider: claude or gemini")
	serveCmd.Flags().String("model", "", "AI model identifier")

	rootCmd.AddCommand(serveCmd)
}
