package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"local-library/internal/daemon"
	"local-library/internal/handlers"
	"local-library/internal/middleware"
	"local-library/internal/seed"
	"local-library/internal/utils"
	"local-library/internal/views"
)

const shutdownTimeout = 10 * time.Second

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP listen port")
	serveCmd.Flags().DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Per-request store timeout")
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Seed the catalog with sample records when it is empty")
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, closeCatalog, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeCatalog()

	if seedOnStart {
		summary, err := seed.Run(ctx, catalog, time.Now())
		switch {
		case errors.Is(err, seed.ErrNotEmpty):
			logger.Info("catalog already has records, skipping seed")
		case err != nil:
			return err
		default:
			logger.Info("catalog seeded", zap.Int("books", summary.Books))
		}
	}

	templates, err := views.New()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter := &daemon.LogExporter{
		Logs:     catalog.AuditLogs,
		Logger:   logger.Named("audit"),
		Interval: cfg.AuditExportInterval,
	}
	exporter.InitLogExporter(ctx)

	base := &handlers.Base{
		Catalog:     catalog,
		Views:       templates,
		AuditLogger: &utils.AuditLogger{Logs: catalog.AuditLogs},
		Logger:      logger,
		Timeout:     cfg.RequestTimeout,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(base, middleware.NewMetrics(registry), registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
