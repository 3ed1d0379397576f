package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/httpapi"
	"github.com/twiced-technology-gmbh/lumina/internal/notify"
	"github.com/twiced-technology-gmbh/lumina/internal/observability"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task list over HTTP with live alerts",
	Long: `Starts the deadline scheduler and an HTTP API for the list.

Endpoints:
  GET    /healthz                 scheduler and store health
  GET    /metrics                 Prometheus metrics
  GET    /v1/tasks            tasks with countdowns
  POST   /v1/tasks            add a task
  GET    /v1/tasks/{id}       one task
  POST   /v1/tasks/{id}/toggle
  DELETE /v1/tasks/{id}
  PUT    /v1/tasks/order      reorder the list
  GET    /v1/alerts/ws        alerts as they fire (websocket)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.ServeAddr()
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	logger := newLogger(true)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	metrics := observability.NewMetrics(observability.Namespace)
	hub := httpapi.NewAlertHub(func(n int) { metrics.WSClients.Set(float64(n)) })
	engine := newEngine(cfg, s, logger,
		scheduler.WithObserver(metrics),
		scheduler.WithAlertSink(notify.Fanout{hub, notify.NewActivityLog(cfg.Dir())}))

	if err := engine.Start(ctx); err != nil {
		return clierr.Newf(clierr.SchedulerUnhealthy, "starting scheduler: %v", err)
	}
	defer engine.Stop()
	go watchList(ctx, cfg, s, logger, engine.Rearm)

	api := httpapi.New(s, engine, hub, metrics, logger.With("component", "http"))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket handlers watch the request context, so shutdown reaches them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return clierr.Newf(clierr.InternalError, "http server: %v", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed, closing", "error", err)
		_ = srv.Close()
	}
	logger.Info("http server stopped")
	return nil
}
