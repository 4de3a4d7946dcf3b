package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/hsa-claims-engine/internal/bootstrap"
	"github.com/kirillkom/hsa-claims-engine/internal/config"
	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
	"github.com/kirillkom/hsa-claims-engine/internal/observability/logging"
	"github.com/kirillkom/hsa-claims-engine/internal/observability/metrics"
)

const auditTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logging.Install("worker", cfg.LogLevel)
	if err := cfg.RequireSharedStorage("worker"); err != nil {
		slog.Error("worker_storage_unsupported", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.Events == nil {
		slog.Error("worker_requires_events", "hint", "set EVENTS_ENABLED=true and NATS_URL")
		return
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	if err := consume(ctx, app.Events, app.Audit, workerMetrics); err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
	}
}

// consume records every delivered claim event until ctx ends. A handler
// error leaves the event unacknowledged for redelivery.
func consume(
	ctx context.Context,
	events ports.ClaimEventSubscriber,
	audit ports.ClaimAuditRecorder,
	workerMetrics *metrics.WorkerMetrics,
) error {
	return events.SubscribeClaimEvents(ctx, func(handlerCtx context.Context, event domain.ClaimEvent) error {
		auditCtx, cancel := context.WithTimeout(handlerCtx, auditTimeout)
		defer cancel()

		workerMetrics.ObserveEventLag(time.Since(event.OccurredAt))
		workerMetrics.StartAudit()
		start := time.Now()
		err := audit.Record(auditCtx, event)
		workerMetrics.FinishAudit(time.Since(start), err)
		if err == nil {
			slog.Debug("claim_event_audited",
				"event_id", event.ID,
				"claim_id", event.ClaimID,
				"status", string(event.Status),
			)
		}
		return err
	})
}
