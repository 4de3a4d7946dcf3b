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

	httpadapter "github.com/kirillkom/hsa-claims-engine/internal/adapters/http"
	mcpadapter "github.com/kirillkom/hsa-claims-engine/internal/adapters/mcp"
	"github.com/kirillkom/hsa-claims-engine/internal/bootstrap"
	"github.com/kirillkom/hsa-claims-engine/internal/config"
	"github.com/kirillkom/hsa-claims-engine/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logging.Install("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "api")
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	opts := []httpadapter.Option{httpadapter.WithMetrics(app.Metrics)}
	if cfg.MCPEnabled {
		opts = append(opts, httpadapter.WithMCP(mcpadapter.NewServer(app.Eligibility, app.Catalog).Handler()))
	}

	router := httpadapter.NewRouter(cfg, app.Claims, app.Eligibility, opts...).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "mcp_enabled", cfg.MCPEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
