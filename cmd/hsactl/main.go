package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/hsa-claims-engine/internal/bootstrap"
	"github.com/kirillkom/hsa-claims-engine/internal/config"
	"github.com/kirillkom/hsa-claims-engine/internal/observability/logging"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "hsactl",
		Short: "Admin tool for the HSA claims engine",
		Long: `hsactl prepares and inspects an HSA claims engine deployment:
schema migration, catalog checks, matcher lookups, fixture accounts and claim audit trails.

Storage and catalog settings come from the same environment variables as the API.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			slog.SetDefault(logging.NewJSONLogger(os.Stderr, "hsactl", logLevel))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(matchCmd())
	root.AddCommand(seedAccountCmd())
	root.AddCommand(auditCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Swapped in tests.
var (
	loadConfig = config.Load
	openApp    = bootstrap.New
)

func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
