// Command listingctl is the operator CLI for the listing analyzer: analyze
// PDFs locally, apply database migrations and prune expired sessions.
//
// Usage:
//
//	listingctl analyze listing1.pdf listing2.pdf
//	listingctl migrate
//	listingctl sessions prune
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/config"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "listingctl",
		Short:        "Listing analyzer operator tools",
		SilenceUsage: true,
	}

	root.AddCommand(newAnalyzeCmd(), newMigrateCmd(), newSessionsCmd())
	return root
}

// env loads configuration and a logger for commands that need them.
func env() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openDB connects to the configured database.
func openDB(cfg *config.Config) (*database.DB, error) {
	return database.New(cfg.DatabaseURL)
}
