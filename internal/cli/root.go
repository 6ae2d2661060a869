// Package cli wires configuration, storage and services into the villeto
// commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"villeto/internal/config"
	"villeto/internal/log"
)

// Version is set at build time.
var Version = "dev"

// env is what every command needs once the root pre-run has loaded it.
type env struct {
	cfg    *config.Config
	logger *log.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "villeto",
		Short: "Expense dashboard with server-backed tables",
		Long: `villeto serves paged, sortable and filterable tables of expenses and
users over HTMX, and offers the same tables on the command line.

Configuration comes from the environment; a .env file in the working
directory is loaded first when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}

	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newListCmd(e),
		newExportCmd(e),
		newWorkerCmd(e),
	)
	return root
}

// Execute runs the root command and reports failures on stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (e *env) load(cmd *cobra.Command) error {
	// Optional outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so list and export output stays clean.
	e.logger = log.New(log.Config{
		Component: log.ComponentCLI,
		Handler: slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: log.ParseLevel(cfg.LogLevel),
		}),
	})
	log.SetDefault(e.logger)
	e.cfg = cfg
	return nil
}
