package cli

import (
	"github.com/spf13/cobra"

	"villeto/internal/config"
	"villeto/internal/log"
	"villeto/internal/storage"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Brings the configured database up to date. The server and the other
commands also migrate on startup; this is for deploy pipelines that
migrate once before rolling out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			switch e.cfg.DataBackend {
			case config.BackendPostgres:
				err = storage.RunPostgresMigrations(e.cfg.DatabaseURL)
			default:
				err = storage.RunSQLiteMigrations(e.cfg.SQLiteDBPath)
			}
			if err != nil {
				return err
			}
			e.logger.Info("Migrations applied",
				log.FieldOperation, log.OpMigrate,
				"backend", e.cfg.DataBackend)
			return nil
		},
	}
}
