package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"villeto/internal/log"
	"villeto/internal/services"
	"villeto/internal/worker"
)

func newWorkerCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Mirror approved expenses to the spreadsheet",
		Long: `Consumes the bulk-action events the server publishes and appends the
expenses each approval touched to GOOGLE_APPROVED_SHEET. Needs AMQP_URL
and a configured spreadsheet. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.AMQPURL == "" {
				return errNoBroker
			}
			if e.cfg.GoogleApprovedSheet == "" {
				return fmt.Errorf("worker: GOOGLE_APPROVED_SHEET is empty")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx, e)
			if err != nil {
				return err
			}
			defer rt.Close()
			if !rt.sheets.Enabled() {
				return fmt.Errorf("worker: %w", services.ErrSheetsDisabled)
			}

			client, err := openPublisher(e)
			if err != nil {
				return err
			}
			defer client.Close()

			logger := e.logger.WithComponent(log.ComponentWorker)
			logger.Info("Starting export worker",
				"queue", e.cfg.AMQPQueue,
				"sheet", e.cfg.GoogleApprovedSheet)
			if err := worker.NewExportWorker(client, rt.sheets, e.logger).Run(ctx); err != nil {
				return err
			}
			logger.Info("Export worker stopped")
			return nil
		},
	}
}
