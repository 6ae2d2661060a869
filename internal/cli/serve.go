package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"villeto/internal/cache"
	apphttp "villeto/internal/http"
	"villeto/internal/log"
	"villeto/internal/middleware/ratelimit"
	"villeto/internal/services"
	"villeto/internal/table"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serves the expense, user and CSV preview pages and their HTMX table
fragments on PORT. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			limits := ratelimit.DefaultConfig()
			limits.Requests, _ = cmd.Flags().GetInt("rate-limit")
			return runServe(ctx, e, limits)
		},
	}
	cmd.Flags().Int("rate-limit", ratelimit.DefaultConfig().Requests, "POST requests allowed per client per minute")
	return cmd
}

func runServe(ctx context.Context, e *env, limits ratelimit.Config) error {
	logger := e.logger.WithComponent(log.ComponentApp)

	rt, err := openRuntime(ctx, e)
	if err != nil {
		return err
	}
	defer rt.Close()

	client, err := openPublisher(e)
	if err != nil {
		return err
	}
	var publisher services.Publisher
	if client != nil {
		defer client.Close()
		publisher = client
	}

	selections := cache.NewLRUCache[table.IDSet](e.cfg.CacheSize, selectionTTL)
	previews := cache.NewLRUCache[services.Preview](maxPreviews, previewTTL)
	rt.caches.Register(selections)
	rt.caches.Register(previews)
	rt.caches.StartCleanup(cacheCleanupTick)

	bulk := services.NewBulkService(rt.store, publisher, e.logger, func() {
		rt.expenses.Invalidate()
	})

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + e.cfg.Port,
		DefaultPageSize: e.cfg.DefaultPageSize,
		RateLimit:       limits,
		Logger:          e.logger,
	}, apphttp.Deps{
		Store:      rt.store,
		Expenses:   rt.expenses,
		Users:      rt.users,
		Bulk:       bulk,
		Selections: services.NewSelectionStore(selections),
		Previews:   services.NewPreviewStore(previews),
		Sheets:     rt.sheets,
		Filters:    rt.filters,
		Caches: map[string]apphttp.Sizer{
			"expense_pages": rt.expensePages,
			"user_pages":    rt.userPages,
			"selections":    selections,
			"previews":      previews,
		},
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting villeto server",
			"port", e.cfg.Port,
			"backend", e.cfg.DataBackend,
			"sheets", rt.sheets.Enabled(),
			"amqp", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
