package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"villeto/internal/amqp"
	"villeto/internal/backend"
	"villeto/internal/cache"
	"villeto/internal/core"
	"villeto/internal/filter"
	"villeto/internal/log"
	"villeto/internal/services"
	"villeto/internal/sheets"
	"villeto/internal/sheets/google"
	"villeto/internal/storage"
	"villeto/internal/tables"
)

const (
	selectionTTL     = 12 * time.Hour
	previewTTL       = time.Hour
	maxPreviews      = 64
	cacheCleanupTick = time.Minute
)

// runtime holds the storage-backed services shared by the commands.
type runtime struct {
	store   storage.Store
	cleanup backend.CleanupFunc
	filters filter.Schema

	expensePages *cache.LRUCache[services.PageResult[core.Expense]]
	userPages    *cache.LRUCache[services.PageResult[core.User]]
	expenses     *services.Lister[core.Expense]
	users        *services.Lister[core.User]
	sheets       *services.SheetExport
	caches       *cache.Manager
}

func openRuntime(ctx context.Context, e *env) (*runtime, error) {
	bcfg, err := backend.FromAppConfig(e.cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(e.logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	schema := filter.DefaultSchema()
	if e.cfg.FilterSchemaPath != "" {
		if schema, err = filter.LoadSchema(e.cfg.FilterSchemaPath); err != nil {
			res.Cleanup()
			return nil, err
		}
	}

	// A nil client must stay a nil interface or the export looks enabled.
	var exporter sheets.Exporter
	if e.cfg.SheetsEnabled() {
		client, err := google.New(ctx, google.Options{
			SpreadsheetID:      e.cfg.GoogleSpreadsheetID,
			ServiceAccountJSON: e.cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: e.cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			res.Cleanup()
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		exporter = client
	}

	rt := &runtime{
		store:        res.Store,
		cleanup:      res.Cleanup,
		filters:      schema,
		expensePages: cache.NewLRUCache[services.PageResult[core.Expense]](e.cfg.CacheSize, e.cfg.CacheTTL),
		userPages:    cache.NewLRUCache[services.PageResult[core.User]](e.cfg.CacheSize, e.cfg.CacheTTL),
		caches:       cache.NewManager(e.logger),
	}
	rt.expenses = services.NewLister(tables.Expenses, res.Store.ListExpenses, res.Store.CountExpenses, rt.expensePages, e.logger)
	rt.users = services.NewLister(tables.Users, res.Store.ListUsers, res.Store.CountUsers, rt.userPages, e.logger)
	rt.sheets = services.NewSheetExport(exporter, res.Store, e.cfg.GoogleExportSheet, e.cfg.GoogleApprovedSheet, e.logger)
	rt.caches.Register(rt.expensePages)
	rt.caches.Register(rt.userPages)
	return rt, nil
}

// Close stops cache cleanup and releases the store.
func (rt *runtime) Close() error {
	rt.caches.Stop()
	return rt.cleanup()
}

// openPublisher connects to the broker when one is configured. A nil
// publisher means bulk actions are not announced.
func openPublisher(e *env) (*amqp.Client, error) {
	if e.cfg.AMQPURL == "" {
		return nil, nil
	}
	client, err := amqp.NewClient(e.cfg.AMQPURL, e.cfg.AMQPExchange, e.cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	return client, nil
}

var errNoBroker = errors.New("AMQP_URL is not set")
