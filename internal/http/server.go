package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"villeto/internal/core"
	"villeto/internal/filter"
	"villeto/internal/grid"
	"villeto/internal/log"
	"villeto/internal/middleware/ratelimit"
	"villeto/internal/middleware/security"
	"villeto/internal/middleware/trace"
	"villeto/internal/services"
	appweb "villeto/web"
)

// pageToolbarID is the page region table toolbars move into.
const pageToolbarID = "table-toolbar"

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer is a cache the metrics endpoint reports on.
type Sizer interface {
	Size() int
}

// Deps are the services the handlers call.
type Deps struct {
	Store      Pinger
	Expenses   *services.Lister[core.Expense]
	Users      *services.Lister[core.User]
	Bulk       *services.BulkService
	Selections *services.SelectionStore
	Previews   *services.PreviewStore
	Sheets     *services.SheetExport
	Filters    filter.Schema
	// Caches maps a name to a cache for the metrics endpoint.
	Caches map[string]Sizer
}

// Options tune the server.
type Options struct {
	Addr            string
	DefaultPageSize int
	MaxUploadBytes  int64
	MaxPreviewRows  int
	RateLimit       ratelimit.Config
	Logger          *log.Logger
}

type appMetrics struct {
	uptime      time.Time
	tablePages  atomic.Int64
	bulkActions atomic.Int64
	exports     atomic.Int64
	uploads     atomic.Int64
}

// Server serves the table pages and their HTMX fragments.
type Server struct {
	http.Server
	deps     Deps
	opts     Options
	renderer *grid.Renderer
	logger   *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(opts Options, deps Deps) *Server {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if opts.MaxPreviewRows <= 0 {
		opts.MaxPreviewRows = services.DefaultPreviewRows
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if deps.Filters == nil {
		deps.Filters = filter.DefaultSchema()
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		deps:             deps,
		opts:             opts,
		logger:           opts.Logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.logger, s.securityDetector.ClientIP)

	renderer, err := grid.NewRenderer()
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.renderer = renderer

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handlePage(pageExpenses))
	mux.HandleFunc("GET /users", s.handlePage(pageUsers))
	mux.HandleFunc("GET /csv-preview", s.handlePage(pagePreview))

	mux.HandleFunc("GET /ui/expenses", s.handleExpenses)
	mux.HandleFunc("POST /ui/expenses/select", s.handleExpensesSelect)
	mux.HandleFunc("GET /ui/expenses/export", s.handleExpensesExport)
	mux.HandleFunc("POST /ui/expenses/bulk/{action}", s.handleBulk)

	mux.HandleFunc("GET /ui/users", s.handleUsers)
	mux.HandleFunc("POST /ui/users/select", s.handleUsersSelect)
	mux.HandleFunc("GET /ui/users/export", s.handleUsersExport)

	mux.HandleFunc("POST /ui/csv-preview", s.handleUpload)
	mux.HandleFunc("GET /ui/csv-preview/{id}", s.handlePreview)
	mux.HandleFunc("POST /ui/csv-preview/{id}/select", s.handlePreviewSelect)
	mux.HandleFunc("GET /ui/csv-preview/{id}/export", s.handlePreviewExport)

	limited := s.rateLimiter.Middleware(s.securityDetector.ClientIP,
		func(r *http.Request) bool { return r.Method == http.MethodPost },
		s.onRateLimited,
	)
	s.Handler = chain(mux,
		s.traceMiddleware.Handler,
		security.Headers(security.DefaultHeadersConfig()),
		s.securityDetector.Middleware(s.logger),
		limited,
	)
	return s
}

// chain applies middlewares so that the first one runs outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.securityDetector.ClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").
		Header("Retry-After", s.rateLimiter.RetryAfter()).
		TriggerErrorNotification("Too many requests. Please try again later.").
		Write(w)
}

// Shutdown stops background routines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
