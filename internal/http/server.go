package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
	appweb "spendwise/web"
)

const (
	overviewCacheSize = 24
	overviewCacheTTL  = 5 * time.Minute
	cacheCleanupEvery = 10 * time.Minute
)

// Options tunes a Server. The zero value is usable.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
	// TemplatesFS overrides the embedded templates; it must contain
	// templates/*.html.
	TemplatesFS fs.FS
}

// Server is the web front end over a tracker.
type Server struct {
	http.Server
	tracker    *services.Tracker
	templates  *template.Template
	logger     *log.Logger
	structured *log.StructuredLogger
	now        func() time.Time

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	overviewCache *cache.LRUCache[core.MonthOverview]
	cacheManager  *cache.Manager

	// writeVersion is bumped after every successful write and is part of
	// the overview cache key.
	writeVersion atomic.Uint64

	startedAt       time.Time
	expensesCreated int64
	budgetsSet      int64
	shutdownOnce    sync.Once
}

// NewServer configures routes, middleware and templates, returning a server
// ready for ListenAndServe.
func NewServer(addr string, tracker *services.Tracker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		tracker:       tracker,
		logger:        logger,
		structured:    log.NewStructuredLogger(logger),
		now:           time.Now,
		detector:      security.NewDetector(logger),
		rateLimiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		overviewCache: cache.NewLRUCache[core.MonthOverview](overviewCacheSize, overviewCacheTTL),
		cacheManager:  cache.NewManager(logger),
		startedAt:     time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(cacheCleanupEvery)

	templatesFS := opts.TemplatesFS
	if templatesFS == nil {
		templatesFS = appweb.TemplatesFS
	}
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /budgets", s.handleSetBudget)
	mux.HandleFunc("GET /expenses/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /ui/overview", s.handleOverview)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited, http.MethodPost)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = mux
	h = limited(h)
	h = s.detector.Middleware(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError("Too many requests. Please try again in a minute.").Write(w)
}

// Shutdown stops background goroutines and gracefully shuts down the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func cacheKey(version uint64, year, month int) string {
	return strconv.FormatUint(version, 10) + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateOverviews drops every cached month. Budget changes and
// backdated expenses can touch any month, so nothing is kept. The version
// bump comes first: an overview computed before the write is stored under
// the old version and never read again.
func (s *Server) invalidateOverviews() {
	s.writeVersion.Add(1)
	s.overviewCache.Clear()
}

func (s *Server) getOverview(ctx context.Context, year, month int) core.MonthOverview {
	key := cacheKey(s.writeVersion.Load(), year, month)
	if ov, ok := s.overviewCache.Get(key); ok {
		s.logger.DebugContext(ctx, "Overview cache hit", "year", year, "month", month)
		return ov
	}
	ov := s.tracker.Ledger().MonthOverview(year, month)
	s.overviewCache.Set(key, ov)
	s.logger.DebugContext(ctx, "Overview cached",
		"year", year, "month", month,
		"total_cents", ov.Total.Cents,
		"categories", len(ov.ByCategory))
	return ov
}

func (s *Server) recordWrite(counter *int64) {
	atomic.AddInt64(counter, 1)
	s.invalidateOverviews()
}
