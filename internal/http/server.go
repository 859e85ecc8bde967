package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
	"wallet/internal/middleware/security"
	"wallet/internal/middleware/trace"
)

// Store is the persistence the service needs.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Report(ctx context.Context, userID string) (core.Report, error)
	Ping(ctx context.Context) error
}

// Options tunes the server. Zero values select defaults.
type Options struct {
	Logger         *applog.Logger
	RateLimit      ratelimit.Config
	ReportCacheTTL time.Duration // 0 disables the report cache
}

type Server struct {
	http.Server
	store       Store
	logger      *applog.Logger
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	// reports caches core.Report per user; nil when disabled
	reports *cache.Cache

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, store Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	ips := security.NewIPExtractor()
	s := &Server{
		store:       store,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		tracer:      trace.NewMiddleware(ips.ExtractClientIP),
		started:     time.Now(),
	}
	if opts.ReportCacheTTL > 0 {
		s.reports = cache.New(opts.ReportCacheTTL, 2*opts.ReportCacheTTL)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(applog.Middleware(logger))
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.rateLimiter.Middleware(ips.ExtractClientIP, s.handleRateLimited))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", s.handleCreateTransaction)
		r.Get("/transactions/report/{userID}", s.handleReport)
		r.Get("/transactions/{userID}", s.handleListTransactions)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func reportCacheKey(userID string) string {
	return "report:" + userID
}

func (s *Server) cachedReport(userID string) (core.Report, bool) {
	if s.reports == nil {
		return core.Report{}, false
	}
	v, ok := s.reports.Get(reportCacheKey(userID))
	if !ok {
		return core.Report{}, false
	}
	report, ok := v.(core.Report)
	return report, ok
}

func (s *Server) storeReport(userID string, report core.Report) {
	if s.reports != nil {
		s.reports.SetDefault(reportCacheKey(userID), report)
	}
}

// invalidateReport drops userID's cached report after a mutation so the
// next report read reflects it.
func (s *Server) invalidateReport(userID string) {
	if s.reports != nil {
		s.reports.Delete(reportCacheKey(userID))
	}
}
