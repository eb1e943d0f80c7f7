package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pengluaran/internal/core"
	"pengluaran/internal/export"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/middleware/ratelimit"
	"pengluaran/internal/middleware/security"
	"pengluaran/internal/middleware/trace"
	"pengluaran/internal/report"
)

const readyTimeout = 2 * time.Second

// Ports the handlers call. *services.TransactionService,
// *services.CategoryService and *services.ReportService satisfy them.
type (
	TransactionService interface {
		List(ctx context.Context, userID string, f ledger.Filter) ([]core.Transaction, error)
		Get(ctx context.Context, userID, id string) (core.Transaction, error)
		Create(ctx context.Context, userID string, in ledger.TransactionInput) (core.Transaction, error)
		Update(ctx context.Context, userID, id string, p ledger.TransactionPatch) (core.Transaction, error)
		Delete(ctx context.Context, userID, id string) error
	}

	CategoryService interface {
		List(ctx context.Context, userID string, t core.TransactionType) ([]core.Category, error)
		Create(ctx context.Context, userID string, in ledger.CategoryInput) (core.Category, error)
		Update(ctx context.Context, userID, id string, p ledger.CategoryPatch) (core.Category, error)
		Delete(ctx context.Context, userID, id string) error
		Usage(ctx context.Context, userID string) ([]core.CategoryUsage, error)
	}

	ReportService interface {
		Now() time.Time
		Report(ctx context.Context, userID string, r report.DateRange) (report.Report, error)
		Dashboard(ctx context.Context, userID string) (report.Dashboard, error)
		Export(ctx context.Context, userID string, r report.DateRange, f export.Format, w io.Writer) error
	}
)

// Options tunes a Server. Zero values fall back to the defaults noted.
type Options struct {
	// Logger defaults to one over slog.Default.
	Logger *applog.Logger
	// Ready backs /readyz; nil always reports ready.
	Ready func(ctx context.Context) error
	// Currency and Locale are advertised by /api/meta. Default IDR, id-ID.
	Currency string
	Locale   string
	// RateLimitPerMinute caps writes per client. Default 60.
	RateLimitPerMinute int
	// TrustedProxies are extra CIDRs whose forwarding headers are believed.
	TrustedProxies []string
}

type Server struct {
	http.Server

	transactions TransactionService
	categories   CategoryService
	reports      ReportService

	logger   *applog.Logger
	ready    func(ctx context.Context) error
	currency string
	locale   string

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Call Shutdown to stop it and its background work.
func NewServer(addr string, tx TransactionService, cats CategoryService, reports ReportService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.FromContext(context.Background())
	}
	if opts.Currency == "" {
		opts.Currency = "IDR"
	}
	if opts.Locale == "" {
		opts.Locale = "id-ID"
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		transactions: tx,
		categories:   cats,
		reports:      reports,
		logger:       logger,
		ready:        opts.Ready,
		currency:     opts.Currency,
		locale:       opts.Locale,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.screenRequests)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited,
				http.MethodPost, http.MethodPut, http.MethodDelete))

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleCreateTransaction)
				r.Get("/{id}", s.handleGetTransaction)
				r.Put("/{id}", s.handleUpdateTransaction)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Get("/usage", s.handleCategoryUsage)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
			})

			r.Get("/reports", s.handleReport)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/export", s.handleExport)
		})
	})

	return r
}

// screenRequests logs requests that look like scanning. They are still
// served; routing and validation reject anything harmful.
func (s *Server) screenRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Reason(r); reason != "" {
			s.detector.DetectSuspiciousRequest(r)
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				"reason", reason)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "Terlalu banyak permintaan, coba lagi nanti").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)

		rl := s.limiter.GetMetrics()
		tm := s.tracer.GetMetrics()
		s.logger.Info("HTTP server stopped",
			applog.FieldOperation, applog.OpShutdown,
			"requests_total", tm.TotalRequests,
			"requests_failed", tm.FailedRequests,
			"rate_limited", rl.Rejected,
			"suspicious_requests", s.detector.GetMetrics().SuspiciousRequests)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, CodeUnavailable, "not ready").Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}
