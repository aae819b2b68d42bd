package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cashflow/internal/config"
	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/services"
)

// ReadyFunc reports whether the data backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// Options tunes the API defaults.
type Options struct {
	// Anchor returns the month used when a request names none.
	Anchor func() core.Month

	// MaxMonths bounds month counts that size a response, such as
	// inflation_months. Zero means config.MaxHorizonLimit.
	MaxMonths int

	DefaultHorizon    int
	RequestsPerMinute int
	Ready             ReadyFunc
	Logger            *log.Logger
}

type Server struct {
	http.Server

	forecasts *services.ForecastService
	opts      Options
	logger    *log.Logger
	started   time.Time

	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, forecasts *services.ForecastService, opts Options) *Server {
	if opts.Anchor == nil {
		opts.Anchor = func() core.Month { return core.MonthOf(time.Now()) }
	}
	if opts.MaxMonths <= 0 {
		opts.MaxMonths = config.MaxHorizonLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		forecasts: forecasts,
		opts:      opts,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		started:   time.Now(),
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/projection", s.api(s.handleProjection))
	mux.Handle("GET /api/baseline", s.api(s.handleBaseline))
	mux.Handle("GET /api/summary", s.api(s.handleSummary))
	mux.Handle("GET /api/income", s.api(s.handleIncome))
	mux.Handle("GET /api/loans", s.api(s.handleLoans))
	mux.Handle("GET /api/loans/{id}/forecast", s.api(s.handleLoanForecast))
	mux.Handle("GET /api/credit-cards", s.api(s.handleCreditCards))
	mux.Handle("GET /api/expenses", s.api(s.handleExpenses))

	var handler http.Handler = mux
	handler = s.withDetection(handler)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(opts.Logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// api applies per-client rate limiting to an API handler.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(h)
}

// withDetection logs requests matching known attack patterns.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
