package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/loan"
	"cashflow/internal/log"
)

const (
	defaultMaturityThreshold = 12
	defaultTopExpenses       = 5
	defaultInflationMonths   = 12
)

var defaultInflationRate = decimal.RequireFromString("0.03")

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the data backend and the dataset itself.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.opts.Ready != nil {
		if err := s.opts.Ready(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	if ds, err := s.forecasts.Dataset(ctx); err != nil {
		checks["dataset"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]any{"status": "ok", "records": ds.Len()}
	}

	checks["cache"] = s.forecasts.SnapshotCache().Stats()
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	cacheStats := s.forecasts.SnapshotCache().Stats()

	w.WriteHeader(http.StatusOK)
	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	writeMetric(w, "dataset_cache_hits_total", "counter", "Dataset snapshot cache hits", cacheStats.Hits)
	writeMetric(w, "dataset_cache_misses_total", "counter", "Dataset snapshot cache misses", cacheStats.Misses)
	writeMetric(w, "rate_limit_hits_total", "counter", "Total rate limit hits", rateMetrics.TotalHits)
	writeMetric(w, "active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	writeMetric(w, "uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}

func writeMetric[T int64 | uint64](w http.ResponseWriter, name, kind, help string, value T) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}

// fail logs server-side failures and writes the mapped error status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	log.LogFailure(r.Context(), op, status, err)
	writeError(w, status, err.Error())
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := NewQueryParser(r.URL.Query())
	anchor := q.Month("anchor", s.opts.Anchor())
	months := q.NonNegativeInt("months", s.opts.DefaultHorizon)
	if err := q.Err(); err != nil {
		s.badRequest(w, err)
		return
	}

	points, err := s.forecasts.Projection(r.Context(), anchor, months)
	if err != nil {
		s.fail(w, r, log.OpProject, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"anchor":  anchor,
		"horizon": months,
		"points":  points,
	})
}

func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request) {
	q := NewQueryParser(r.URL.Query())
	anchor := q.Month("anchor", s.opts.Anchor())
	if err := q.Err(); err != nil {
		s.badRequest(w, err)
		return
	}

	baseline, err := s.forecasts.Baseline(r.Context(), anchor)
	if err != nil {
		s.fail(w, r, log.OpBaseline, err)
		return
	}
	writeJSON(w, http.StatusOK, baseline)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := NewQueryParser(r.URL.Query())
	anchor := q.Month("anchor", s.opts.Anchor())
	months := q.NonNegativeInt("months", s.opts.DefaultHorizon)
	if err := q.Err(); err != nil {
		s.badRequest(w, err)
		return
	}

	summary, err := s.forecasts.Summary(r.Context(), anchor, months)
	if err != nil {
		s.fail(w, r, log.OpSummarize, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	summary, err := s.forecasts.IncomeSummary(r.Context())
	if err != nil {
		s.fail(w, r, log.OpLoad, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	q := NewQueryParser(r.URL.Query())
	anchor := q.Month("anchor", s.opts.Anchor())
	threshold := q.NonNegativeInt("threshold", defaultMaturityThreshold)
	if err := q.Err(); err != nil {
		s.badRequest(w, err)
		return
	}

	report, err := s.forecasts.LoanAnalysis(r.Context(), anchor, threshold)
	if err != nil {
		s.fail(w, r, log.OpLoad, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLoanForecast(w http.ResponseWriter, r *http.Request) {
	q := NewQueryParser(r.URL.Query())
	anchor := q.Month("anchor", s.opts.Anchor())
	months := q.BoundedInt("months", min(loan.DefaultForecastMonths, s.opts.MaxMonths), s.opts.MaxMonths)
	if err := q.Err(); err != nil {
		s.badRequest(w, err)
		return
	}

	schedule, err := s.forecasts.LoanForecast(r.Context(), r.PathValue("id"), anchor, months)
	if err != nil {
		s.fail(w, r, log.OpProject, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleCreditCards(w http.ResponseWriter, r *http.Request) {
	report, err := s.forecasts.CardCosts(r.Context())
	if err != nil {
		s.fail(w, r, log.OpLoad, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	q := NewQueryParser(r.URL.Query())
	top := q.NonNegativeInt("top", defaultTopExpenses)
	months := q.BoundedInt("inflation_months", min(defaultInflationMonths, s.opts.MaxMonths), s.opts.MaxMonths)
	rate := q.Rate("inflation_rate", defaultInflationRate)
	if err := q.Err(); err != nil {
		s.badRequest(w, err)
		return
	}

	report, err := s.forecasts.ExpenseAnalysis(r.Context(), top, months, rate)
	if err != nil {
		s.fail(w, r, log.OpLoad, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
