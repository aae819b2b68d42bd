package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/log"
)

// RefreshSchedulerConfig holds configuration for the refresh scheduler
type RefreshSchedulerConfig struct {
	// Interval is how often a refresh is requested (default: 1h)
	Interval time.Duration

	// Horizon is the number of months requested; zero lets the worker decide
	Horizon int

	// Anchor returns the month to request (default: current month)
	Anchor func() core.Month
}

// DefaultRefreshSchedulerConfig returns sensible defaults
func DefaultRefreshSchedulerConfig() RefreshSchedulerConfig {
	return RefreshSchedulerConfig{
		Interval: time.Hour,
		Anchor:   func() core.Month { return core.MonthOf(time.Now()) },
	}
}

// RefreshScheduler periodically drops the cached dataset snapshot and asks
// the export worker to publish a fresh projection.
type RefreshScheduler struct {
	publisher RefreshPublisher
	forecasts *ForecastService
	config    RefreshSchedulerConfig
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshScheduler creates a scheduler. forecasts may be nil when no
// snapshot needs invalidating.
func NewRefreshScheduler(publisher RefreshPublisher, forecasts *ForecastService, config RefreshSchedulerConfig, logger *log.Logger) *RefreshScheduler {
	defaults := DefaultRefreshSchedulerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Anchor == nil {
		config.Anchor = defaults.Anchor
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RefreshScheduler{
		publisher: publisher,
		forecasts: forecasts,
		config:    config,
		logger:    logger.WithComponent(log.ComponentScheduler),
	}
}

// Start begins the scheduling loop. Returns an error if already running.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("refresh scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.InfoContext(ctx, "Refresh scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop stops the loop and waits for the current tick to finish.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Refresh scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Refresh scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *RefreshScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RefreshScheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one refresh: invalidate, then publish. Publish failures
// are logged; the next tick tries again.
func (s *RefreshScheduler) Tick(ctx context.Context) {
	if s.forecasts != nil {
		s.forecasts.Invalidate()
	}
	msg := amqp.NewRefreshMessage(s.config.Anchor(), s.config.Horizon, "scheduler")
	if err := s.publisher.PublishRefresh(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish scheduled refresh",
			log.FieldError, err,
			log.FieldMessageID, msg.ID)
		return
	}
	s.logger.DebugContext(ctx, "Scheduled refresh published", log.FieldMessageID, msg.ID)
}
