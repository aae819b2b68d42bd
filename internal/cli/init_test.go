package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cashflow/internal/config"
	"cashflow/internal/core"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true},
		{level: "info", wantDebug: false, wantInfo: true},
		{level: "error", wantDebug: false, wantInfo: false},
		{level: "bogus", wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := setupLogger(&buf, tt.level)

			logger.Debug("debug line")
			slog.Info("info line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("default logger info logged = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestAnchorFunc(t *testing.T) {
	cfg := &config.Config{AnchorMonth: "2025-08"}
	if got := AnchorFunc(cfg)(); got != core.NewMonth(2025, time.August) {
		t.Errorf("AnchorFunc() = %v, want 2025-08", got)
	}

	cfg.AnchorMonth = ""
	if got := AnchorFunc(cfg)(); got != core.MonthOf(time.Now()) {
		t.Errorf("AnchorFunc() = %v, want current month", got)
	}
}

func TestWaitForShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	cancel()
	close(done)

	finished := make(chan struct{})
	go func() {
		WaitForShutdown(ctx, done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("WaitForShutdown did not return")
	}
}
