package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/dataset"
	"cashflow/internal/forecast"
	"cashflow/internal/log"
	"cashflow/internal/obligation"
	"cashflow/internal/sheets"
)

// Options configures an ExportWorker.
type Options struct {
	BaseCurrency   core.Currency
	DefaultHorizon int
	MaxHorizon     int
	// Anchor returns the month used when a message carries none.
	Anchor func() core.Month
}

// ExportWorker recomputes the projection from stored records and writes it
// to a spreadsheet whenever a refresh message arrives.
type ExportWorker struct {
	source    dataset.Source
	projector *forecast.Projector
	writer    sheets.ProjectionWriter
	opts      Options
	now       func() time.Time
}

func NewExportWorker(source dataset.Source, calc *obligation.Calculator, writer sheets.ProjectionWriter, opts Options) *ExportWorker {
	if opts.Anchor == nil {
		opts.Anchor = func() core.Month { return core.MonthOf(time.Now()) }
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = core.CNY
	}
	return &ExportWorker{
		source:    source,
		projector: forecast.NewProjector(calc),
		writer:    writer,
		opts:      opts,
		now:       time.Now,
	}
}

// HandleRefresh processes a single refresh message from AMQP. Failures
// that a retry cannot fix are marked with amqp.ErrDiscard.
func (w *ExportWorker) HandleRefresh(ctx context.Context, msg *amqp.RefreshMessage) error {
	anchor := msg.Anchor
	if anchor.IsZero() {
		anchor = w.opts.Anchor()
	}
	horizon := msg.Horizon
	if horizon == 0 {
		horizon = w.opts.DefaultHorizon
	}
	if w.opts.MaxHorizon > 0 && horizon > w.opts.MaxHorizon {
		return fmt.Errorf("%w: horizon %d exceeds %d", amqp.ErrDiscard, horizon, w.opts.MaxHorizon)
	}

	ref, err := w.export(ctx, msg.ID, anchor, horizon)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Projection exported",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpExport,
		log.FieldMessageID, msg.ID,
		log.FieldAnchor, anchor.String(),
		log.FieldHorizon, horizon,
		log.FieldSheetsRange, ref)
	return nil
}

// StartupExport publishes the default projection once, so the sheet is
// current even if refresh messages were missed while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	anchor := w.opts.Anchor()
	ref, err := w.export(ctx, "", anchor, w.opts.DefaultHorizon)
	if err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	slog.InfoContext(ctx, "Startup projection exported",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpStartup,
		log.FieldAnchor, anchor.String(),
		log.FieldSheetsRange, ref)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, messageID string, anchor core.Month, horizon int) (string, error) {
	ds, err := w.source.Load(ctx)
	if err != nil {
		if errors.Is(err, dataset.ErrInvalidData) {
			return "", fmt.Errorf("%w: %w", amqp.ErrDiscard, err)
		}
		return "", fmt.Errorf("load dataset: %w", err)
	}
	if err := dataset.CheckBase(ds, w.opts.BaseCurrency); err != nil {
		return "", fmt.Errorf("%w: %w", amqp.ErrDiscard, err)
	}

	baseline, err := w.projector.Baseline(anchor, ds)
	if err != nil {
		return "", fmt.Errorf("%w: baseline: %w", amqp.ErrDiscard, err)
	}
	points, err := w.projector.Project(horizon, anchor, ds)
	if err != nil {
		return "", fmt.Errorf("%w: project: %w", amqp.ErrDiscard, err)
	}

	export := sheets.Export{
		MessageID:   messageID,
		Anchor:      anchor,
		Currency:    w.opts.BaseCurrency,
		GeneratedAt: w.now(),
		Points:      points,
		Summary:     forecast.Summarize(baseline, points, w.opts.BaseCurrency),
	}
	ref, err := w.writer.WriteProjection(ctx, export)
	if err != nil {
		return "", fmt.Errorf("write projection: %w", err)
	}
	return ref, nil
}
