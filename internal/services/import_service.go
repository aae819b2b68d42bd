package services

import (
	"context"
	"fmt"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/dataset"
	"cashflow/internal/log"
)

// RefreshPublisher announces that the stored dataset changed.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, msg *amqp.RefreshMessage) error
}

// ImportResult describes one import run.
type ImportResult struct {
	RecordCount int    `json:"recordCount"`
	MessageID   string `json:"messageId,omitempty"`
	Published   bool   `json:"published"`
}

// ImportService copies a dataset from a source (a fixtures directory)
// into a store and asks the worker to refresh the exported projection.
type ImportService struct {
	source    dataset.Source
	target    dataset.Replacer
	publisher RefreshPublisher
	logger    *log.Logger
}

// NewImportService wires an import. publisher may be nil, in which case
// no refresh is requested.
func NewImportService(source dataset.Source, target dataset.Replacer, publisher RefreshPublisher, logger *log.Logger) *ImportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ImportService{
		source:    source,
		target:    target,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentImport),
	}
}

// Import loads, stores and announces the dataset. Storing is the
// commit point: a failed publish is logged and reported in the result
// but does not fail the import.
func (s *ImportService) Import(ctx context.Context, anchor core.Month, horizon int) (ImportResult, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load dataset: %w", err)
	}
	if err := s.target.Replace(ctx, ds); err != nil {
		return ImportResult{}, fmt.Errorf("store dataset: %w", err)
	}

	res := ImportResult{RecordCount: ds.Len()}
	s.logger.InfoContext(ctx, "Dataset imported", log.FieldRecordCount, res.RecordCount)

	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP publisher not available, skipping refresh message")
		return res, nil
	}

	msg := amqp.NewRefreshMessage(anchor, horizon, log.OpImport)
	res.MessageID = msg.ID
	if err := s.publisher.PublishRefresh(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish refresh message",
			log.FieldMessageID, msg.ID,
			log.FieldError, err.Error())
		return res, nil
	}
	res.Published = true
	return res, nil
}
