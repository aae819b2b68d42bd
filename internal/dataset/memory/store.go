// Package memory keeps a dataset snapshot in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"cashflow/internal/core"
	"cashflow/internal/dataset"
)

// Store is a mutex-guarded dataset.Store. Load hands out copies.
type Store struct {
	mu sync.RWMutex
	ds core.Dataset
}

// New returns a Store holding ds as is.
func New(ds core.Dataset) *Store {
	return &Store{ds: ds.Clone()}
}

// NewFromSource seeds a Store with whatever src currently returns,
// typically a fixtures directory.
func NewFromSource(ctx context.Context, src dataset.Source) (*Store, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed memory store: %w", err)
	}
	return New(ds), nil
}

// Load returns a copy of the current snapshot.
func (s *Store) Load(ctx context.Context) (core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return core.Dataset{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Clone(), nil
}

// Replace validates ds and swaps it in. The previous snapshot is kept
// when validation fails.
func (s *Store) Replace(ctx context.Context, ds core.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", dataset.ErrInvalidData, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds.Clone()
	return nil
}
