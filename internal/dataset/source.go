// Package dataset defines the ports through which record snapshots reach
// the calculators.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"cashflow/internal/core"
)

// ErrInvalidData marks a dataset that failed validation at a boundary.
var ErrInvalidData = errors.New("invalid dataset")

// CheckBase rejects a snapshot whose base amounts were computed for a
// currency other than base, marking it as invalid data.
func CheckBase(ds core.Dataset, base core.Currency) error {
	if err := ds.ValidateBase(base); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return nil
}

type (
	// Source supplies a read-only snapshot of every record.
	Source interface {
		Load(ctx context.Context) (core.Dataset, error)
	}

	// Replacer swaps the stored snapshot for ds.
	Replacer interface {
		Replace(ctx context.Context, ds core.Dataset) error
	}

	// Store is a Source whose contents can be replaced.
	Store interface {
		Source
		Replacer
	}
)
