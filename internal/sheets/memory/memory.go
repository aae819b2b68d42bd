package memory

import (
	"context"
	"fmt"
	"sync"

	ports "cashflow/internal/sheets"
)

// Writer keeps every export in memory. It stands in for Google Sheets
// when no spreadsheet is configured.
type Writer struct {
	mu      sync.Mutex
	exports []ports.Export
	rows    [][]any
}

var _ ports.ProjectionWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// WriteProjection stores the export and returns a synthetic reference.
func (w *Writer) WriteProjection(_ context.Context, e ports.Export) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exports = append(w.exports, e)
	w.rows = ports.Rows(e)
	return fmt.Sprintf("mem:%d", len(w.exports)), nil
}

// Exports returns the exports written so far, oldest first.
func (w *Writer) Exports() []ports.Export {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ports.Export(nil), w.exports...)
}

// Rows returns the values matrix of the latest export.
func (w *Writer) Rows() [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]any(nil), w.rows...)
}
