// Package memory provides a no-op exporter that records calls, used in
// tests and when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"ordenate/internal/core"
	ports "ordenate/internal/sheets"
)

type Export struct {
	Username string
	Year     int
	Version  int64
}

type Exporter struct {
	mu      sync.Mutex
	exports []Export
}

var _ ports.DatasetExporter = (*Exporter)(nil)

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportSnapshot(_ context.Context, username string, ds *core.Dataset, year int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.exports = append(e.exports, Export{Username: username, Year: year, Version: ds.Version})
	return nil
}

// Exports returns a copy of the recorded export calls.
func (e *Exporter) Exports() []Export {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Export, len(e.exports))
	copy(out, e.exports)
	return out
}
