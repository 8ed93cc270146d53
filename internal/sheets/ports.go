package sheets

import (
	"context"

	"ordenate/internal/core"
)

// Ports for outbound adapters.
type (
	// DatasetExporter writes a snapshot of one user's budget to an
	// external spreadsheet.
	DatasetExporter interface {
		ExportSnapshot(ctx context.Context, username string, ds *core.Dataset, year int) error
	}
)
