package services

import (
	"context"

	"ordenate/internal/core"
)

// Store is the persistence port of the service layer. Implemented by
// the SQLite repository and the in-memory store.
type Store interface {
	Load(ctx context.Context, userID int64) (*core.Dataset, error)
	Save(ctx context.Context, userID int64, ds *core.Dataset) error
	Close() error
}

// SyncPublisher notifies the export pipeline that a user's dataset
// changed. A nil publisher disables exports.
type SyncPublisher interface {
	PublishDatasetSync(ctx context.Context, userID, version int64) error
}
