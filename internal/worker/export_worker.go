// Package worker runs the background export of dataset snapshots to
// Google Sheets, driven by sync messages from the AMQP queue.
package worker

import (
	"context"
	"fmt"
	"time"

	"ordenate/internal/amqp"
	"ordenate/internal/core"
	"ordenate/internal/log"
	"ordenate/internal/sheets"
)

// SnapshotStore is the read side of storage the worker needs.
type SnapshotStore interface {
	Load(ctx context.Context, userID int64) (*core.Dataset, error)
	GetUsername(ctx context.Context, userID int64) (string, error)
}

type ExportWorker struct {
	store    SnapshotStore
	exporter sheets.DatasetExporter
	logger   *log.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewExportWorker(store SnapshotStore, exporter sheets.DatasetExporter, logger *log.Logger, timeout time.Duration) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Handle exports the current snapshot of the user named in the
// message. The message version is informational: the worker always
// exports whatever is stored now, so redeliveries and reordered
// messages converge on the latest state.
func (w *ExportWorker) Handle(msg *amqp.DatasetSyncMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	username, err := w.store.GetUsername(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("resolve user %d: %w", msg.UserID, err)
	}

	ds, err := w.store.Load(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load dataset for %s: %w", username, err)
	}

	if ds.Version < msg.Version {
		w.logger.WarnContext(ctx, "stored dataset older than message",
			log.FieldUser, username,
			log.FieldDatasetVersion, ds.Version,
			"message_version", msg.Version)
	}

	year := core.CurrentPeriod(w.now()).Year
	if err := w.exporter.ExportSnapshot(ctx, username, ds, year); err != nil {
		return fmt.Errorf("export snapshot for %s: %w", username, err)
	}

	w.logger.InfoContext(ctx, "snapshot exported",
		log.FieldUser, username,
		log.FieldYear, year,
		log.FieldDatasetVersion, ds.Version,
		log.FieldOperation, log.OpExport)
	return nil
}

// Run consumes sync messages until the context is cancelled,
// reconnecting to the broker as needed.
func (w *ExportWorker) Run(ctx context.Context, url, exchange, queue string) error {
	w.logger.InfoContext(ctx, "export worker starting",
		"queue", queue, log.FieldOperation, log.OpStartup)
	return amqp.ReconnectingConsume(ctx, url, exchange, queue, w.Handle)
}
