package worker

import (
	"context"
	"testing"
	"time"

	"ordenate/internal/amqp"
	"ordenate/internal/core"
	"ordenate/internal/log"
	sheetsmem "ordenate/internal/sheets/memory"
	"ordenate/internal/storage/memory"
)

func TestHandleExportsCurrentSnapshot(t *testing.T) {
	store := memory.NewStore()
	exporter := sheetsmem.NewExporter()
	w := NewExportWorker(store, exporter, log.New(log.DefaultConfig()), 5*time.Second)
	w.now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	userID, _ := store.CreateUser(ctx, "maria", "hash")
	if err := store.Save(ctx, userID, &core.Dataset{Version: 9}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The message carries an older version; the worker exports what is
	// stored now.
	if err := w.Handle(amqp.NewDatasetSyncMessage(userID, 3)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	exports := exporter.Exports()
	if len(exports) != 1 {
		t.Fatalf("exports = %d, want 1", len(exports))
	}
	if exports[0].Username != "maria" || exports[0].Year != 2025 || exports[0].Version != 9 {
		t.Errorf("export = %+v", exports[0])
	}
}

func TestHandleUnknownUser(t *testing.T) {
	store := memory.NewStore()
	w := NewExportWorker(store, sheetsmem.NewExporter(), log.New(log.DefaultConfig()), 5*time.Second)

	if err := w.Handle(amqp.NewDatasetSyncMessage(42, 1)); err == nil {
		t.Error("expected error for unknown user")
	}
}
