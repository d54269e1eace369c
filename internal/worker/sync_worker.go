package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"talaan/internal/amqp"
	"talaan/internal/core"
	"talaan/internal/export"
	"talaan/internal/log"
	"talaan/internal/storage"
)

// SyncWorker mirrors expense entries from SQLite to the external audit
// ledger. It is driven by AMQP events, with a periodic sweep over unsynced
// rows as backup in case messages are lost.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    export.LedgerAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledger export.LedgerAppender, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP. The event
// only names the entry; the current row is always re-read, so replayed or
// out-of-order events converge on the latest state.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		log.FieldEntryID, msg.ID,
		log.FieldOperation, msg.Op,
		"version", msg.Version,
		log.FieldComponent, log.ComponentWorker)

	entry, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		if err == storage.ErrNotFound {
			// Entry was hard-deleted after the event was queued.
			slog.WarnContext(ctx, "Ledger event for missing entry, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.mirrorEntry(ctx, entry); err != nil {
		return fmt.Errorf("mirror entry to ledger: %w", err)
	}

	return nil
}

// ProcessPendingEntries sweeps entries that never made it to the ledger.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending ledger entries", "count", len(pending))

	for _, entry := range pending {
		if err := w.mirrorEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending entry",
				"id", entry.ID, "error", err)
			continue
		}
	}

	return nil
}

// RunSweep runs the pending sweep on an interval until ctx is cancelled.
func (w *SyncWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One pass at startup so a backlog does not wait a full interval.
	if err := w.ProcessPendingEntries(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingEntries(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) mirrorEntry(ctx context.Context, entry core.ExpenseEntry) error {
	lineItem, err := w.storage.GetLineItem(ctx, entry.LineItemID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("get line item %d: %w", entry.LineItemID, err)
	}

	status := "active"
	if entry.Archived {
		status = "archived"
	}

	ref, err := w.ledger.AppendLedgerRow(ctx, export.LedgerRow{
		EntryID:     entry.ID,
		Year:        entry.Year,
		Description: entry.Description,
		LineItem:    lineItem.Name,
		Proposed:    core.FormatCents(entry.Proposed.Cents),
		Actual:      core.FormatCents(entry.Actual.Cents),
		Returned:    core.FormatCents(entry.Returned.Cents),
		Status:      status,
		SyncedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return err
	}

	if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Entry mirrored to ledger",
		log.FieldEntryID, entry.ID,
		log.FieldSheetsRef, ref,
		"status", status,
		log.FieldComponent, log.ComponentWorker)
	return nil
}
