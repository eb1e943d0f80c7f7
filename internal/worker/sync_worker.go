// Package worker mirrors confirmed transaction writes into the spreadsheet
// and archives monthly summaries.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pengluaran/internal/amqp"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/sheets"
)

// SyncWorker applies change events to the mirror. Events carry ids only,
// so the current row is always read back from the store.
type SyncWorker struct {
	store  ledger.TransactionStore
	mirror sheets.TransactionMirror
}

func NewSyncWorker(store ledger.TransactionStore, mirror sheets.TransactionMirror) *SyncWorker {
	return &SyncWorker{store: store, mirror: mirror}
}

// HandleEvent upserts created and updated transactions and removes deleted
// ones. A transaction that no longer exists is removed as well, which makes
// a late "created" event after a delete harmless.
func (w *SyncWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	logger := slog.With(
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldTransactionID, evt.TransactionID,
		applog.FieldUserID, evt.UserID,
		"op", evt.Op)

	if evt.Op == amqp.OpDeleted {
		return w.remove(ctx, logger, evt.TransactionID)
	}

	tx, err := w.store.GetTransaction(ctx, evt.UserID, evt.TransactionID)
	if errors.Is(err, ledger.ErrNotFound) {
		logger.InfoContext(ctx, "Transaction gone, removing mirrored row")
		return w.remove(ctx, logger, evt.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	if err := w.mirror.UpsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("upsert mirrored row: %w", err)
	}
	logger.InfoContext(ctx, "Mirrored transaction")
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, logger *slog.Logger, id string) error {
	if err := w.mirror.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete mirrored row: %w", err)
	}
	logger.InfoContext(ctx, "Removed mirrored transaction")
	return nil
}

// ResyncAll upserts every stored transaction. It recovers rows whose events
// were lost while the worker was down. Per-row failures are logged and
// counted; the returned error reports only a failure to list.
func (w *SyncWorker) ResyncAll(ctx context.Context) (synced, failed int, err error) {
	users, err := w.store.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}

	for _, userID := range users {
		txs, err := w.store.ListTransactions(ctx, userID, ledger.Filter{})
		if err != nil {
			return synced, failed, fmt.Errorf("list transactions of %s: %w", userID, err)
		}
		for _, tx := range txs {
			if ctx.Err() != nil {
				return synced, failed, ctx.Err()
			}
			if err := w.mirror.UpsertTransaction(ctx, tx); err != nil {
				slog.ErrorContext(ctx, "Failed to resync transaction",
					applog.FieldComponent, applog.ComponentWorker,
					applog.FieldTransactionID, tx.ID,
					applog.FieldError, err)
				failed++
				continue
			}
			synced++
		}
	}

	slog.InfoContext(ctx, "Startup resync completed",
		applog.FieldComponent, applog.ComponentWorker,
		"users", len(users),
		"synced", synced,
		"errors", failed)
	return synced, failed, nil
}
