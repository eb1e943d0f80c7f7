// Package sheets mirrors transactions and monthly summaries into a
// spreadsheet.
package sheets

import (
	"context"

	"pengluaran/internal/core"
)

// MonthlySummary is one user's archived month.
type MonthlySummary struct {
	UserID           string
	Month            core.Date // first day of the month
	Summary          core.TransactionSummary
	ExpenseBreakdown []core.CategorySummary
}

// Key identifies the summary row, "YYYY-MM/<user>".
func (s MonthlySummary) Key() string {
	return s.Month.MonthKey() + "/" + s.UserID
}

// TransactionMirror is the outbound port of the sync worker. Upserts and
// deletes are keyed by transaction id and are idempotent.
type TransactionMirror interface {
	UpsertTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	WriteMonthlySummary(ctx context.Context, s MonthlySummary) error
}
