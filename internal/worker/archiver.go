package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/report"
	"pengluaran/internal/sheets"
)

// Archiver writes each user's summary of the previous calendar month to the
// mirror's summary sheet.
type Archiver struct {
	store  ledger.Store
	mirror sheets.TransactionMirror
	now    func() time.Time
}

func NewArchiver(store ledger.Store, mirror sheets.TransactionMirror) *Archiver {
	return &Archiver{store: store, mirror: mirror, now: time.Now}
}

// ArchivePreviousMonth archives the month before the one containing now.
// Every user is attempted; the failures are joined into the returned error.
func (a *Archiver) ArchivePreviousMonth(ctx context.Context, now time.Time) error {
	month := core.DateOf(now).StartOfMonth().AddMonths(-1)

	users, err := a.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var errs []error
	for _, userID := range users {
		s, err := a.summarize(ctx, userID, month)
		if err == nil {
			err = a.mirror.WriteMonthlySummary(ctx, s)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("archive %s for %s: %w", month.MonthKey(), userID, err))
			continue
		}
		slog.InfoContext(ctx, "Archived monthly summary",
			applog.FieldComponent, applog.ComponentArchive,
			applog.FieldUserID, userID,
			"month", month.MonthKey(),
			applog.FieldCount, s.Summary.TransactionCount)
	}
	return errors.Join(errs...)
}

func (a *Archiver) summarize(ctx context.Context, userID string, month core.Date) (sheets.MonthlySummary, error) {
	txs, err := a.store.ListTransactions(ctx, userID, ledger.Filter{From: month, To: month.EndOfMonth()})
	if err != nil {
		return sheets.MonthlySummary{}, fmt.Errorf("list transactions: %w", err)
	}
	cats, err := a.store.ListCategories(ctx, userID, core.Expense)
	if err != nil {
		return sheets.MonthlySummary{}, fmt.Errorf("list categories: %w", err)
	}
	return sheets.MonthlySummary{
		UserID:           userID,
		Month:            month,
		Summary:          report.Summarize(txs),
		ExpenseBreakdown: report.CategoryBreakdown(txs, cats, core.Expense),
	}, nil
}

// Schedule registers the archive run on c under spec, a standard five-field
// cron expression.
func (a *Archiver) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if err := a.ArchivePreviousMonth(ctx, a.now()); err != nil {
			slog.ErrorContext(ctx, "Monthly archive failed",
				applog.FieldComponent, applog.ComponentArchive,
				applog.FieldError, err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule archive %q: %w", spec, err)
	}
	return id, nil
}
