package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pengluaran/internal/core"
	"pengluaran/internal/export"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/report"
)

// ReportService loads a user's data and hands it to the report and export
// builders.
type ReportService struct {
	categories ledger.CategoryStore
	snapshots  *Snapshots
	now        func() time.Time
}

type ReportOption func(*ReportService)

// WithReportClock fixes the time reports are computed against.
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(categories ledger.CategoryStore, snapshots *Snapshots, opts ...ReportOption) *ReportService {
	s := &ReportService{categories: categories, snapshots: snapshots, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock.
func (s *ReportService) Now() time.Time {
	return s.now()
}

func (s *ReportService) today() core.Date {
	return core.DateOf(s.now())
}

// load fetches transactions and categories concurrently.
func (s *ReportService) load(ctx context.Context, userID string) ([]core.Transaction, []core.Category, error) {
	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.snapshots.Transactions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.categories.ListCategories(gctx, userID, "")
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, cats, nil
}

func (s *ReportService) Report(ctx context.Context, userID string, r report.DateRange) (report.Report, error) {
	txs, cats, err := s.load(ctx, userID)
	if err != nil {
		return report.Report{}, fmt.Errorf("build report: %w", err)
	}
	return report.Build(txs, cats, r, s.today()), nil
}

func (s *ReportService) Dashboard(ctx context.Context, userID string) (report.Dashboard, error) {
	txs, cats, err := s.load(ctx, userID)
	if err != nil {
		return report.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	return report.BuildDashboard(txs, cats, s.today()), nil
}

// Export writes the transactions of range r to w in format f.
func (s *ReportService) Export(ctx context.Context, userID string, r report.DateRange, f export.Format, w io.Writer) error {
	rep, err := s.Report(ctx, userID, r)
	if err != nil {
		return err
	}
	if err := export.Write(w, f, rep); err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	slog.InfoContext(ctx, "Report exported",
		applog.FieldComponent, applog.ComponentReport,
		applog.FieldUserID, userID,
		applog.FieldRange, string(r),
		applog.FieldFormat, string(f),
		applog.FieldCount, len(rep.Transactions))
	return nil
}
