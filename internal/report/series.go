package report

import (
	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
)

// Granularity selects the period an anchor date stands for.
type Granularity int

const (
	Day Granularity = iota
	Month
)

// Bucket is one point of a chart series.
type Bucket struct {
	Key              string          `json:"key"`   // "2025-01-05" or "2025-01"
	Label            string          `json:"label"` // "5 Jan" or "Jan 2025"
	Start            core.Date       `json:"start"`
	End              core.Date       `json:"end"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// Bounds returns the inclusive period that anchor represents.
func (g Granularity) Bounds(anchor core.Date) (core.Date, core.Date) {
	if g == Month {
		return anchor.StartOfMonth(), anchor.EndOfMonth()
	}
	return anchor, anchor
}

func (g Granularity) key(anchor core.Date) string {
	if g == Month {
		return anchor.MonthKey()
	}
	return anchor.String()
}

func (g Granularity) label(anchor core.Date) string {
	if g == Month {
		return anchor.MonthLabel()
	}
	return anchor.FormatShort()
}

// TimeSeries produces exactly one bucket per anchor, in anchor order.
// Anchors are not sorted or deduplicated; periods with no transactions
// produce zero buckets rather than being skipped.
func TimeSeries(txs []core.Transaction, anchors []core.Date, g Granularity) []Bucket {
	out := make([]Bucket, 0, len(anchors))
	for _, a := range anchors {
		start, end := g.Bounds(a)
		in := FilterByDate(txs, start, end)
		income := TotalByType(in, core.Income)
		expense := TotalByType(in, core.Expense)
		out = append(out, Bucket{
			Key:              g.key(a),
			Label:            g.label(a),
			Start:            start,
			End:              end,
			Income:           income,
			Expense:          expense,
			Balance:          income.Sub(expense),
			TransactionCount: len(in),
		})
	}
	return out
}

// MonthlyTrends is TimeSeries at month granularity.
func MonthlyTrends(txs []core.Transaction, months []core.Date) []Bucket {
	return TimeSeries(txs, months, Month)
}

// MonthsInRange returns the first day of every month from start's month
// through end's month inclusive. It is empty when end precedes start.
func MonthsInRange(start, end core.Date) []core.Date {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	first := start.StartOfMonth()
	last := end.StartOfMonth()
	var out []core.Date
	for m := first; !m.After(last); m = m.AddMonths(1) {
		out = append(out, m)
	}
	return out
}

// DaysInMonth returns every day of d's month.
func DaysInMonth(d core.Date) []core.Date {
	start, end := d.StartOfMonth(), d.EndOfMonth()
	out := make([]core.Date, 0, end.Day())
	for day := start; !day.After(end); day = day.AddDays(1) {
		out = append(out, day)
	}
	return out
}
