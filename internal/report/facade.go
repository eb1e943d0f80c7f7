package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
)

// DateRange is a named lookback window.
type DateRange string

const (
	Range1M  DateRange = "1M"
	Range3M  DateRange = "3M"
	Range6M  DateRange = "6M"
	Range1Y  DateRange = "1Y"
	RangeAll DateRange = "ALL"

	DefaultRange = Range6M
)

// DateRanges lists the selectors in display order.
var DateRanges = []DateRange{Range1M, Range3M, Range6M, Range1Y, RangeAll}

var rangeLabels = map[DateRange]string{
	Range1M:  "1 Bulan",
	Range3M:  "3 Bulan",
	Range6M:  "6 Bulan",
	Range1Y:  "1 Tahun",
	RangeAll: "Semua",
}

var rangeMonths = map[DateRange]int{
	Range1M: 1,
	Range3M: 3,
	Range6M: 6,
	Range1Y: 12,
}

// ParseDateRange accepts the selector codes case-insensitively; an empty
// string selects DefaultRange.
func ParseDateRange(s string) (DateRange, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultRange, nil
	}
	r := DateRange(s)
	if _, ok := rangeLabels[r]; !ok {
		return "", fmt.Errorf("unknown date range %q", s)
	}
	return r, nil
}

func (r DateRange) Label() string {
	return rangeLabels[r]
}

// StartDate returns the first date included by r as seen from today. For
// RangeAll it is the earliest transaction date, or today when txs is empty.
func (r DateRange) StartDate(today core.Date, txs []core.Transaction) core.Date {
	if n, ok := rangeMonths[r]; ok {
		return today.AddMonths(-n)
	}
	earliest := today
	for _, tx := range txs {
		if tx.Date.Before(earliest) {
			earliest = tx.Date
		}
	}
	return earliest
}

// Report is the summary behind the reports page.
type Report struct {
	Range            DateRange               `json:"range"`
	RangeLabel       string                  `json:"range_label"`
	Start            core.Date               `json:"start"`
	End              core.Date               `json:"end"`
	Summary          core.TransactionSummary `json:"summary"`
	Average          decimal.Decimal         `json:"average"`
	AverageIncome    decimal.Decimal         `json:"average_income"`
	AverageExpense   decimal.Decimal         `json:"average_expense"`
	SavingsRate      float64                 `json:"savings_rate"`
	Monthly          []Bucket                `json:"monthly"`
	IncomeBreakdown  []core.CategorySummary  `json:"income_breakdown"`
	ExpenseBreakdown []core.CategorySummary  `json:"expense_breakdown"`
	Transactions     []core.Transaction      `json:"-"`
}

// Build composes the report for r. today anchors the window; the monthly
// series spans every month from the start month through today's month.
func Build(txs []core.Transaction, cats []core.Category, r DateRange, today core.Date) Report {
	start := r.StartDate(today, txs)
	subset := FilterByDate(txs, start, core.Date{})

	return Report{
		Range:            r,
		RangeLabel:       r.Label(),
		Start:            start,
		End:              today,
		Summary:          Summarize(subset),
		Average:          Average(subset),
		AverageIncome:    AverageByType(subset, core.Income),
		AverageExpense:   AverageByType(subset, core.Expense),
		SavingsRate:      SavingsRate(subset),
		Monthly:          MonthlyTrends(subset, MonthsInRange(start, today)),
		IncomeBreakdown:  CategoryBreakdown(subset, cats, core.Income),
		ExpenseBreakdown: CategoryBreakdown(subset, cats, core.Expense),
		Transactions:     subset,
	}
}

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 5

// Dashboard is the current-month overview.
type Dashboard struct {
	Month            string                  `json:"month"`
	Summary          core.TransactionSummary `json:"summary"`
	Daily            []Bucket                `json:"daily"`
	ExpenseBreakdown []core.CategorySummary  `json:"expense_breakdown"`
	Recent           []core.Transaction      `json:"recent"`
}

// BuildDashboard summarizes the calendar month containing today.
func BuildDashboard(txs []core.Transaction, cats []core.Category, today core.Date) Dashboard {
	month := FilterByDate(txs, today.StartOfMonth(), today.EndOfMonth())
	return Dashboard{
		Month:            today.MonthName(),
		Summary:          Summarize(month),
		Daily:            TimeSeries(month, DaysInMonth(today), Day),
		ExpenseBreakdown: CategoryBreakdown(month, cats, core.Expense),
		Recent:           MostRecent(month, RecentLimit),
	}
}

// MostRecent returns up to n transactions ordered by date, then creation
// time, newest first. The input slice is not reordered.
func MostRecent(txs []core.Transaction, n int) []core.Transaction {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
