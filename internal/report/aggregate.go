// Package report is the aggregation engine behind dashboards, reports and
// exports. Every function is a pure transformation of the slices it is
// given: nothing here performs I/O, logs, or mutates its inputs, so the
// functions are safe to call concurrently on shared snapshots.
package report

import (
	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
)

var hundred = decimal.NewFromInt(100)

// TotalByType sums the amounts of transactions of type t.
func TotalByType(txs []core.Transaction, t core.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CountByType counts transactions of type t.
func CountByType(txs []core.Transaction, t core.TransactionType) int {
	n := 0
	for _, tx := range txs {
		if tx.Type == t {
			n++
		}
	}
	return n
}

// Balance is income minus expense.
func Balance(txs []core.Transaction) decimal.Decimal {
	return TotalByType(txs, core.Income).Sub(TotalByType(txs, core.Expense))
}

// Average is the mean amount over all transactions regardless of type,
// or zero for an empty slice.
func Average(txs []core.Transaction) decimal.Decimal {
	if len(txs) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total.Div(decimal.NewFromInt(int64(len(txs))))
}

// AverageByType is the mean amount of transactions of type t, or zero when
// there are none.
func AverageByType(txs []core.Transaction, t core.TransactionType) decimal.Decimal {
	n := CountByType(txs, t)
	if n == 0 {
		return decimal.Zero
	}
	return TotalByType(txs, t).Div(decimal.NewFromInt(int64(n)))
}

// Summarize computes the totals shown on summary cards.
func Summarize(txs []core.Transaction) core.TransactionSummary {
	s := core.TransactionSummary{
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		TransactionCount: len(txs),
	}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
			s.IncomeCount++
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
			s.ExpenseCount++
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// SavingsRate is (income - expense) / income * 100, or zero without income.
func SavingsRate(txs []core.Transaction) float64 {
	income := TotalByType(txs, core.Income)
	if income.IsZero() {
		return 0
	}
	expense := TotalByType(txs, core.Expense)
	return income.Sub(expense).Div(income).Mul(hundred).InexactFloat64()
}

// DailyAverage spreads total expense over days. Non-positive days yield zero.
func DailyAverage(txs []core.Transaction, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return TotalByType(txs, core.Expense).Div(decimal.NewFromInt(int64(days)))
}

// FilterByType returns the transactions of type t, preserving order.
func FilterByType(txs []core.Transaction, t core.TransactionType) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByDate returns transactions whose date lies in [start, end]. A zero
// bound is open.
func FilterByDate(txs []core.Transaction, start, end core.Date) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !start.IsZero() && tx.Date.Before(start) {
			continue
		}
		if !end.IsZero() && tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
