package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
)

// CategoryBreakdown builds the per-category share of total t over txs.
//
// The denominator is the total of every transaction of type t, including
// uncategorized ones and ones whose category has the other type, so the
// listed percentages may sum to less than 100. Only categories of type t are
// listed, categories with a zero amount are dropped, and rows are ordered by
// amount descending with ties kept in category order.
func CategoryBreakdown(txs []core.Transaction, cats []core.Category, t core.TransactionType) []core.CategorySummary {
	typed := FilterByType(txs, t)
	total := TotalByType(txs, t)

	byCategory := make(map[string]*core.CategorySummary)
	out := make([]core.CategorySummary, 0, len(cats))
	for _, c := range cats {
		if c.Type != t {
			continue
		}
		if _, dup := byCategory[c.ID]; dup {
			continue
		}
		out = append(out, core.CategorySummary{Category: c, Amount: decimal.Zero})
		byCategory[c.ID] = &out[len(out)-1]
	}

	for _, tx := range typed {
		row, ok := byCategory[tx.CategoryID]
		if !ok {
			continue
		}
		row.Amount = row.Amount.Add(tx.Amount)
		row.Count++
	}

	kept := out[:0]
	for _, row := range out {
		if !row.Amount.IsPositive() {
			continue
		}
		if total.IsPositive() {
			row.Percentage = row.Amount.Div(total).Mul(hundred).InexactFloat64()
		}
		kept = append(kept, row)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Amount.GreaterThan(kept[j].Amount)
	})
	return kept
}

// TopSpendingCategories returns at most limit rows of the expense breakdown.
func TopSpendingCategories(txs []core.Transaction, cats []core.Category, limit int) []core.CategorySummary {
	rows := CategoryBreakdown(txs, cats, core.Expense)
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// CategoryUsage reports, for every category in cats, how many transactions
// reference it and their total amount. Types are not compared and unused
// categories are kept with zero counts.
func CategoryUsage(cats []core.Category, txs []core.Transaction) []core.CategoryUsage {
	groups := GroupByCategory(txs)
	out := make([]core.CategoryUsage, 0, len(cats))
	for _, c := range cats {
		members := groups[c.ID]
		total := decimal.Zero
		for _, tx := range members {
			total = total.Add(tx.Amount)
		}
		out = append(out, core.CategoryUsage{
			Category:         c,
			TransactionCount: len(members),
			TotalAmount:      total,
		})
	}
	return out
}
