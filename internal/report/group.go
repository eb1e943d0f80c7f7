package report

import "pengluaran/internal/core"

// UncategorizedKey collects transactions without a category in GroupByCategory.
const UncategorizedKey = "uncategorized"

// GroupByDate partitions transactions by their ISO date. Order within a group
// follows input order; map iteration order is unspecified, so callers that
// need sorted dates must sort the keys themselves.
func GroupByDate(txs []core.Transaction) map[string][]core.Transaction {
	groups := make(map[string][]core.Transaction)
	for _, tx := range txs {
		key := tx.Date.String()
		groups[key] = append(groups[key], tx)
	}
	return groups
}

// GroupByCategory partitions transactions by category id, with
// uncategorized transactions under UncategorizedKey.
func GroupByCategory(txs []core.Transaction) map[string][]core.Transaction {
	groups := make(map[string][]core.Transaction)
	for _, tx := range txs {
		key := tx.CategoryID
		if key == "" {
			key = UncategorizedKey
		}
		groups[key] = append(groups[key], tx)
	}
	return groups
}
