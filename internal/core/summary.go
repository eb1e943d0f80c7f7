package core

import "github.com/shopspring/decimal"

// TransactionSummary holds totals over a set of transactions.
type TransactionSummary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
	IncomeCount      int             `json:"income_count"`
	ExpenseCount     int             `json:"expense_count"`
}

// CategorySummary is one row of a category breakdown.
type CategorySummary struct {
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// CategoryUsage reports how much a category is used, regardless of type.
type CategoryUsage struct {
	Category         Category        `json:"category"`
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}
