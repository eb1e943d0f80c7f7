package google

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
	ports "pengluaran/internal/sheets"
)

func TestBuildRowIndex(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"tx-1"},
		{},
		{" tx-2 "},
		{"tx-1"},
	}

	index := buildRowIndex(values)

	tests := []struct {
		key  string
		want int
	}{
		{"ID", 1},
		{"tx-1", 2},
		{"tx-2", 4},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := index[tt.key]; got != tt.want {
			t.Errorf("row of %q = %d, want %d", tt.key, got, tt.want)
		}
	}
	if findRow(values, "tx-2") != 4 {
		t.Error("findRow should agree with buildRowIndex")
	}
}

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID:          "tx-1",
		UserID:      "u1",
		Type:        core.Expense,
		Amount:      decimal.RequireFromString("40000.5"),
		Date:        core.MustParseDate("2025-01-05"),
		Description: "Makan siang",
		UpdatedAt:   time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC),
	}

	row := transactionRow(tx)
	if len(row) != len(TransactionHeader) {
		t.Fatalf("row has %d cells, header %d", len(row), len(TransactionHeader))
	}
	if row[0] != "tx-1" || row[1] != "2025-01-05" || row[2] != "Pengeluaran" {
		t.Errorf("unexpected leading cells %v", row[:3])
	}
	if row[3] != uncategorized {
		t.Errorf("category = %v, want %q", row[3], uncategorized)
	}
	if row[4] != 40000.5 {
		t.Errorf("amount = %v", row[4])
	}
	if row[7] != "2025-01-05T08:00:00Z" {
		t.Errorf("updated = %v", row[7])
	}

	cat := core.Category{Name: "Makan"}
	tx.Category = &cat
	if transactionRow(tx)[3] != "Makan" {
		t.Error("joined category name not used")
	}
}

func TestSummaryRow(t *testing.T) {
	s := ports.MonthlySummary{
		UserID: "u1",
		Month:  core.MustParseDate("2025-01-01"),
		Summary: core.TransactionSummary{
			TotalIncome:      decimal.NewFromInt(100),
			TotalExpense:     decimal.NewFromInt(60),
			Balance:          decimal.NewFromInt(40),
			TransactionCount: 3,
		},
		ExpenseBreakdown: []core.CategorySummary{
			{Category: core.Category{Name: "Makan"}, Percentage: 66.666},
			{Category: core.Category{Name: "Transport"}, Percentage: 33.333},
		},
	}

	row := summaryRow(s)
	if len(row) != len(SummaryHeader) {
		t.Fatalf("row has %d cells, header %d", len(row), len(SummaryHeader))
	}
	if row[0] != "2025-01/u1" {
		t.Errorf("key = %v", row[0])
	}
	if row[5] != 40.0 {
		t.Errorf("balance = %v", row[5])
	}
	if row[7] != "Makan 66.67%; Transport 33.33%" {
		t.Errorf("breakdown = %v", row[7])
	}
}

func TestLastColumn(t *testing.T) {
	if got := lastColumn(TransactionHeader); got != "H" {
		t.Errorf("lastColumn = %q, want H", got)
	}
}
