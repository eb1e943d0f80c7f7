package google

import (
	"fmt"
	"strings"
	"time"

	"pengluaran/internal/core"
	ports "pengluaran/internal/sheets"
)

var TransactionHeader = []string{"ID", "Tanggal", "Tipe", "Kategori", "Jumlah", "Deskripsi", "Pengguna", "Diperbarui"}

var SummaryHeader = []string{"Kunci", "Bulan", "Pengguna", "Pemasukan", "Pengeluaran", "Saldo", "Jumlah Transaksi", "Rincian Pengeluaran"}

const uncategorized = "Tanpa Kategori"

// transactionRow lays out tx in TransactionHeader order. Amounts are written
// as numbers so the sheet can sum them.
func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.Type.Label(),
		tx.CategoryName(uncategorized),
		tx.Amount.InexactFloat64(),
		tx.Description,
		tx.UserID,
		tx.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func summaryRow(s ports.MonthlySummary) []any {
	return []any{
		s.Key(),
		s.Month.MonthLabel(),
		s.UserID,
		s.Summary.TotalIncome.InexactFloat64(),
		s.Summary.TotalExpense.InexactFloat64(),
		s.Summary.Balance.InexactFloat64(),
		s.Summary.TransactionCount,
		breakdownText(s.ExpenseBreakdown),
	}
}

// breakdownText renders "Makan 66.67%; Transport 33.33%".
func breakdownText(rows []core.CategorySummary) string {
	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, fmt.Sprintf("%s %.2f%%", r.Category.Name, r.Percentage))
	}
	return strings.Join(parts, "; ")
}

// buildRowIndex maps the column A value of every row to its 1-based row
// number. Blank cells are skipped and the first occurrence wins.
func buildRowIndex(values [][]any) map[string]int {
	index := make(map[string]int, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		key := strings.TrimSpace(fmt.Sprint(row[0]))
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i + 1
		}
	}
	return index
}

// findRow returns the 1-based row whose column A equals key, or 0.
func findRow(values [][]any, key string) int {
	return buildRowIndex(values)[key]
}

// lastColumn returns the column letter of the last header cell.
func lastColumn(header []string) string {
	return string(rune('A' + len(header) - 1))
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
