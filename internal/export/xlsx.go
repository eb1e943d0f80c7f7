package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pengluaran/internal/core"
	"pengluaran/internal/report"
)

const (
	SheetTransactions = "Transaksi"
	SheetSummary      = "Ringkasan"
)

const amountFormat = "#,##0.##"

// WriteXLSX writes a workbook with the transaction list and a summary of rep.
func WriteXLSX(w io.Writer, rep report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeTransactionSheet(f, styles, rep.Transactions); err != nil {
		return err
	}
	if err := writeSummarySheet(f, styles, rep); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header, amount, title int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#3b82f6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	format := amountFormat
	s.amount, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &format,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return s, fmt.Errorf("create amount style: %w", err)
	}
	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}
	return s, nil
}

func writeTransactionSheet(f *excelize.File, s sheetStyles, txs []core.Transaction) error {
	sheet := SheetTransactions
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", s.header); err != nil {
		return fmt.Errorf("style xlsx header: %w", err)
	}

	for i, tx := range txs {
		r := i + 2
		values := []any{
			tx.Date.String(),
			tx.Type.Label(),
			tx.CategoryName(UncategorizedLabel),
			tx.Amount.InexactFloat64(),
			tx.Description,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &values); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", tx.ID, err)
		}
	}
	if len(txs) > 0 {
		last := fmt.Sprintf("D%d", len(txs)+1)
		if err := f.SetCellStyle(sheet, "D2", last, s.amount); err != nil {
			return fmt.Errorf("style xlsx amounts: %w", err)
		}
	}

	widths := map[string]float64{"A": 12, "B": 14, "C": 20, "D": 16, "E": 40}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s sheetStyles, rep report.Report) error {
	sheet := SheetSummary
	r := 1
	set := func(values ...any) error {
		err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &values)
		r++
		return err
	}
	title := func(text string) error {
		cell := fmt.Sprintf("A%d", r)
		if err := set(text); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, s.title)
	}

	sum := rep.Summary
	steps := []func() error{
		func() error { return title("Laporan Keuangan") },
		func() error { return set("Periode", rep.RangeLabel) },
		func() error { return set("Dari", rep.Start.String()) },
		func() error { return set("Sampai", rep.End.String()) },
		func() error { r++; return nil },
		func() error { return set("Total Pemasukan", sum.TotalIncome.InexactFloat64()) },
		func() error { return set("Total Pengeluaran", sum.TotalExpense.InexactFloat64()) },
		func() error { return set("Saldo", sum.Balance.InexactFloat64()) },
		func() error { return set("Jumlah Transaksi", sum.TransactionCount) },
		func() error { return set("Tingkat Tabungan (%)", rep.SavingsRate) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("write xlsx summary: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "B6", "B8", s.amount); err != nil {
		return fmt.Errorf("style xlsx summary: %w", err)
	}

	breakdowns := []struct {
		title string
		rows  []core.CategorySummary
	}{
		{"Pemasukan per Kategori", rep.IncomeBreakdown},
		{"Pengeluaran per Kategori", rep.ExpenseBreakdown},
	}
	for _, b := range breakdowns {
		r++
		if err := title(b.title); err != nil {
			return fmt.Errorf("write xlsx breakdown: %w", err)
		}
		for _, row := range b.rows {
			if err := set(row.Category.Name, row.Amount.InexactFloat64(), row.Count, row.Percentage); err != nil {
				return fmt.Errorf("write xlsx breakdown: %w", err)
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}
