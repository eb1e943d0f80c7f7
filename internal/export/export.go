// Package export serializes transaction lists into downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pengluaran/internal/core"
	"pengluaran/internal/report"
)

// UncategorizedLabel replaces the category name of uncategorized rows.
const UncategorizedLabel = "Tanpa Kategori"

// Header is the column row shared by the CSV and XLSX outputs.
var Header = []string{"Tanggal", "Tipe", "Kategori", "Jumlah", "Deskripsi"}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns "laporan-keuangan-YYYY-MM-DD.<ext>".
func Filename(now time.Time, ext string) string {
	return "laporan-keuangan-" + now.Format(core.DateLayout) + "." + strings.TrimPrefix(ext, ".")
}

// Write renders rep in format f. CSV and JSON carry the report's
// transactions only; XLSX adds a summary sheet.
func Write(w io.Writer, f Format, rep report.Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rep.Transactions)
	case FormatJSON:
		return WriteJSON(w, rep.Transactions)
	case FormatXLSX:
		return WriteXLSX(w, rep)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func row(tx core.Transaction) []string {
	return []string{
		tx.Date.String(),
		tx.Type.Label(),
		tx.CategoryName(UncategorizedLabel),
		core.PlainAmount(tx.Amount),
		tx.Description,
	}
}
