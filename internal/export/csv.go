package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"pengluaran/internal/core"
)

// WriteCSV writes the header and one record per transaction. Fields are
// quoted only when they contain a comma, quote or newline, and embedded
// quotes are doubled.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(row(tx)); err != nil {
			return fmt.Errorf("write csv row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ToCSV is WriteCSV into a string.
func ToCSV(txs []core.Transaction) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs); err != nil {
		return "", err
	}
	return buf.String(), nil
}
