package export

import (
	"encoding/json"
	"fmt"
	"io"

	"pengluaran/internal/core"
)

// WriteJSON writes txs as an indented JSON array. A nil slice is written
// as [] so consumers never see null.
func WriteJSON(w io.Writer, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}
