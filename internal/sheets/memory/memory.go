// Package memory is an in-process sheets.TransactionMirror used when no
// spreadsheet is configured and in tests.
package memory

import (
	"context"
	"sync"

	"pengluaran/internal/core"
	"pengluaran/internal/sheets"
)

type Mirror struct {
	mu        sync.Mutex
	order     []string
	rows      map[string]core.Transaction
	summaries map[string]sheets.MonthlySummary
}

func New() *Mirror {
	return &Mirror{
		rows:      make(map[string]core.Transaction),
		summaries: make(map[string]sheets.MonthlySummary),
	}
}

// UpsertTransaction replaces the row for tx.ID in place or appends it.
func (m *Mirror) UpsertTransaction(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[tx.ID]; !ok {
		m.order = append(m.order, tx.ID)
	}
	m.rows[tx.ID] = tx
	return nil
}

// DeleteTransaction removes the row; a missing id is not an error.
func (m *Mirror) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return nil
	}
	delete(m.rows, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mirror) WriteMonthlySummary(_ context.Context, s sheets.MonthlySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[s.Key()] = s
	return nil
}

// Rows returns the mirrored transactions in insertion order.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.rows[id])
	}
	return out
}

// Summary returns the summary stored under key.
func (m *Mirror) Summary(key string) (sheets.MonthlySummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[key]
	return s, ok
}

var _ sheets.TransactionMirror = (*Mirror)(nil)
