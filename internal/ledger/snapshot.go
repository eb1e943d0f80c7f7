package ledger

import (
	"sort"
	"sync"
	"time"

	"pengluaran/internal/core"
)

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Change is a write confirmed by the store. For deletes only
// Transaction.ID and At are read.
type Change struct {
	Op          Op
	Transaction core.Transaction
	At          time.Time
}

// Snapshot is a local copy of one user's transactions. Confirmed writes are
// merged with last-write-wins on UpdatedAt: a change older than what the
// snapshot already holds for that id is dropped, and deleted ids keep a
// tombstone so a late upsert cannot resurrect them.
type Snapshot struct {
	mu         sync.RWMutex
	items      map[string]core.Transaction
	tombstones map[string]time.Time
	loadedAt   time.Time
}

func NewSnapshot(txs []core.Transaction, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		items:      make(map[string]core.Transaction, len(txs)),
		tombstones: make(map[string]time.Time),
		loadedAt:   loadedAt,
	}
	for _, tx := range txs {
		s.items[tx.ID] = tx
	}
	return s
}

// Apply merges c and reports whether it changed the snapshot.
func (s *Snapshot) Apply(c Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Transaction.ID
	switch c.Op {
	case OpUpsert:
		at := c.Transaction.UpdatedAt
		if deletedAt, ok := s.tombstones[id]; ok && !at.After(deletedAt) {
			return false
		}
		if cur, ok := s.items[id]; ok && at.Before(cur.UpdatedAt) {
			return false
		}
		delete(s.tombstones, id)
		s.items[id] = c.Transaction
		return true
	case OpDelete:
		if cur, ok := s.items[id]; ok && c.At.Before(cur.UpdatedAt) {
			return false
		}
		if prev, ok := s.tombstones[id]; !ok || c.At.After(prev) {
			s.tombstones[id] = c.At
		}
		_, existed := s.items[id]
		delete(s.items, id)
		return existed
	default:
		return false
	}
}

// Transactions returns the rows ordered by date then creation time, newest first.
func (s *Snapshot) Transactions() []core.Transaction {
	s.mu.RLock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		out = append(out, tx)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}
