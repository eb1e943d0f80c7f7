package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pengluaran/internal/cache"
	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
)

// Snapshots keeps one ledger.Snapshot per user in an LRU cache, loading it
// from the store on a miss.
//
// Every Apply and Invalidate bumps a per-user generation. A load only
// installs its snapshot when the generation is unchanged since the load
// began, so a write confirmed while the store was being read is never
// hidden behind the stale rows.
type Snapshots struct {
	store ledger.TransactionStore
	cache *cache.LRUCache[*ledger.Snapshot]
	now   func() time.Time

	mu          sync.Mutex
	generations map[string]uint64
}

func NewSnapshots(store ledger.TransactionStore, c *cache.LRUCache[*ledger.Snapshot]) *Snapshots {
	return &Snapshots{
		store:       store,
		cache:       c,
		now:         time.Now,
		generations: make(map[string]uint64),
	}
}

// Transactions returns every transaction of userID, newest first.
func (s *Snapshots) Transactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	if snap, ok := s.cache.Get(userID); ok {
		return snap.Transactions(), nil
	}

	s.mu.Lock()
	gen := s.generations[userID]
	s.mu.Unlock()

	txs, err := s.store.ListTransactions(ctx, userID, ledger.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	snap := ledger.NewSnapshot(txs, s.now())

	s.mu.Lock()
	if s.generations[userID] == gen {
		s.cache.Set(userID, snap)
	}
	s.mu.Unlock()
	return snap.Transactions(), nil
}

// Apply merges a confirmed write into a cached snapshot. Users without a
// cached snapshot are left alone; the next read loads fresh rows.
func (s *Snapshots) Apply(userID string, c ledger.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	if snap, ok := s.cache.Get(userID); ok {
		snap.Apply(c)
	}
}

// Invalidate drops the snapshot of userID.
func (s *Snapshots) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	s.cache.Delete(userID)
}
