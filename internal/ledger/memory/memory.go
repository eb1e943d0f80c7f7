// Package memory is an in-process ledger.Store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	now  func() time.Time
	txs  map[string]core.Transaction
	cats map[string]core.Category
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:  time.Now,
		txs:  make(map[string]core.Transaction),
		cats: make(map[string]core.Category),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) ListTransactions(_ context.Context, userID string, f ledger.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID || !f.Matches(tx) {
			continue
		}
		out = append(out, s.join(tx))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	return s.join(tx), nil
}

func (s *Store) CreateTransaction(_ context.Context, userID string, in ledger.TransactionInput) (core.Transaction, error) {
	now := s.now().UTC()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCategory(userID, tx.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	s.txs[tx.ID] = tx
	return s.join(tx), nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID, id string, p ledger.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.txs[id]
	if !ok || cur.UserID != userID {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	next := p.Apply(cur)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(userID, next.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	next.UpdatedAt = s.now().UTC()
	s.txs[id] = next
	return s.join(next), nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return time.Time{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	delete(s.txs, id)
	return s.now().UTC(), nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, tx := range s.txs {
		seen[tx.UserID] = struct{}{}
	}
	for _, c := range s.cats {
		seen[c.UserID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, userID string, t core.TransactionType) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.cats {
		if c.UserID != userID || (t != "" && c.Type != t) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok || c.UserID != userID {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, userID string, in ledger.CategoryInput) (core.Category, error) {
	now := s.now().UTC()
	c := core.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Icon:      in.Icon,
		Color:     in.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, userID, id string, p ledger.CategoryPatch) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.cats[id]
	if !ok || cur.UserID != userID {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	next := p.Apply(cur)
	next.Name = strings.TrimSpace(next.Name)
	if err := next.Validate(); err != nil {
		return core.Category{}, err
	}
	next.UpdatedAt = s.now().UTC()
	s.cats[id] = next
	return next, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	delete(s.cats, id)
	now := s.now().UTC()
	for txID, tx := range s.txs {
		if tx.CategoryID == id {
			tx.CategoryID = ""
			tx.UpdatedAt = now
			s.txs[txID] = tx
		}
	}
	return nil
}

func (s *Store) CountCategories(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.cats {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

// checkCategory mirrors the foreign key of the SQL schemas. Caller holds mu.
func (s *Store) checkCategory(userID, id string) error {
	if id == "" {
		return nil
	}
	c, ok := s.cats[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	return nil
}

// join attaches a copy of the referenced category. Caller holds mu.
func (s *Store) join(tx core.Transaction) core.Transaction {
	tx.Category = nil
	if c, ok := s.cats[tx.CategoryID]; ok && tx.CategoryID != "" {
		tx.Category = &c
	}
	return tx
}

var _ ledger.Store = (*Store)(nil)
