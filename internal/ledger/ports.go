// Package ledger defines the persistence ports for transactions and
// categories and the per-user snapshot kept in front of them.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrCategoryLimit        = errors.New("category limit reached")
)

type (
	// Filter narrows ListTransactions. Zero fields do not filter.
	Filter struct {
		From       core.Date
		To         core.Date
		Type       core.TransactionType
		CategoryID string
	}

	TransactionInput struct {
		Type        core.TransactionType
		Amount      decimal.Decimal
		Date        core.Date
		CategoryID  string
		Description string
	}

	// TransactionPatch updates only the non-nil fields. A CategoryID
	// pointing at "" detaches the category.
	TransactionPatch struct {
		Type        *core.TransactionType
		Amount      *decimal.Decimal
		Date        *core.Date
		CategoryID  *string
		Description *string
	}

	CategoryInput struct {
		Name  string
		Type  core.TransactionType
		Icon  core.Icon
		Color string
	}

	CategoryPatch struct {
		Name  *string
		Type  *core.TransactionType
		Icon  *core.Icon
		Color *string
	}
)

// Ports for storage adapters. Every call is scoped to userID; rows owned by
// another user are reported as ErrNotFound.
type (
	TransactionStore interface {
		// ListTransactions returns matching rows newest first, with Category joined.
		ListTransactions(ctx context.Context, userID string, f Filter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, userID, id string, p TransactionPatch) (core.Transaction, error)
		// DeleteTransaction removes the row and returns the deletion time, taken
		// from the same clock that stamps UpdatedAt.
		DeleteTransaction(ctx context.Context, userID, id string) (time.Time, error)
		// ListUserIDs returns every user owning at least one row.
		ListUserIDs(ctx context.Context) ([]string, error)
	}

	CategoryStore interface {
		// ListCategories returns categories ordered by name; an empty t lists both types.
		ListCategories(ctx context.Context, userID string, t core.TransactionType) ([]core.Category, error)
		GetCategory(ctx context.Context, userID, id string) (core.Category, error)
		CreateCategory(ctx context.Context, userID string, in CategoryInput) (core.Category, error)
		UpdateCategory(ctx context.Context, userID, id string, p CategoryPatch) (core.Category, error)
		// DeleteCategory removes the category and detaches its transactions.
		DeleteCategory(ctx context.Context, userID, id string) error
		CountCategories(ctx context.Context, userID string) (int, error)
	}

	Store interface {
		TransactionStore
		CategoryStore
		// Ping reports whether the backing database is reachable.
		Ping(ctx context.Context) error
		Close() error
	}
)

// Apply returns tx with the patch applied.
func (p TransactionPatch) Apply(tx core.Transaction) core.Transaction {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.CategoryID != nil {
		tx.CategoryID = *p.CategoryID
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	return tx
}

// Apply returns c with the patch applied.
func (p CategoryPatch) Apply(c core.Category) core.Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	return c
}

// Matches reports whether tx passes f.
func (f Filter) Matches(tx core.Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
		return false
	}
	return true
}
