// Package storage is the SQLite implementation of ledger.Store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
	"pengluaran/internal/ledger"

	_ "modernc.org/sqlite"
)

// timestampLayout has a fixed-width fraction so stored values sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(timestampLayout)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f ledger.Filter) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		UserID:     userID,
		FromDate:   f.From.String(),
		ToDate:     f.To.String(),
		Type:       string(f.Type),
		CategoryID: f.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, in ledger.TransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
		CategoryID:  in.CategoryID,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := r.checkCategory(ctx, userID, tx.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	now := r.stamp()
	id := uuid.NewString()
	err := r.queries.CreateTransaction(ctx, Transaction{
		ID:          id,
		UserID:      userID,
		CategoryID:  nullString(tx.CategoryID),
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		Date:        tx.Date.String(),
		Description: tx.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", id, "user_id", userID, "type", tx.Type)
	return r.GetTransaction(ctx, userID, id)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id string, p ledger.TransactionPatch) (core.Transaction, error) {
	cur, err := r.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	next := p.Apply(cur)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := r.checkCategory(ctx, userID, next.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	n, err := r.queries.UpdateTransaction(ctx, Transaction{
		ID:          id,
		UserID:      userID,
		CategoryID:  nullString(next.CategoryID),
		Type:        string(next.Type),
		Amount:      next.Amount.String(),
		Date:        next.Date.String(),
		Description: next.Description,
		UpdatedAt:   r.stamp(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	return r.GetTransaction(ctx, userID, id)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) (time.Time, error) {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return time.Time{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	return r.now().UTC(), nil
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, t core.TransactionType) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, userID, string(t))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		c, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, userID string, in ledger.CategoryInput) (core.Category, error) {
	c := core.Category{
		Name:  strings.TrimSpace(in.Name),
		Type:  in.Type,
		Icon:  in.Icon,
		Color: in.Color,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.Icon == "" {
		c.Icon = core.DefaultIcon
	}

	now := r.stamp()
	id := uuid.NewString()
	err := r.queries.CreateCategory(ctx, Category{
		ID:        id,
		UserID:    userID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      string(c.Icon),
		Color:     c.Color,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return r.GetCategory(ctx, userID, id)
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID, id string, p ledger.CategoryPatch) (core.Category, error) {
	cur, err := r.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	next := p.Apply(cur)
	next.Name = strings.TrimSpace(next.Name)
	if err := next.Validate(); err != nil {
		return core.Category{}, err
	}

	n, err := r.queries.UpdateCategory(ctx, Category{
		ID:        id,
		UserID:    userID,
		Name:      next.Name,
		Type:      string(next.Type),
		Icon:      string(next.Icon),
		Color:     next.Color,
		UpdatedAt: r.stamp(),
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	return r.GetCategory(ctx, userID, id)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer dbtx.Rollback()

	q := r.queries.WithTx(dbtx)
	if err := q.DetachCategory(ctx, r.stamp(), id, userID); err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	n, err := q.DeleteCategory(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountCategories(ctx context.Context, userID string) (int, error) {
	n, err := r.queries.CountCategories(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) checkCategory(ctx context.Context, userID, id string) error {
	if id == "" {
		return nil
	}
	_, err := r.GetCategory(ctx, userID, id)
	return err
}

func (row TransactionWithCategory) toCore() (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount of %s: %w", row.ID, err)
	}
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date of %s: %w", row.ID, err)
	}
	created, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := parseTimestamp(row.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		CategoryID:  row.CategoryID.String,
		Type:        core.TransactionType(row.Type),
		Amount:      amount,
		Date:        date,
		Description: row.Description,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if row.CategoryID.Valid && row.CategoryName.Valid {
		c, err := Category{
			ID:        row.CategoryID.String,
			UserID:    row.UserID,
			Name:      row.CategoryName.String,
			Type:      row.CategoryType.String,
			Icon:      row.CategoryIcon.String,
			Color:     row.CategoryColor.String,
			CreatedAt: row.CategoryCreatedAt.String,
			UpdatedAt: row.CategoryUpdatedAt.String,
		}.toCore()
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Category = &c
	}
	return tx, nil
}

func (row Category) toCore() (core.Category, error) {
	created, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return core.Category{}, err
	}
	updated, err := parseTimestamp(row.UpdatedAt)
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		Type:      core.TransactionType(row.Type),
		Icon:      core.Icon(row.Icon),
		Color:     row.Color,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ ledger.Store = (*SQLiteRepository)(nil)
