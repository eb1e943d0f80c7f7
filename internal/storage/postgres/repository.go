// Package postgres is the PostgreSQL implementation of ledger.Store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
)

type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open migrates the schema and connects a pool to databaseURL.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool, now: time.Now}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

const transactionColumns = `
t.id::text, t.user_id, t.category_id::text, t.type, t.amount::text, t.date,
t.description, t.created_at, t.updated_at,
c.name, c.type, c.icon, c.color, c.created_at, c.updated_at
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

const listTransactions = `SELECT` + transactionColumns + `
WHERE t.user_id = $1
  AND ($2::date IS NULL OR t.date >= $2::date)
  AND ($3::date IS NULL OR t.date <= $3::date)
  AND ($4::text IS NULL OR t.type = $4::text)
  AND ($5::text::uuid IS NULL OR t.category_id = $5::text::uuid)
ORDER BY t.date DESC, t.created_at DESC`

func (r *Repository) ListTransactions(ctx context.Context, userID string, f ledger.Filter) ([]core.Transaction, error) {
	var categoryID pgtype.Text
	if f.CategoryID != "" {
		if _, err := uuid.Parse(f.CategoryID); err != nil {
			return nil, nil
		}
		categoryID = pgtype.Text{String: f.CategoryID, Valid: true}
	}

	rows, err := r.pool.Query(ctx, listTransactions,
		userID,
		dateParam(f.From),
		dateParam(f.To),
		pgtype.Text{String: string(f.Type), Valid: f.Type != ""},
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	row := r.pool.QueryRow(ctx, `SELECT`+transactionColumns+`
WHERE t.id = $1::text::uuid AND t.user_id = $2`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	return tx, err
}

func (r *Repository) CreateTransaction(ctx context.Context, userID string, in ledger.TransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		CategoryID:  in.CategoryID,
		Description: in.Description,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := r.checkCategory(ctx, userID, tx.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	id := uuid.NewString()
	now := r.now().UTC()
	_, err := r.pool.Exec(ctx, `
INSERT INTO transactions (id, user_id, category_id, type, amount, date, description, created_at, updated_at)
VALUES ($1::text::uuid, $2, $3::text::uuid, $4, $5::text::numeric, $6, $7, $8, $8)`,
		id, userID, uuidParam(tx.CategoryID), string(tx.Type), tx.Amount.String(),
		dateParam(tx.Date), tx.Description, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to Postgres", "id", id, "user_id", userID, "type", tx.Type)
	return r.GetTransaction(ctx, userID, id)
}

func (r *Repository) UpdateTransaction(ctx context.Context, userID, id string, p ledger.TransactionPatch) (core.Transaction, error) {
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

	tag, err := r.pool.Exec(ctx, `
UPDATE transactions
SET category_id = $3::text::uuid, type = $4, amount = $5::text::numeric, date = $6, description = $7, updated_at = $8
WHERE id = $1::text::uuid AND user_id = $2`,
		id, userID, uuidParam(next.CategoryID), string(next.Type), next.Amount.String(),
		dateParam(next.Date), next.Description, r.now().UTC())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	return r.GetTransaction(ctx, userID, id)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) (time.Time, error) {
	if _, err := uuid.Parse(id); err != nil {
		return time.Time{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1::text::uuid AND user_id = $2`, id, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return time.Time{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	return r.now().UTC(), nil
}

func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id FROM transactions
UNION
SELECT user_id FROM categories
ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

const categoryColumns = `id::text, user_id, name, type, icon, color, created_at, updated_at FROM categories`

func (r *Repository) ListCategories(ctx context.Context, userID string, t core.TransactionType) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+`
WHERE user_id = $1 AND ($2::text IS NULL OR type = $2::text)
ORDER BY name, id`, userID, pgtype.Text{String: string(t), Valid: t != ""})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *Repository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` WHERE id = $1::text::uuid AND user_id = $2`, id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	return c, err
}

func (r *Repository) CreateCategory(ctx context.Context, userID string, in ledger.CategoryInput) (core.Category, error) {
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

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
INSERT INTO categories (id, user_id, name, type, icon, color, created_at, updated_at)
VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7, $7)`,
		id, userID, c.Name, string(c.Type), string(c.Icon), c.Color, r.now().UTC())
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return r.GetCategory(ctx, userID, id)
}

func (r *Repository) UpdateCategory(ctx context.Context, userID, id string, p ledger.CategoryPatch) (core.Category, error) {
	cur, err := r.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	next := p.Apply(cur)
	next.Name = strings.TrimSpace(next.Name)
	if err := next.Validate(); err != nil {
		return core.Category{}, err
	}

	_, err = r.pool.Exec(ctx, `
UPDATE categories SET name = $3, type = $4, icon = $5, color = $6, updated_at = $7
WHERE id = $1::text::uuid AND user_id = $2`,
		id, userID, next.Name, string(next.Type), string(next.Icon), next.Color, r.now().UTC())
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return r.GetCategory(ctx, userID, id)
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
UPDATE transactions SET category_id = NULL, updated_at = $3
WHERE category_id = $1::text::uuid AND user_id = $2`, id, userID, r.now().UTC())
		if err != nil {
			return fmt.Errorf("detach category: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1::text::uuid AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
		}
		return nil
	})
}

func (r *Repository) CountCategories(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r *Repository) checkCategory(ctx context.Context, userID, id string) error {
	if id == "" {
		return nil
	}
	_, err := r.GetCategory(ctx, userID, id)
	return err
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		tx                     core.Transaction
		categoryID, amount     pgtype.Text
		date                   pgtype.Date
		typ                    string
		catName, catType       pgtype.Text
		catIcon, catColor      pgtype.Text
		catCreated, catUpdated pgtype.Timestamptz
	)
	err := row.Scan(
		&tx.ID, &tx.UserID, &categoryID, &typ, &amount, &date,
		&tx.Description, &tx.CreatedAt, &tx.UpdatedAt,
		&catName, &catType, &catIcon, &catColor, &catCreated, &catUpdated,
	)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Type = core.TransactionType(typ)
	tx.Date = core.DateOf(date.Time)
	tx.Amount, err = decimal.NewFromString(amount.String)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount of %s: %w", tx.ID, err)
	}
	if categoryID.Valid {
		tx.CategoryID = categoryID.String
		tx.Category = &core.Category{
			ID:        categoryID.String,
			UserID:    tx.UserID,
			Name:      catName.String,
			Type:      core.TransactionType(catType.String),
			Icon:      core.Icon(catIcon.String),
			Color:     catColor.String,
			CreatedAt: catCreated.Time,
			UpdatedAt: catUpdated.Time,
		}
	}
	return tx, nil
}

func scanCategory(row pgx.Row) (core.Category, error) {
	var (
		c         core.Category
		typ, icon string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &typ, &icon, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	c.Icon = core.Icon(icon)
	return c, nil
}

func dateParam(d core.Date) pgtype.Date {
	return pgtype.Date{Time: d.Time, Valid: !d.IsZero()}
}

func uuidParam(id string) pgtype.Text {
	return pgtype.Text{String: id, Valid: id != ""}
}

var _ ledger.Store = (*Repository)(nil)
