package storage

import (
	"context"
)

const transactionColumns = `
t.id, t.user_id, t.category_id, t.type, t.amount, t.date, t.description, t.created_at, t.updated_at,
c.name, c.type, c.icon, c.color, c.created_at, c.updated_at`

const listTransactions = `-- name: ListTransactions :many
SELECT` + transactionColumns + `
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.user_id = ?1
  AND (?2 = '' OR t.date >= ?2)
  AND (?3 = '' OR t.date <= ?3)
  AND (?4 = '' OR t.type = ?4)
  AND (?5 = '' OR t.category_id = ?5)
ORDER BY t.date DESC, t.created_at DESC
`

type ListTransactionsParams struct {
	UserID     string
	FromDate   string
	ToDate     string
	Type       string
	CategoryID string
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionWithCategory, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.UserID,
		arg.FromDate,
		arg.ToDate,
		arg.Type,
		arg.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionWithCategory
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `-- name: GetTransaction :one
SELECT` + transactionColumns + `
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.id = ? AND t.user_id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id, userID string) (TransactionWithCategory, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id, userID)
	return scanTransaction(row)
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, user_id, category_id, type, amount, date, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.CategoryID,
		arg.Type,
		arg.Amount,
		arg.Date,
		arg.Description,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET category_id = ?, type = ?, amount = ?, date = ?, description = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.CategoryID,
		arg.Type,
		arg.Amount,
		arg.Date,
		arg.Description,
		arg.UpdatedAt,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listUserIDs = `-- name: ListUserIDs :many
SELECT user_id FROM transactions
UNION
SELECT user_id FROM categories
ORDER BY user_id
`

func (q *Queries) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listUserIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		items = append(items, userID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCategories = `-- name: ListCategories :many
SELECT id, user_id, name, type, icon, color, created_at, updated_at
FROM categories
WHERE user_id = ?1 AND (?2 = '' OR type = ?2)
ORDER BY name, id
`

func (q *Queries) ListCategories(ctx context.Context, userID, categoryType string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID, categoryType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Type,
			&i.Icon,
			&i.Color,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `-- name: GetCategory :one
SELECT id, user_id, name, type, icon, color, created_at, updated_at
FROM categories
WHERE id = ? AND user_id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id, userID string) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id, userID)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Type,
		&i.Icon,
		&i.Color,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createCategory = `-- name: CreateCategory :exec
INSERT INTO categories (id, user_id, name, type, icon, color, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, createCategory,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Type,
		arg.Icon,
		arg.Color,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateCategory = `-- name: UpdateCategory :execrows
UPDATE categories
SET name = ?, type = ?, icon = ?, color = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`

func (q *Queries) UpdateCategory(ctx context.Context, arg Category) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCategory,
		arg.Name,
		arg.Type,
		arg.Icon,
		arg.Color,
		arg.UpdatedAt,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const detachCategory = `-- name: DetachCategory :exec
UPDATE transactions
SET category_id = NULL, updated_at = ?
WHERE category_id = ? AND user_id = ?
`

func (q *Queries) DetachCategory(ctx context.Context, updatedAt, categoryID, userID string) error {
	_, err := q.db.ExecContext(ctx, detachCategory, updatedAt, categoryID, userID)
	return err
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countCategories = `-- name: CountCategories :one
SELECT COUNT(*) FROM categories WHERE user_id = ?
`

func (q *Queries) CountCategories(ctx context.Context, userID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategories, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (TransactionWithCategory, error) {
	var i TransactionWithCategory
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CategoryID,
		&i.Type,
		&i.Amount,
		&i.Date,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CategoryName,
		&i.CategoryType,
		&i.CategoryIcon,
		&i.CategoryColor,
		&i.CategoryCreatedAt,
		&i.CategoryUpdatedAt,
	)
	return i, err
}
