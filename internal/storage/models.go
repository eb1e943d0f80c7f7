package storage

import "database/sql"

type Category struct {
	ID        string
	UserID    string
	Name      string
	Type      string
	Icon      string
	Color     string
	CreatedAt string
	UpdatedAt string
}

type Transaction struct {
	ID          string
	UserID      string
	CategoryID  sql.NullString
	Type        string
	Amount      string
	Date        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// TransactionWithCategory is a transaction row left-joined with its category.
type TransactionWithCategory struct {
	Transaction
	CategoryName      sql.NullString
	CategoryType      sql.NullString
	CategoryIcon      sql.NullString
	CategoryColor     sql.NullString
	CategoryCreatedAt sql.NullString
	CategoryUpdatedAt sql.NullString
}
