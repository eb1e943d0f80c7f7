package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	MaxDescriptionLength  = 500
	MaxCategoryNameLength = 100

	// Amounts are stored as NUMERIC(15,2).
	MaxAmountDecimals = 2
)

// MaxAmount is the exclusive upper bound of an amount.
var MaxAmount = decimal.New(1, 13)

type (
	// TransactionType is the direction of a money movement. The sign of an
	// amount is carried here, never by the amount itself.
	TransactionType string

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		CategoryID  string          `json:"category_id,omitempty"` // empty means uncategorized
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
		Category    *Category       `json:"category,omitempty"` // joined by the store
	}

	Category struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Icon      Icon            `json:"icon,omitempty"`
		Color     string          `json:"color,omitempty"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrEmptyName          = errors.New("empty category name")
	ErrNameTooLong        = fmt.Errorf("category name too long (max %d characters)", MaxCategoryNameLength)
	ErrInvalidColor       = errors.New("invalid color")
	ErrUnknownIcon        = errors.New("unknown icon")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseTransactionType accepts "income" or "expense".
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Label is the Indonesian display label used in exports.
func (t TransactionType) Label() string {
	if t == Income {
		return "Pemasukan"
	}
	return "Pengeluaran"
}

func (t TransactionType) String() string {
	return string(t)
}

// HasCategory reports whether the transaction references a category.
func (t Transaction) HasCategory() bool {
	return t.CategoryID != ""
}

// CategoryName returns the joined category name, or fallback when the
// transaction is uncategorized or the category was not joined.
func (t Transaction) CategoryName(fallback string) string {
	if t.Category != nil && t.Category.Name != "" {
		return t.Category.Name
	}
	return fallback
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func ValidateAmount(a decimal.Decimal) error {
	switch {
	case !a.IsPositive():
		return fmt.Errorf("%w: must be greater than 0", ErrInvalidAmount)
	case !a.Truncate(MaxAmountDecimals).Equal(a):
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MaxAmountDecimals)
	case !a.LessThan(MaxAmount):
		return fmt.Errorf("%w: must be less than %s", ErrInvalidAmount, MaxAmount)
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return ErrNameTooLong
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if !hexColor.MatchString(c.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	if _, err := ParseIcon(string(c.Icon)); err != nil {
		return err
	}
	return nil
}
