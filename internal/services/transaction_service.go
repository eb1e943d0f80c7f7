package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pengluaran/internal/amqp"
	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
)

// EventPublisher announces confirmed transaction writes.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, evt *amqp.TransactionEvent) error
}

// TransactionService validates transaction writes, stores them, keeps the
// user's snapshot current and announces the change.
type TransactionService struct {
	store     ledger.Store
	snapshots *Snapshots
	publisher EventPublisher
}

// NewTransactionService wires the service. publisher may be nil, in which
// case no events are sent.
func NewTransactionService(store ledger.Store, snapshots *Snapshots, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		snapshots: snapshots,
		publisher: publisher,
	}
}

// List returns the user's transactions passing f, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, f ledger.Filter) ([]core.Transaction, error) {
	all, err := s.snapshots.Transactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *TransactionService) Create(ctx context.Context, userID string, in ledger.TransactionInput) (core.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	candidate := core.Transaction{
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		CategoryID:  in.CategoryID,
		Description: in.Description,
	}
	if err := candidate.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID, in.Type); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.store.CreateTransaction(ctx, userID, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.snapshots.Apply(userID, ledger.Change{Op: ledger.OpUpsert, Transaction: tx, At: tx.UpdatedAt})
	s.logWrite(ctx, applog.OpCreate, tx)
	s.publish(ctx, amqp.OpCreated, userID, tx.ID, tx.UpdatedAt)
	return tx, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, p ledger.TransactionPatch) (core.Transaction, error) {
	if p.Description != nil {
		trimmed := strings.TrimSpace(*p.Description)
		p.Description = &trimmed
	}

	cur, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	next := p.Apply(cur)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, userID, next.CategoryID, next.Type); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.store.UpdateTransaction(ctx, userID, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.snapshots.Apply(userID, ledger.Change{Op: ledger.OpUpsert, Transaction: tx, At: tx.UpdatedAt})
	s.logWrite(ctx, applog.OpUpdate, tx)
	s.publish(ctx, amqp.OpUpdated, userID, tx.ID, tx.UpdatedAt)
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	at, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.snapshots.Apply(userID, ledger.Change{Op: ledger.OpDelete, Transaction: core.Transaction{ID: id}, At: at})
	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldComponent, applog.ComponentTransaction,
		applog.FieldUserID, userID,
		applog.FieldTransactionID, id)
	s.publish(ctx, amqp.OpDeleted, userID, id, at)
	return nil
}

// checkCategory verifies that categoryID belongs to the user and has type t.
// An empty id means uncategorized and always passes.
func (s *TransactionService) checkCategory(ctx context.Context, userID, categoryID string, t core.TransactionType) error {
	if categoryID == "" {
		return nil
	}
	cat, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if cat.Type != t {
		return fmt.Errorf("category %q is %s: %w", cat.Name, cat.Type, ledger.ErrCategoryTypeMismatch)
	}
	return nil
}

func (s *TransactionService) logWrite(ctx context.Context, op string, tx core.Transaction) {
	fields := applog.NewFields().
		WithComponent(applog.ComponentTransaction).
		WithOperation(op).
		WithUser(tx.UserID).
		WithTransaction(tx.ID, tx.Type.String(), core.PlainAmount(tx.Amount), tx.Date.String())
	if tx.CategoryID != "" {
		fields.WithCategory(tx.CategoryID)
	}
	slog.InfoContext(ctx, "Transaction saved", fields.ToSlice()...)
}

// publish sends the event; failures are logged since the write already
// succeeded.
func (s *TransactionService) publish(ctx context.Context, op amqp.EventOp, userID, id string, updatedAt time.Time) {
	if s.publisher == nil {
		return
	}
	evt := amqp.NewTransactionEvent(op, userID, id, updatedAt)
	if err := s.publisher.PublishTransactionEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldComponent, applog.ComponentAMQP,
			applog.FieldTransactionID, id,
			"op", op,
			applog.FieldError, err)
	}
}

// IsValidation reports whether err is a rejected input rather than a
// storage failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidType, core.ErrInvalidDate,
		core.ErrEmptyName, core.ErrNameTooLong, core.ErrDescriptionTooLong,
		core.ErrInvalidColor, core.ErrUnknownIcon,
		ledger.ErrCategoryTypeMismatch, ledger.ErrCategoryLimit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
