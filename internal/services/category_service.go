package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/report"
)

const DefaultMaxCategories = 50

// CategoryService manages a user's categories. Category names are joined
// into transactions, so every write drops the user's snapshot.
type CategoryService struct {
	store         ledger.Store
	snapshots     *Snapshots
	maxCategories int
}

func NewCategoryService(store ledger.Store, snapshots *Snapshots, maxCategories int) *CategoryService {
	if maxCategories <= 0 {
		maxCategories = DefaultMaxCategories
	}
	return &CategoryService{store: store, snapshots: snapshots, maxCategories: maxCategories}
}

// List returns the user's categories by name; an empty t lists both types.
func (s *CategoryService) List(ctx context.Context, userID string, t core.TransactionType) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Create(ctx context.Context, userID string, in ledger.CategoryInput) (core.Category, error) {
	icon, err := core.ParseIcon(string(in.Icon))
	if err != nil {
		return core.Category{}, err
	}
	in.Icon = icon
	if in.Color == "" {
		in.Color = core.CategoryColors[0]
	}
	if err := (core.Category{Name: in.Name, Type: in.Type, Icon: in.Icon, Color: in.Color}).Validate(); err != nil {
		return core.Category{}, err
	}

	n, err := s.store.CountCategories(ctx, userID)
	if err != nil {
		return core.Category{}, fmt.Errorf("count categories: %w", err)
	}
	if n >= s.maxCategories {
		return core.Category{}, fmt.Errorf("%w (max %d)", ledger.ErrCategoryLimit, s.maxCategories)
	}

	c, err := s.store.CreateCategory(ctx, userID, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.logWrite(ctx, applog.OpCreate, userID, c.ID)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, p ledger.CategoryPatch) (core.Category, error) {
	if p.Icon != nil {
		icon, err := core.ParseIcon(string(*p.Icon))
		if err != nil {
			return core.Category{}, err
		}
		p.Icon = &icon
	}

	c, err := s.store.UpdateCategory(ctx, userID, id, p)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.snapshots.Invalidate(userID)
	s.logWrite(ctx, applog.OpUpdate, userID, c.ID)
	return c, nil
}

// Delete removes the category; its transactions become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.snapshots.Invalidate(userID)
	s.logWrite(ctx, applog.OpDelete, userID, id)
	return nil
}

// Usage reports how many transactions reference each category.
func (s *CategoryService) Usage(ctx context.Context, userID string) ([]core.CategoryUsage, error) {
	var (
		cats []core.Category
		txs  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.store.ListCategories(gctx, userID, "")
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.snapshots.Transactions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("category usage: %w", err)
	}
	return report.CategoryUsage(cats, txs), nil
}

func (s *CategoryService) logWrite(ctx context.Context, op, userID, id string) {
	slog.InfoContext(ctx, "Category saved",
		applog.NewFields().
			WithComponent(applog.ComponentCategory).
			WithOperation(op).
			WithUser(userID).
			WithCategory(id).
			ToSlice()...)
}
