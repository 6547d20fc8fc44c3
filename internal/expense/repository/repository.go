// Package repository persists expenses as documents in a docstore container.
// Each expense is its own partition, keyed by the string form of its id.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"expenses/internal/docstore"
	"expenses/internal/expense/entity"
	"expenses/internal/expense/filter"
	"expenses/internal/expense/models"
	"expenses/pkg/platform/sentinel"
)

// Repository maps between expenses and stored documents.
type Repository struct {
	container docstore.Container
}

// New constructs a repository over container.
func New(container docstore.Container) *Repository {
	return &Repository{container: container}
}

// GetAll scans the container and returns the expenses matching f, in the
// container's listing order.
func (r *Repository) GetAll(ctx context.Context, f filter.Filter) ([]*models.Expense, error) {
	docs, err := docstore.ListAll[entity.Document](ctx, r.container)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	matched := f.Apply(docs)
	expenses := make([]*models.Expense, 0, len(matched))
	for i := range matched {
		expense, err := entity.ToDomain(&matched[i])
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// Get returns the expense with id, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	doc, err := docstore.ReadItem[entity.Document](ctx, r.container, id.String())
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense %s: %w", id, err)
	}
	return entity.ToDomain(doc)
}

// Insert stores a new expense. A duplicate id fails with sentinel.ErrConflict.
func (r *Repository) Insert(ctx context.Context, expense *models.Expense) error {
	doc, err := entity.ToDocument(expense)
	if err != nil {
		return err
	}
	if err := docstore.CreateItem(ctx, r.container, doc); err != nil {
		return fmt.Errorf("insert expense %s: %w", doc.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of the stored expense and returns the
// result. A missing expense fails with sentinel.ErrNotFound. Concurrent
// updates are last-writer-wins.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, details models.ExpenseDetails) (*models.Expense, error) {
	doc, err := docstore.ReadItem[entity.Document](ctx, r.container, id.String())
	if err != nil {
		return nil, fmt.Errorf("update expense %s: %w", id, err)
	}
	entity.ApplyDetails(doc, details)
	if err := docstore.UpsertItem(ctx, r.container, *doc); err != nil {
		return nil, fmt.Errorf("update expense %s: %w", id, err)
	}
	return entity.ToDomain(doc)
}

// Delete removes the expense. Deleting an absent expense succeeds.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := docstore.DeleteItem(ctx, r.container, id.String()); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return nil
}
