package services

import (
	"context"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/storage"
)

// ExpenseService manages the expense collection.
type ExpenseService struct {
	recordService[core.Expense, core.ExpenseInput]
	store *storage.ExpenseStore
}

func NewExpenseService(store *storage.ExpenseStore, deps Deps) *ExpenseService {
	return &ExpenseService{
		recordService: recordService[core.Expense, core.ExpenseInput]{
			kind:  core.KindExpense,
			store: store,
			deps:  deps,
			build: core.NewExpense,
			patch: core.Expense.Patch,
			stamp: func(e core.Expense, id string, now time.Time) core.Expense {
				e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
				return e
			},
			touch: func(e core.Expense, now time.Time) core.Expense {
				e.UpdatedAt = now
				return e
			},
		},
		store: store,
	}
}

func (s *ExpenseService) List(ctx context.Context, f storage.ExpenseFilter, page storage.PageRequest) (storage.Page[core.Expense], error) {
	return s.store.List(ctx, f, page)
}
