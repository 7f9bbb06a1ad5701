package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"mysphere/internal/core"
)

// ExpenseFilter narrows an expense listing. Zero fields are ignored.
type ExpenseFilter struct {
	Category    core.Category
	PaymentType core.PaymentType
	From        *time.Time
	To          *time.Time
	// Search matches title or description, case-insensitively.
	Search string
}

// ExpenseStore persists expenses.
type ExpenseStore struct {
	*recordTable[core.Expense]
}

func newExpenseStore(db *sql.DB, loc *time.Location) *ExpenseStore {
	return &ExpenseStore{&recordTable[core.Expense]{
		db:   db,
		loc:  loc,
		kind: core.KindExpense,
		name: "expenses",
		columns: []string{
			"id", "title", "description", "amount", "currency", "payment_type", "category", "date",
			"tags", "is_recurring", "recurring_type", "notes", "created_by", "created_at", "updated_at",
		},
		scan:   scanExpense,
		values: expenseValues,
		sorts: sortColumns{
			"":            "date",
			"date":        "date",
			"amount":      "amount",
			"title":       "title",
			"category":    "category",
			"paymentType": "payment_type",
			"createdAt":   "created_at",
		},
	}}
}

// List returns one page of expenses matching f.
func (s *ExpenseStore) List(ctx context.Context, f ExpenseFilter, req PageRequest) (Page[core.Expense], error) {
	var where filter
	if f.Category != "" {
		where.add("category = ?", string(f.Category))
	}
	if f.PaymentType != "" {
		where.add("payment_type = ?", string(f.PaymentType))
	}
	if f.From != nil {
		where.add("date >= ?", formatTime(*f.From))
	}
	if f.To != nil {
		where.add("date <= ?", formatTime(*f.To))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := containsPattern(search)
		where.add(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return s.list(ctx, where, req)
}

func expenseValues(e core.Expense) ([]any, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return nil, err
	}
	return []any{
		e.ID, e.Title, e.Description, e.Amount, e.Currency, string(e.PaymentType), string(e.Category),
		formatTime(e.Date), tags, boolInt(e.IsRecurring), string(e.RecurringType), e.Notes, e.CreatedBy,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	}, nil
}

func scanExpense(row rowScanner, loc *time.Location) (core.Expense, error) {
	var (
		e                        core.Expense
		paymentType, category    string
		recurringType, tags      string
		date, createdAt, updated string
		isRecurring              int
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Amount, &e.Currency, &paymentType, &category, &date,
		&tags, &isRecurring, &recurringType, &e.Notes, &e.CreatedBy, &createdAt, &updated,
	)
	if err != nil {
		return core.Expense{}, err
	}

	e.PaymentType = core.PaymentType(paymentType)
	e.Category = core.Category(category)
	e.RecurringType = core.RecurringType(recurringType)
	e.IsRecurring = isRecurring != 0
	if e.Tags, err = decodeTags(tags); err != nil {
		return core.Expense{}, err
	}
	if e.Date, err = parseTime(date, loc); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt, loc); err != nil {
		return core.Expense{}, err
	}
	if e.UpdatedAt, err = parseTime(updated, loc); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
