package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func validExpenseInput() ExpenseInput {
	return ExpenseInput{
		Title:       ptr("Groceries"),
		Amount:      ptr(249.999),
		PaymentType: ptr("upi"),
		Category:    ptr("groceries"),
		Date:        ptr("2025-03-10"),
		Tags:        &[]string{" weekly ", "", "market"},
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	names := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		names = append(names, fe.Field)
	}
	return names
}

func TestNewExpense(t *testing.T) {
	e, err := NewExpense(validExpenseInput(), testNow)
	require.NoError(t, err)

	assert.Equal(t, "Groceries", e.Title)
	assert.Equal(t, 250.0, e.Amount)
	assert.Equal(t, CurrencyINR, e.Currency)
	assert.Equal(t, PaymentUPI, e.PaymentType)
	assert.Equal(t, []string{"weekly", "market"}, e.Tags)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), e.Date)
}

func TestNewExpense_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ExpenseInput)
		fields []string
	}{
		{"missing required fields", func(in *ExpenseInput) { *in = ExpenseInput{} },
			[]string{"title", "amount", "paymentType", "category", "date"}},
		{"negative amount", func(in *ExpenseInput) { in.Amount = ptr(-1.0) }, []string{"amount"}},
		{"unknown category", func(in *ExpenseInput) { in.Category = ptr("gadgets") }, []string{"category"}},
		{"unknown payment type", func(in *ExpenseInput) { in.PaymentType = ptr("cheque") }, []string{"paymentType"}},
		{"future date", func(in *ExpenseInput) { in.Date = ptr("2025-03-16") }, []string{"date"}},
		{"bad date", func(in *ExpenseInput) { in.Date = ptr("yesterday") }, []string{"date"}},
		{"wrong currency", func(in *ExpenseInput) { in.Currency = ptr("usd") }, []string{"currency"}},
		{"long tag", func(in *ExpenseInput) { in.Tags = &[]string{"this-tag-is-definitely-longer-than-thirty"} }, []string{"tags"}},
		{"recurring without type", func(in *ExpenseInput) { in.IsRecurring = ptr(true) }, []string{"recurringType"}},
		{"type without recurring", func(in *ExpenseInput) { in.RecurringType = ptr("monthly") }, []string{"recurringType"}},
		{"bad recurring type", func(in *ExpenseInput) {
			in.IsRecurring = ptr(true)
			in.RecurringType = ptr("hourly")
		}, []string{"recurringType"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validExpenseInput()
			tt.mutate(&in)
			_, err := NewExpense(in, testNow)
			require.Error(t, err)
			assert.ElementsMatch(t, tt.fields, fieldNames(t, err))
		})
	}
}

func TestExpense_Patch(t *testing.T) {
	e, err := NewExpense(validExpenseInput(), testNow)
	require.NoError(t, err)

	updated, err := e.Patch(ExpenseInput{
		Amount:        ptr(10.0),
		IsRecurring:   ptr(true),
		RecurringType: ptr("monthly"),
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.Amount)
	assert.Equal(t, "Groceries", updated.Title)
	assert.Equal(t, RecurringMonthly, updated.RecurringType)

	cleared, err := updated.Patch(ExpenseInput{IsRecurring: ptr(false)}, testNow)
	require.NoError(t, err)
	assert.Empty(t, cleared.RecurringType)

	_, err = e.Patch(ExpenseInput{Title: ptr("   ")}, testNow)
	assert.Equal(t, []string{"title"}, fieldNames(t, err))
}

func TestExpense_MarshalJSON(t *testing.T) {
	e := Expense{ID: "x", Title: "Rent", Amount: 25000, Currency: CurrencyINR}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "₹25,000.00", out["formattedAmount"])
	assert.Equal(t, []any{}, out["tags"])
	assert.Equal(t, "Rent", out["title"])
}

func TestParseID(t *testing.T) {
	id := NewID()
	got, err := ParseID(id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrMalformedID)
}
