package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

func expense(amount float64, category core.Category, payment core.PaymentType, day int) core.Expense {
	return core.Expense{
		ID:          core.NewID(),
		Title:       string(category),
		Amount:      amount,
		Category:    category,
		PaymentType: payment,
		Date:        at(2025, 3, day),
	}
}

func newExpenseService(records ...core.Expense) *ExpenseService {
	return NewExpenseService(&fakeSource[core.Expense]{records: records}, period.FixedClock(fixedNow))
}

func TestExpenseSummary_MonthOverMonth(t *testing.T) {
	previous := expense(100, "rent", core.PaymentCard, 1)
	previous.Date = at(2025, 2, 10)
	older := expense(999, "rent", core.PaymentCard, 1)
	older.Date = at(2025, 1, 2)

	svc := newExpenseService(
		expense(100, "food", core.PaymentUPI, 3),
		expense(50, "fuel", core.PaymentCash, 10),
		previous,
		older,
	)

	got, err := svc.Summary(context.Background(), PeriodRequest{Token: period.Monthly})
	require.NoError(t, err)

	assert.Equal(t, period.Monthly, got.Period)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got.DateRange.StartDate)
	assert.Equal(t, 150.0, got.Summary.TotalAmount)
	assert.Equal(t, 2, got.Summary.TotalTransactions)
	assert.Equal(t, 75.0, got.Summary.AverageAmount)
	assert.Equal(t, 50.0, got.Summary.MinAmount)
	assert.Equal(t, 100.0, got.Summary.MaxAmount)
	assert.Equal(t, 100.0, got.Summary.PreviousPeriod.Total)
	assert.Equal(t, 50.0, got.Summary.PercentageChange)

	assert.Equal(t, []CategoryTotal{
		{Category: "food", Total: 100, Count: 1, AvgAmount: 100},
		{Category: "fuel", Total: 50, Count: 1, AvgAmount: 50},
	}, got.CategoryBreakdown)
	assert.Equal(t, []PaymentTypeTotal{
		{PaymentType: "upi", Total: 100, Count: 1},
		{PaymentType: "cash", Total: 50, Count: 1},
	}, got.PaymentTypeBreakdown)
	assert.Equal(t, []DailyTotal{
		{Date: "2025-03-03", Total: 100, Count: 1},
		{Date: "2025-03-10", Total: 50, Count: 1},
	}, got.DailyExpenses)
}

func TestExpenseSummary_NoData(t *testing.T) {
	got, err := newExpenseService().Summary(context.Background(), PeriodRequest{Token: period.Weekly})
	require.NoError(t, err)

	assert.Equal(t, ExpenseTotals{}, got.Summary)
	assert.NotNil(t, got.CategoryBreakdown)
	assert.NotNil(t, got.PaymentTypeBreakdown)
	assert.NotNil(t, got.DailyExpenses)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.NotContains(t, string(data), "NaN")
}

func TestExpenseSummary_NoPreviousData(t *testing.T) {
	got, err := newExpenseService(expense(80, "food", core.PaymentCash, 14)).
		Summary(context.Background(), PeriodRequest{Token: period.Daily})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Summary.TotalTransactions, "the 14th is outside today's range")

	got, err = newExpenseService(expense(80, "food", core.PaymentCash, 15)).
		Summary(context.Background(), PeriodRequest{Token: "today"})
	require.NoError(t, err)
	assert.Equal(t, period.Daily, got.Period)
	assert.Equal(t, 80.0, got.Summary.TotalAmount)
	assert.Equal(t, 0.0, got.Summary.PercentageChange)
}

func TestExpenseSummary_SourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := NewExpenseService(&fakeSource[core.Expense]{err: boom}, period.FixedClock(fixedNow))

	_, err := svc.Summary(context.Background(), PeriodRequest{Token: period.Monthly})
	assert.ErrorIs(t, err, boom)
}

func TestExpenseTrends(t *testing.T) {
	var records []core.Expense
	for m := 1; m <= 3; m++ {
		e := expense(float64(m*100), "bills", core.PaymentUPI, 1)
		e.Date = at(2025, time.Month(m), 5)
		records = append(records, e, e)
	}
	old := expense(5, "bills", core.PaymentUPI, 1)
	old.Date = at(2023, 12, 1)
	records = append(records, old)

	got, err := newExpenseService(records...).Trends(context.Background(), TrendRequest{})
	require.NoError(t, err)

	assert.Equal(t, Month, got.Period)
	assert.Equal(t, []ExpenseTrendPoint{
		{Period: "2025-01", Total: 200, Count: 2, Average: 100},
		{Period: "2025-02", Total: 400, Count: 2, Average: 200},
		{Period: "2025-03", Total: 600, Count: 2, Average: 300},
	}, got.Trends)

	limited, err := newExpenseService(records...).Trends(context.Background(), TrendRequest{Months: 12, Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited.Trends, 2)
	assert.Equal(t, "2025-02", limited.Trends[0].Period)
}

func TestExpenseTopCategories(t *testing.T) {
	svc := newExpenseService(
		expense(10, "food", core.PaymentCash, 1),
		expense(300, "rent", core.PaymentUPI, 2),
		expense(40, "fuel", core.PaymentCard, 3),
		expense(35, "food", core.PaymentCash, 4),
	)

	got, err := svc.TopCategories(context.Background(), PeriodRequest{Token: period.Monthly}, 2)
	require.NoError(t, err)
	assert.Equal(t, []CategoryTotal{
		{Category: "rent", Total: 300, Count: 1, AvgAmount: 300},
		{Category: "food", Total: 45, Count: 2, AvgAmount: 22.5},
	}, got.Categories)
}

func TestExpenseStats(t *testing.T) {
	old := expense(500, "rent", core.PaymentUPI, 1)
	old.Date = at(2024, 11, 1)
	svc := newExpenseService(
		old,
		expense(20, "food", core.PaymentCash, 2),
		expense(30, "food", core.PaymentCash, 9),
	)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ExpenseOverall{TotalExpenses: 3, TotalAmount: 550, AverageAmount: 183.33, MinAmount: 20, MaxAmount: 500}, first.Overall)
	assert.Equal(t, PreviousTotals{Total: 50, Count: 2, Average: 25}, first.ThisMonth)
	assert.Equal(t, ExpenseInsights{MostUsedPaymentType: "cash", TopSpendingCategory: "rent", TopCategoryAmount: 500}, first.Insights)
	require.NotNil(t, first.FirstExpense)
	assert.Equal(t, 500.0, first.FirstExpense.Amount)
	assert.Equal(t, 30.0, first.LatestExpense.Amount)

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))
}

func TestExpenseStats_Empty(t *testing.T) {
	got, err := newExpenseService().Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "N/A", got.Insights.MostUsedPaymentType)
	assert.Equal(t, "N/A", got.Insights.TopSpendingCategory)
	assert.Nil(t, got.FirstExpense)
	assert.Equal(t, ExpenseOverall{}, got.Overall)
}
