package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

const (
	defaultExpenseTrendMonths = 12
	defaultTopCategories      = 10
	notAvailable              = "N/A"
)

type (
	ExpenseSummary struct {
		Period               period.Token       `json:"period"`
		DateRange            DateRange          `json:"dateRange"`
		Summary              ExpenseTotals      `json:"summary"`
		CategoryBreakdown    []CategoryTotal    `json:"categoryBreakdown"`
		PaymentTypeBreakdown []PaymentTypeTotal `json:"paymentTypeBreakdown"`
		DailyExpenses        []DailyTotal       `json:"dailyExpenses"`
	}

	ExpenseTotals struct {
		TotalAmount       float64        `json:"totalAmount"`
		TotalTransactions int            `json:"totalTransactions"`
		AverageAmount     float64        `json:"averageAmount"`
		MinAmount         float64        `json:"minAmount"`
		MaxAmount         float64        `json:"maxAmount"`
		PercentageChange  float64        `json:"percentageChange"`
		PreviousPeriod    PreviousTotals `json:"previousPeriod"`
	}

	PreviousTotals struct {
		Total   float64 `json:"total"`
		Count   int     `json:"count"`
		Average float64 `json:"average"`
	}

	CategoryTotal struct {
		Category  string  `json:"category"`
		Total     float64 `json:"total"`
		Count     int     `json:"count"`
		AvgAmount float64 `json:"avgAmount"`
	}

	PaymentTypeTotal struct {
		PaymentType string  `json:"paymentType"`
		Total       float64 `json:"total"`
		Count       int     `json:"count"`
	}

	DailyTotal struct {
		Date  string  `json:"date"`
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	ExpenseTrends struct {
		Period Granularity         `json:"period"`
		Trends []ExpenseTrendPoint `json:"trends"`
	}

	ExpenseTrendPoint struct {
		Period  string  `json:"period"`
		Total   float64 `json:"total"`
		Count   int     `json:"count"`
		Average float64 `json:"average"`
	}

	TopCategories struct {
		Period     period.Token    `json:"period"`
		DateRange  DateRange       `json:"dateRange"`
		Categories []CategoryTotal `json:"categories"`
	}

	ExpenseStats struct {
		Overall       ExpenseOverall   `json:"overall"`
		ThisMonth     PreviousTotals   `json:"thisMonth"`
		Insights      ExpenseInsights  `json:"insights"`
		FirstExpense  *ExpenseSnapshot `json:"firstExpense"`
		LatestExpense *ExpenseSnapshot `json:"latestExpense"`
	}

	ExpenseOverall struct {
		TotalExpenses int     `json:"totalExpenses"`
		TotalAmount   float64 `json:"totalAmount"`
		AverageAmount float64 `json:"averageAmount"`
		MinAmount     float64 `json:"minAmount"`
		MaxAmount     float64 `json:"maxAmount"`
	}

	ExpenseInsights struct {
		MostUsedPaymentType string  `json:"mostUsedPaymentType"`
		TopSpendingCategory string  `json:"topSpendingCategory"`
		TopCategoryAmount   float64 `json:"topCategoryAmount"`
	}

	ExpenseSnapshot struct {
		Title  string    `json:"title"`
		Amount float64   `json:"amount"`
		Date   time.Time `json:"date"`
	}
)

var expenseAmount = Field("amount", func(e core.Expense) float64 { return e.Amount })

// ExpenseService computes spending analytics. Periods are whole calendar units.
type ExpenseService struct {
	source Source[core.Expense]
	clock  period.Clock
}

func NewExpenseService(source Source[core.Expense], clock period.Clock) *ExpenseService {
	return &ExpenseService{source: source, clock: clock}
}

// Summary totals the requested period, compares it with the preceding window of equal
// length and breaks the period down by category, payment type and day.
func (s *ExpenseService) Summary(ctx context.Context, req PeriodRequest) (ExpenseSummary, error) {
	now := s.clock.Now()
	current := req.resolve(now, period.Calendar)
	previous := period.Preceding(current)

	records, prevRecords, err := queryBoth(ctx, s.source, &current, &previous)
	if err != nil {
		return ExpenseSummary{}, fmt.Errorf("expense summary: %w", err)
	}

	metrics := []Metric[core.Expense]{expenseAmount}
	cur := Total(records, Query[core.Expense]{Range: &current, Metrics: metrics}).Stat("amount")
	prev := Total(prevRecords, Query[core.Expense]{Range: &previous, Metrics: metrics}).Stat("amount")

	out := ExpenseSummary{
		Period:    req.token(),
		DateRange: dateRange(current),
		Summary: ExpenseTotals{
			TotalAmount:       round2(cur.Sum),
			TotalTransactions: cur.Count,
			AverageAmount:     round2(cur.Avg()),
			MinAmount:         round2(cur.Min),
			MaxAmount:         round2(cur.Max),
			PercentageChange:  core.PercentageChange(cur.Sum, prev.Sum),
			PreviousPeriod: PreviousTotals{
				Total:   round2(prev.Sum),
				Count:   prev.Count,
				Average: round2(prev.Avg()),
			},
		},
		CategoryBreakdown:    categoryTotals(records, &current, 0),
		PaymentTypeBreakdown: []PaymentTypeTotal{},
		DailyExpenses:        []DailyTotal{},
	}

	byPayment := Aggregate(records, Query[core.Expense]{
		Range:   &current,
		GroupBy: func(e core.Expense) Key { return LabelKey(string(e.PaymentType)) },
		Metrics: metrics,
	})
	for _, b := range TopBy(byPayment, "amount", BySum, 0) {
		out.PaymentTypeBreakdown = append(out.PaymentTypeBreakdown, PaymentTypeTotal{
			PaymentType: b.Key.Label,
			Total:       round2(b.Stat("amount").Sum),
			Count:       b.Count,
		})
	}

	loc := now.Location()
	daily := Aggregate(records, Query[core.Expense]{
		Range:   &current,
		GroupBy: func(e core.Expense) Key { return CalendarKey(e.Date, Day, loc) },
		Metrics: metrics,
	})
	for _, b := range daily {
		out.DailyExpenses = append(out.DailyExpenses, DailyTotal{
			Date:  b.Key.String(),
			Total: round2(b.Stat("amount").Sum),
			Count: b.Count,
		})
	}

	return out, nil
}

func categoryTotals(records []core.Expense, r *period.Range, limit int) []CategoryTotal {
	buckets := Aggregate(records, Query[core.Expense]{
		Range:   r,
		GroupBy: func(e core.Expense) Key { return LabelKey(string(e.Category)) },
		Metrics: []Metric[core.Expense]{expenseAmount},
	})
	out := []CategoryTotal{}
	for _, b := range TopBy(buckets, "amount", BySum, limit) {
		amount := b.Stat("amount")
		out = append(out, CategoryTotal{
			Category:  b.Key.Label,
			Total:     round2(amount.Sum),
			Count:     b.Count,
			AvgAmount: round2(amount.Avg()),
		})
	}
	return out
}

// Trends buckets spending over the last req.Months calendar months (12 by default).
func (s *ExpenseService) Trends(ctx context.Context, req TrendRequest) (ExpenseTrends, error) {
	now := s.clock.Now()
	g := req.Granularity
	if g == "" {
		g = Month
	}
	months := req.Months
	if months <= 0 {
		months = defaultExpenseTrendMonths
	}
	window := period.MonthsBack(now, months)

	records, err := s.source.Query(ctx, &window)
	if err != nil {
		return ExpenseTrends{}, fmt.Errorf("expense trends: %w", err)
	}

	loc := now.Location()
	buckets := Aggregate(records, Query[core.Expense]{
		Range:   &window,
		GroupBy: func(e core.Expense) Key { return CalendarKey(e.Date, g, loc) },
		Metrics: []Metric[core.Expense]{expenseAmount},
	})

	out := ExpenseTrends{Period: g, Trends: []ExpenseTrendPoint{}}
	for _, b := range MostRecent(buckets, req.Limit) {
		amount := b.Stat("amount")
		out.Trends = append(out.Trends, ExpenseTrendPoint{
			Period:  b.Key.String(),
			Total:   round2(amount.Sum),
			Count:   b.Count,
			Average: round2(amount.Avg()),
		})
	}
	return out, nil
}

// TopCategories ranks categories by total spend within the period.
func (s *ExpenseService) TopCategories(ctx context.Context, req PeriodRequest, limit int) (TopCategories, error) {
	if limit <= 0 {
		limit = defaultTopCategories
	}
	current := req.resolve(s.clock.Now(), period.Calendar)

	records, err := s.source.Query(ctx, &current)
	if err != nil {
		return TopCategories{}, fmt.Errorf("expense top categories: %w", err)
	}
	return TopCategories{
		Period:     req.token(),
		DateRange:  dateRange(current),
		Categories: categoryTotals(records, &current, limit),
	}, nil
}

// Stats summarizes the whole collection alongside the current calendar month.
func (s *ExpenseService) Stats(ctx context.Context) (ExpenseStats, error) {
	month := period.Resolve(period.Request{Token: period.Monthly}, s.clock.Now(), period.Calendar)

	var all, thisMonth []core.Expense
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.source.Query(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		thisMonth, err = s.source.Query(gctx, &month)
		return err
	})
	if err := g.Wait(); err != nil {
		return ExpenseStats{}, fmt.Errorf("expense stats: %w", err)
	}

	metrics := []Metric[core.Expense]{expenseAmount}
	overall := Total(all, Query[core.Expense]{Metrics: metrics}).Stat("amount")
	monthly := Total(thisMonth, Query[core.Expense]{Range: &month, Metrics: metrics}).Stat("amount")

	out := ExpenseStats{
		Overall: ExpenseOverall{
			TotalExpenses: overall.Count,
			TotalAmount:   round2(overall.Sum),
			AverageAmount: round2(overall.Avg()),
			MinAmount:     round2(overall.Min),
			MaxAmount:     round2(overall.Max),
		},
		ThisMonth: PreviousTotals{
			Total:   round2(monthly.Sum),
			Count:   monthly.Count,
			Average: round2(monthly.Avg()),
		},
		Insights: ExpenseInsights{
			MostUsedPaymentType: notAvailable,
			TopSpendingCategory: notAvailable,
		},
	}

	payments := Aggregate(all, Query[core.Expense]{
		GroupBy: func(e core.Expense) Key { return LabelKey(string(e.PaymentType)) },
	})
	if top := TopBy(payments, "", ByCount, 1); len(top) == 1 {
		out.Insights.MostUsedPaymentType = top[0].Key.Label
	}
	if top := categoryTotals(all, nil, 1); len(top) == 1 {
		out.Insights.TopSpendingCategory = top[0].Category
		out.Insights.TopCategoryAmount = top[0].Total
	}

	if len(all) > 0 {
		sorted := sortedByDate(all)
		out.FirstExpense = expenseSnapshot(sorted[0])
		out.LatestExpense = expenseSnapshot(sorted[len(sorted)-1])
	}
	return out, nil
}

func expenseSnapshot(e core.Expense) *ExpenseSnapshot {
	return &ExpenseSnapshot{Title: e.Title, Amount: e.Amount, Date: e.Date}
}
