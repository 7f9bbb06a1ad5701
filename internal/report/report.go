// Package report renders whole-collection statistics for the terminal.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"mysphere/internal/analytics"
	"mysphere/internal/core"
	"mysphere/internal/period"
	"mysphere/internal/storage"
)

var (
	accentColor = lipgloss.Color("#4ECDC4")
	subtleColor = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1).
			MarginBottom(1)
)

// Report is a point-in-time snapshot of every tracked collection.
type Report struct {
	GeneratedAt time.Time
	Expenses    analytics.ExpenseStats
	BodyWeight  analytics.BodyWeightStats
	Wholesale   analytics.WholesaleStats
	Workouts    analytics.WorkoutProgress
}

// Collect gathers stats for all kinds concurrently.
func Collect(ctx context.Context, repo *storage.SQLiteRepository, clock period.Clock, workoutStart time.Time, workoutsPerWeek int) (Report, error) {
	now := clock.Now()
	r := Report{
		GeneratedAt: now,
		Workouts:    analytics.Progress(workoutStart, now, workoutsPerWeek),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.Expenses, err = analytics.NewExpenseService(repo.Expenses, clock).Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.BodyWeight, err = analytics.NewBodyWeightService(repo.BodyWeights, clock).Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.Wholesale, err = analytics.NewWholesaleService(repo.Wholesale, clock).Stats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("collect stats: %w", err)
	}
	return r, nil
}

// Render writes r to w as a set of bordered sections.
func Render(w io.Writer, r Report) error {
	sections := []string{
		titleStyle.Render("MySphere report") + " " + labelStyle.Render(r.GeneratedAt.Format("2006-01-02 15:04 MST")),
		section("Expenses", expenseRows(r.Expenses)),
		section("Body weight", bodyWeightRows(r.BodyWeight)),
		section("Wholesale", wholesaleRows(r.Wholesale)),
		section("Workouts", workoutRows(r.Workouts)),
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

type row struct{ label, value string }

func section(title string, rows []row) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.label))
	}
	lines := []string{titleStyle.Render(title)}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len(r.label))
		lines = append(lines, labelStyle.Render(r.label+pad)+"  "+r.value)
	}
	return sectionStyle.Render(strings.Join(lines, "\n"))
}

func expenseRows(s analytics.ExpenseStats) []row {
	if s.Overall.TotalExpenses == 0 {
		return []row{{"Entries", "none yet"}}
	}
	rows := []row{
		{"Entries", fmt.Sprint(s.Overall.TotalExpenses)},
		{"Total", core.FormatINR(s.Overall.TotalAmount)},
		{"Average", core.FormatINR(s.Overall.AverageAmount)},
		{"Range", core.FormatINR(s.Overall.MinAmount) + " to " + core.FormatINR(s.Overall.MaxAmount)},
		{"This month", fmt.Sprintf("%s across %d", core.FormatINR(s.ThisMonth.Total), s.ThisMonth.Count)},
		{"Top category", fmt.Sprintf("%s (%s)", s.Insights.TopSpendingCategory, core.FormatINR(s.Insights.TopCategoryAmount))},
		{"Usual payment", s.Insights.MostUsedPaymentType},
	}
	if s.LatestExpense != nil {
		rows = append(rows, row{"Latest", fmt.Sprintf("%s, %s on %s",
			s.LatestExpense.Title, core.FormatINR(s.LatestExpense.Amount), day(s.LatestExpense.Date))})
	}
	return rows
}

func bodyWeightRows(s analytics.BodyWeightStats) []row {
	if s.TotalEntries == 0 {
		return []row{{"Entries", "none yet"}}
	}
	rows := []row{
		{"Entries", fmt.Sprint(s.TotalEntries)},
		{"Average", core.Fixed(s.AverageWeight, 1)},
		{"Range", core.Fixed(s.MinWeight, 1) + " to " + core.Fixed(s.MaxWeight, 1)},
		{"Change", signed(s.TotalWeightChange)},
	}
	if s.LatestEntry != nil {
		rows = append(rows, row{"Latest", fmt.Sprintf("%s %s on %s",
			core.Fixed(s.LatestEntry.Weight, 1), s.LatestEntry.Unit, day(s.LatestEntry.Date))})
	}
	if s.AverageBMI != nil {
		rows = append(rows, row{"Average BMI", core.Fixed(*s.AverageBMI, 1)})
	}
	return rows
}

func wholesaleRows(s analytics.WholesaleStats) []row {
	if s.TotalBatches == 0 {
		return []row{{"Batches", "none yet"}}
	}
	return []row{
		{"Batches", fmt.Sprint(s.TotalBatches)},
		{"Boxes", fmt.Sprint(s.TotalBoxes)},
		{"Invested", core.FormatINR(s.TotalInvestment)},
		{"Potential profit", core.FormatINR(s.TotalPotentialProfit)},
		{"Potential return", core.FormatINR(s.TotalPotentialReturn)},
		{"Margin", core.Fixed(s.OverallProfitMargin, 2) + "%"},
	}
}

func workoutRows(p analytics.WorkoutProgress) []row {
	return []row{
		{"Since", day(p.StartDate)},
		{"Week", fmt.Sprint(p.CurrentWeek)},
		{"Workouts", fmt.Sprintf("%d (%d this week)", p.TotalWorkouts, p.CurrentWeekWorkouts)},
		{"Completion", core.Fixed(p.CompletionRate, 1) + "%"},
	}
}

func day(t time.Time) string { return t.Format("2006-01-02") }

func signed(v float64) string {
	if v > 0 {
		return "+" + core.Fixed(v, 1)
	}
	return core.Fixed(v, 1)
}
