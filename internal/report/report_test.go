package report

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/core"
	"mysphere/internal/period"
	"mysphere/internal/services"
	"mysphere/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func TestCollectAndRender(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := period.FixedClock(now)

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	deps := services.Deps{Clock: clock}
	_, err = services.NewExpenseService(repo.Expenses, deps).Create(ctx, core.ExpenseInput{
		Title:       ptr("Rent"),
		Amount:      ptr(150000.0),
		PaymentType: ptr("card"),
		Category:    ptr("rent"),
		Date:        ptr("2025-03-01"),
	})
	require.NoError(t, err)
	_, err = services.NewWholesaleService(repo.Wholesale, deps).Create(ctx, core.WholesaleInput{
		InvestmentAmount: ptr(1000.0),
		BoxesPurchased:   ptr(50),
	})
	require.NoError(t, err)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := Collect(ctx, repo, clock, start, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Expenses.Overall.TotalExpenses)
	assert.Equal(t, 1, r.Wholesale.TotalBatches)
	assert.Equal(t, 0, r.BodyWeight.TotalEntries)
	assert.Equal(t, 41, r.Workouts.TotalWorkouts)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "MySphere report")
	assert.Contains(t, out, "₹1,50,000.00")
	assert.Contains(t, out, "Rent, ₹1,50,000.00 on 2025-03-01")
	assert.Contains(t, out, "none yet", "empty body weight section")
	assert.Contains(t, out, "41 (1 this week)")
}
