package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/amqp"
	"mysphere/internal/cache"
	"mysphere/internal/core"
	"mysphere/internal/period"
	"mysphere/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.RecordEvent
	err    error
}

func (p *recordingPublisher) PublishRecordEvent(_ context.Context, e *amqp.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return p.err
}

func (p *recordingPublisher) ops() []amqp.Operation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Operation, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Op)
	}
	return out
}

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func validExpense() core.ExpenseInput {
	return core.ExpenseInput{
		Title:       ptr("Groceries"),
		Amount:      ptr(1234.567),
		PaymentType: ptr("upi"),
		Category:    ptr("groceries"),
		Date:        ptr("2025-03-14"),
		Tags:        &[]string{"weekly", " "},
	}
}

func TestExpenseService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	clock := period.FixedClock(testNow)
	svc := NewExpenseService(newRepo(t).Expenses, Deps{Clock: clock, Publisher: pub})

	created, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)
	_, err = core.ParseID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1234.57, created.Amount)
	assert.Equal(t, core.CurrencyINR, created.Currency)
	assert.Equal(t, []string{"weekly"}, created.Tags)
	assert.True(t, testNow.Equal(created.CreatedAt))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	updated, err := svc.Update(ctx, created.ID, core.ExpenseInput{Amount: ptr(99.0)})
	require.NoError(t, err)
	assert.Equal(t, 99.0, updated.Amount)
	assert.Equal(t, "Groceries", updated.Title, "untouched fields survive a partial update")
	assert.True(t, testNow.Equal(updated.CreatedAt))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Equal(t, []amqp.Operation{amqp.OpCreated, amqp.OpUpdated, amqp.OpDeleted}, pub.ops())
	for _, e := range pub.events {
		assert.Equal(t, core.KindExpense, e.Kind)
		assert.Equal(t, created.ID, e.ID)
	}
}

func TestExpenseService_Validation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewExpenseService(newRepo(t).Expenses, Deps{Clock: period.FixedClock(testNow), Publisher: pub})

	in := validExpense()
	in.Amount = ptr(-5.0)
	_, err := svc.Create(ctx, in)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Errors[0].Field)
	assert.Empty(t, pub.ops(), "rejected writes are not announced")

	created, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)

	// The merged record is validated, not just the patch.
	_, err = svc.Update(ctx, created.ID, core.ExpenseInput{IsRecurring: ptr(true)})
	require.ErrorAs(t, err, &verr)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRecurring, "a rejected update leaves the row alone")
}

func TestRecordService_MalformedAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	svc := NewWholesaleService(newRepo(t).Wholesale, Deps{Clock: period.FixedClock(testNow)})

	_, err := svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, core.ErrMalformedID)

	err = svc.Delete(ctx, "123")
	assert.ErrorIs(t, err, core.ErrMalformedID)

	_, err = svc.Update(ctx, core.NewID(), core.WholesaleInput{Notes: ptr("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = svc.Delete(ctx, core.NewID())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecordService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewBodyWeightService(newRepo(t).BodyWeights, Deps{Clock: period.FixedClock(testNow), Publisher: pub})

	created, err := svc.Create(ctx, core.BodyWeightInput{Weight: ptr(72.34)})
	require.NoError(t, err)
	assert.Equal(t, 72.3, created.Weight)
	assert.Equal(t, core.UnitKg, created.Unit)
	assert.True(t, testNow.Equal(created.Date), "date defaults to now")

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, pub.ops(), 1)
}

func TestRecordService_InvalidatesAnalyticsCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewLRUCache[any](16, time.Hour)
	c.Set(cache.Key(core.KindWholesale, "stats", nil), "stale")
	c.Set(cache.Key(core.KindExpense, "stats", nil), "keep")

	svc := NewWholesaleService(newRepo(t).Wholesale, Deps{Clock: period.FixedClock(testNow), Cache: c})
	batch, err := svc.Create(ctx, core.WholesaleInput{InvestmentAmount: ptr(1000.0), BoxesPurchased: ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, float64(core.DefaultProfitPerBox), batch.ProfitPerBox)

	_, found := c.Get(cache.Key(core.KindWholesale, "stats", nil))
	assert.False(t, found)
	_, found = c.Get(cache.Key(core.KindExpense, "stats", nil))
	assert.True(t, found)
}

func TestRecordService_List(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	svc := NewWholesaleService(repo.Wholesale, Deps{Clock: period.FixedClock(testNow)})

	for _, inv := range []float64{100, 200, 300} {
		_, err := svc.Create(ctx, core.WholesaleInput{InvestmentAmount: ptr(inv), BoxesPurchased: ptr(10)})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, storage.WholesaleFilter{MinInvestment: ptr(150.0)}, storage.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages())
	assert.Len(t, page.Items, 1)
}
