package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/amqp"
	"mysphere/internal/core"
	"mysphere/internal/period"
	"mysphere/internal/services"
	"mysphere/internal/sheets"
	"mysphere/internal/sheets/memory"
	"mysphere/internal/storage"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*storage.SQLiteRepository, *memory.Store, *SyncWorker) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	journal := memory.New(nil)
	return repo, journal, NewSyncWorker(repo, journal, period.FixedClock(testNow))
}

func event(kind core.Kind, id string, op amqp.Operation) *amqp.RecordEvent {
	return &amqp.RecordEvent{Kind: kind, ID: id, Op: op, OccurredAt: testNow}
}

func TestSyncWorker_HandleCreated(t *testing.T) {
	ctx := context.Background()
	repo, journal, w := setup(t)

	svc := services.NewBodyWeightService(repo.BodyWeights, services.Deps{Clock: period.FixedClock(testNow)})
	entry, err := svc.Create(ctx, core.BodyWeightInput{Weight: ptr(72.5), Date: ptr("2025-03-14")})
	require.NoError(t, err)

	require.NoError(t, w.Handle(ctx, event(core.KindBodyWeight, entry.ID, amqp.OpCreated)))

	rows := journal.Rows(sheets.TabBodyWeight)
	require.Len(t, rows, 2, "header plus one row")
	assert.Equal(t, sheets.Headers()[sheets.TabBodyWeight], rows[0])
	assert.Equal(t, []any{"2025-03-15T12:00:00Z", "created", entry.ID}, rows[1][:3])
	assert.Equal(t, 72.5, rows[1][4])

	// Every tab was created up front.
	assert.Len(t, journal.Rows(sheets.TabExpenses), 1)
	assert.Len(t, journal.Rows(sheets.TabWholesale), 1)
}

func TestSyncWorker_HandleDeleted(t *testing.T) {
	ctx := context.Background()
	_, journal, w := setup(t)
	id := core.NewID()

	require.NoError(t, w.Handle(ctx, event(core.KindWholesale, id, amqp.OpDeleted)))

	rows := journal.Rows(sheets.TabWholesale)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"2025-03-15T12:00:00Z", "deleted", id}, rows[1])
}

func TestSyncWorker_SkipsVanishedRecords(t *testing.T) {
	ctx := context.Background()
	_, journal, w := setup(t)

	require.NoError(t, w.Handle(ctx, event(core.KindExpense, core.NewID(), amqp.OpUpdated)))
	assert.Len(t, journal.Rows(sheets.TabExpenses), 1, "only the header")
}

func TestSyncWorker_UnknownKind(t *testing.T) {
	_, _, w := setup(t)
	err := w.Handle(context.Background(), event(core.Kind("income"), core.NewID(), amqp.OpCreated))
	assert.Error(t, err)
}

type failingJournal struct {
	*memory.Store
	ensureErr error
	ensures   int
}

func (f *failingJournal) EnsureTabs(ctx context.Context, headers map[string][]any) error {
	f.ensures++
	if f.ensureErr != nil {
		return f.ensureErr
	}
	return f.Store.EnsureTabs(ctx, headers)
}

func TestSyncWorker_RetriesTabSetup(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)
	journal := &failingJournal{Store: memory.New(nil), ensureErr: errors.New("quota exceeded")}
	w := NewSyncWorker(repo, journal, period.FixedClock(testNow))
	id := core.NewID()

	err := w.Handle(ctx, event(core.KindExpense, id, amqp.OpDeleted))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	journal.ensureErr = nil
	require.NoError(t, w.Handle(ctx, event(core.KindExpense, id, amqp.OpDeleted)))
	require.NoError(t, w.Handle(ctx, event(core.KindExpense, id, amqp.OpDeleted)))
	assert.Equal(t, 2, journal.ensures)
	assert.Len(t, journal.Rows(sheets.TabExpenses), 3)
}

func TestSyncWorker_Backfill(t *testing.T) {
	ctx := context.Background()
	repo, journal, w := setup(t)
	deps := services.Deps{Clock: period.FixedClock(testNow)}

	wholesale := services.NewWholesaleService(repo.Wholesale, deps)
	older, err := wholesale.Create(ctx, core.WholesaleInput{
		InvestmentAmount: ptr(500.0), BoxesPurchased: ptr(10), Date: ptr("2025-03-01"),
	})
	require.NoError(t, err)
	newer, err := wholesale.Create(ctx, core.WholesaleInput{
		InvestmentAmount: ptr(1000.0), BoxesPurchased: ptr(50), Date: ptr("2025-03-10"),
	})
	require.NoError(t, err)

	n, err := w.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := journal.Rows(sheets.TabWholesale)
	require.Len(t, rows, 3)
	assert.Equal(t, OpSnapshot, rows[1][1])
	assert.Equal(t, older.ID, rows[1][2])
	assert.Equal(t, newer.ID, rows[2][2])
}
