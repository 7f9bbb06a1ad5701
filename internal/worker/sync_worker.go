package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mysphere/internal/amqp"
	"mysphere/internal/core"
	"mysphere/internal/log"
	"mysphere/internal/period"
	"mysphere/internal/sheets"
	"mysphere/internal/storage"
)

// OpSnapshot marks rows written by Backfill rather than by a live change.
const OpSnapshot = "snapshot"

// loader fetches one record of a given kind by id.
type loader func(ctx context.Context, id string) (core.Record, error)

// lister returns every record of a given kind, newest first.
type lister func(ctx context.Context) ([]core.Record, error)

func asLoader[R core.Record](get func(context.Context, string) (R, error)) loader {
	return func(ctx context.Context, id string) (core.Record, error) {
		rec, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func asLister[R core.Record](latest func(context.Context, int) ([]R, error)) lister {
	return func(ctx context.Context) ([]core.Record, error) {
		recs, err := latest(ctx, 0)
		if err != nil {
			return nil, err
		}
		out := make([]core.Record, len(recs))
		for i, r := range recs {
			out[i] = r
		}
		return out, nil
	}
}

// SyncWorker mirrors record change events into the spreadsheet journal.
type SyncWorker struct {
	journal sheets.Journal
	clock   period.Clock
	loaders map[core.Kind]loader
	listers map[core.Kind]lister

	mu    sync.Mutex
	ready bool // journal tabs exist
}

func NewSyncWorker(repo *storage.SQLiteRepository, journal sheets.Journal, clock period.Clock) *SyncWorker {
	if clock == nil {
		clock = period.SystemClock{}
	}
	return &SyncWorker{
		journal: journal,
		clock:   clock,
		loaders: map[core.Kind]loader{
			core.KindExpense:    asLoader(repo.Expenses.Get),
			core.KindBodyWeight: asLoader(repo.BodyWeights.Get),
			core.KindWholesale:  asLoader(repo.Wholesale.Get),
		},
		listers: map[core.Kind]lister{
			core.KindExpense:    asLister(repo.Expenses.Latest),
			core.KindBodyWeight: asLister(repo.BodyWeights.Latest),
			core.KindWholesale:  asLister(repo.Wholesale.Latest),
		},
	}
}

// ensureTabs creates the journal tabs on first use. A failure is retried on
// the next call.
func (w *SyncWorker) ensureTabs(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ready {
		return nil
	}
	if err := w.journal.EnsureTabs(ctx, sheets.Headers()); err != nil {
		return fmt.Errorf("ensure journal tabs: %w", err)
	}
	w.ready = true
	return nil
}

// Handle appends one journal row for event. Created and updated events carry
// the current state of the record; if it has been deleted in the meantime the
// event is skipped, since its deletion event follows.
func (w *SyncWorker) Handle(ctx context.Context, event *amqp.RecordEvent) error {
	tab, err := sheets.TabFor(event.Kind)
	if err != nil {
		return err
	}
	if err := w.ensureTabs(ctx); err != nil {
		return err
	}

	var rec core.Record
	if event.Op != amqp.OpDeleted {
		load, ok := w.loaders[event.Kind]
		if !ok {
			return fmt.Errorf("no loader for record kind %q", event.Kind)
		}
		rec, err = load(ctx, event.ID)
		if errors.Is(err, core.ErrNotFound) {
			slog.InfoContext(ctx, "Record gone before sync, skipping",
				log.FieldComponent, log.ComponentWorker,
				log.FieldKind, string(event.Kind),
				log.FieldRecordID, event.ID,
				log.FieldOperation, string(event.Op))
			return nil
		}
		if err != nil {
			return fmt.Errorf("load %s %s: %w", event.Kind, event.ID, err)
		}
	}

	row := sheets.Row(string(event.Op), event.ID, event.OccurredAt, rec)
	if err := w.journal.AppendRow(ctx, tab, row); err != nil {
		return fmt.Errorf("append journal row: %w", err)
	}

	slog.InfoContext(ctx, "Synced record event",
		log.FieldComponent, log.ComponentWorker,
		log.FieldKind, string(event.Kind),
		log.FieldRecordID, event.ID,
		log.FieldOperation, string(event.Op),
		log.FieldSheet, tab)
	return nil
}

// Backfill writes a snapshot row for every stored record. It is meant for
// seeding an empty spreadsheet.
func (w *SyncWorker) Backfill(ctx context.Context) (int, error) {
	if err := w.ensureTabs(ctx); err != nil {
		return 0, err
	}

	now := w.clock.Now()
	written := 0
	for _, kind := range core.Kinds {
		tab, err := sheets.TabFor(kind)
		if err != nil {
			return written, err
		}
		recs, err := w.listers[kind](ctx)
		if err != nil {
			return written, fmt.Errorf("list %s records: %w", kind, err)
		}
		// Oldest first, so the journal reads chronologically.
		for i := len(recs) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			rec := recs[i]
			if err := w.journal.AppendRow(ctx, tab, sheets.Row(OpSnapshot, rec.RecordID(), now, rec)); err != nil {
				return written, fmt.Errorf("append journal row: %w", err)
			}
			written++
		}
	}

	slog.InfoContext(ctx, "Backfill completed",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpSync,
		"rows", written)
	return written, nil
}
