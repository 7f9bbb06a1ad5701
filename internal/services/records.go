package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mysphere/internal/amqp"
	"mysphere/internal/cache"
	"mysphere/internal/core"
	"mysphere/internal/log"
	"mysphere/internal/period"
)

// EventPublisher announces committed record changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event *amqp.RecordEvent) error
}

type recordStore[R core.Record] interface {
	Create(ctx context.Context, rec R) error
	Get(ctx context.Context, id string) (R, error)
	Update(ctx context.Context, rec R) error
	Delete(ctx context.Context, id string) error
}

// Deps are shared by every record service. Publisher and Cache may be nil.
type Deps struct {
	Clock     period.Clock
	Publisher EventPublisher
	Cache     cache.Cache[any]
}

// recordService runs the validate, persist, announce sequence shared by all kinds.
type recordService[R core.Record, In any] struct {
	kind  core.Kind
	store recordStore[R]
	deps  Deps

	build func(In, time.Time) (R, error)
	patch func(R, In, time.Time) (R, error)
	// stamp assigns the id and both audit timestamps of a new record.
	stamp func(rec R, id string, now time.Time) R
	touch func(rec R, now time.Time) R
}

func (s *recordService[R, In]) now() time.Time {
	if s.deps.Clock == nil {
		return time.Now()
	}
	return s.deps.Clock.Now()
}

// Create validates in and stores it as a new record.
func (s *recordService[R, In]) Create(ctx context.Context, in In) (R, error) {
	now := s.now()
	rec, err := s.build(in, now)
	if err != nil {
		return rec, err
	}
	rec = s.stamp(rec, core.NewID(), now)

	if err := s.store.Create(ctx, rec); err != nil {
		var zero R
		return zero, fmt.Errorf("save %s: %w", s.kind, err)
	}
	s.changed(ctx, rec.RecordID(), amqp.OpCreated)
	return rec, nil
}

// Get loads a record. Ids that are not UUIDs yield core.ErrMalformedID.
func (s *recordService[R, In]) Get(ctx context.Context, id string) (R, error) {
	id, err := core.ParseID(id)
	if err != nil {
		var zero R
		return zero, err
	}
	return s.store.Get(ctx, id)
}

// Update applies a partial update. The merged record is validated as a whole.
func (s *recordService[R, In]) Update(ctx context.Context, id string, in In) (R, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return current, err
	}

	now := s.now()
	updated, err := s.patch(current, in, now)
	if err != nil {
		return updated, err
	}
	updated = s.touch(updated, now)

	if err := s.store.Update(ctx, updated); err != nil {
		var zero R
		return zero, fmt.Errorf("save %s: %w", s.kind, err)
	}
	s.changed(ctx, updated.RecordID(), amqp.OpUpdated)
	return updated, nil
}

func (s *recordService[R, In]) Delete(ctx context.Context, id string) error {
	id, err := core.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, id, amqp.OpDeleted)
	return nil
}

// changed invalidates cached analytics for the kind and publishes an event.
// Publishing is best effort: the write has already been committed.
func (s *recordService[R, In]) changed(ctx context.Context, id string, op amqp.Operation) {
	if n := cache.Invalidate(s.deps.Cache, s.kind); n > 0 {
		slog.DebugContext(ctx, "Analytics cache invalidated",
			log.FieldComponent, log.ComponentCache,
			log.FieldKind, string(s.kind),
			"entries", n)
	}

	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(s.kind, id, op)); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentRecords).WarnContext(ctx, "Failed to publish record event",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithRecord(string(s.kind), id).
				WithError(err).
				ToSlice()...)
	}
}
