package services

import (
	"context"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/storage"
)

// BodyWeightService manages weigh-ins.
type BodyWeightService struct {
	recordService[core.BodyWeight, core.BodyWeightInput]
	store *storage.BodyWeightStore
}

func NewBodyWeightService(store *storage.BodyWeightStore, deps Deps) *BodyWeightService {
	return &BodyWeightService{
		recordService: recordService[core.BodyWeight, core.BodyWeightInput]{
			kind:  core.KindBodyWeight,
			store: store,
			deps:  deps,
			build: core.NewBodyWeight,
			patch: core.BodyWeight.Patch,
			stamp: func(b core.BodyWeight, id string, now time.Time) core.BodyWeight {
				b.ID, b.CreatedAt, b.UpdatedAt = id, now, now
				return b
			},
			touch: func(b core.BodyWeight, now time.Time) core.BodyWeight {
				b.UpdatedAt = now
				return b
			},
		},
		store: store,
	}
}

func (s *BodyWeightService) List(ctx context.Context, f storage.BodyWeightFilter, page storage.PageRequest) (storage.Page[core.BodyWeight], error) {
	return s.store.List(ctx, f, page)
}
