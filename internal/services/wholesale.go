package services

import (
	"context"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/storage"
)

// WholesaleService manages wholesale batches.
type WholesaleService struct {
	recordService[core.WholesaleBatch, core.WholesaleInput]
	store *storage.WholesaleStore
}

func NewWholesaleService(store *storage.WholesaleStore, deps Deps) *WholesaleService {
	return &WholesaleService{
		recordService: recordService[core.WholesaleBatch, core.WholesaleInput]{
			kind:  core.KindWholesale,
			store: store,
			deps:  deps,
			build: core.NewWholesaleBatch,
			patch: core.WholesaleBatch.Patch,
			stamp: func(w core.WholesaleBatch, id string, now time.Time) core.WholesaleBatch {
				w.ID, w.CreatedAt, w.UpdatedAt = id, now, now
				return w
			},
			touch: func(w core.WholesaleBatch, now time.Time) core.WholesaleBatch {
				w.UpdatedAt = now
				return w
			},
		},
		store: store,
	}
}

func (s *WholesaleService) List(ctx context.Context, f storage.WholesaleFilter, page storage.PageRequest) (storage.Page[core.WholesaleBatch], error) {
	return s.store.List(ctx, f, page)
}
