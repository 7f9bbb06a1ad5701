package analytics

import (
	"context"
	"sort"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

type fakeSource[R core.Record] struct {
	records []R
	err     error
}

func (f *fakeSource[R]) Query(_ context.Context, r *period.Range) ([]R, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []R
	for _, rec := range f.records {
		if r == nil || r.Contains(rec.RecordDate()) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordDate().Before(out[j].RecordDate()) })
	return out, nil
}

func (f *fakeSource[R]) Latest(ctx context.Context, n int) ([]R, error) {
	all, err := f.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	var out []R
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Saturday 15 March 2025, midday.
var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func fptr(v float64) *float64 { return &v }
