// Package analytics computes period summaries, trend series and whole-collection
// statistics over records read from a Source.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

// Source is the read side of a record store.
type Source[R core.Record] interface {
	// Query returns the records dated within r (all records when r is nil), oldest first.
	Query(ctx context.Context, r *period.Range) ([]R, error)
	// Latest returns up to n records, newest first.
	Latest(ctx context.Context, n int) ([]R, error)
}

// PeriodRequest asks for a summary of one period.
type PeriodRequest struct {
	Token period.Token
	Start *time.Time
	End   *time.Time
}

func (p PeriodRequest) token() period.Token {
	return period.ParseToken(string(p.Token))
}

func (p PeriodRequest) resolve(now time.Time, mode period.Mode) period.Range {
	return period.Resolve(period.Request{Token: p.token(), Start: p.Start, End: p.End}, now, mode)
}

// TrendRequest asks for a bucketed series.
type TrendRequest struct {
	Granularity Granularity
	// Months bounds the series to that many calendar months back; 0 uses the default.
	Months int
	// Limit keeps only the most recent buckets; 0 uses the default.
	Limit int
}

// DateRange is the JSON form of a resolved window.
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func dateRange(r period.Range) DateRange {
	return DateRange{StartDate: r.Start, EndDate: r.End}
}

// queryBoth reads two windows concurrently.
func queryBoth[R core.Record](ctx context.Context, src Source[R], a, b *period.Range) ([]R, []R, error) {
	var first, second []R
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := src.Query(ctx, a)
		if err != nil {
			return fmt.Errorf("query current period: %w", err)
		}
		first = records
		return nil
	})
	g.Go(func() error {
		records, err := src.Query(ctx, b)
		if err != nil {
			return fmt.Errorf("query comparison period: %w", err)
		}
		second = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func rangePtr(r period.Range) *period.Range { return &r }

func round2(v float64) float64 { return core.Round(v, core.MoneyPlaces) }
func round1(v float64) float64 { return core.Round(v, core.MetricPlaces) }

// sortedByDate returns a copy of records ordered oldest first.
func sortedByDate[R core.Record](records []R) []R {
	out := make([]R, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordDate().Before(out[j].RecordDate()) })
	return out
}
