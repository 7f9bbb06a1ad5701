package analytics

import (
	"context"
	"fmt"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

const (
	defaultWeightTrendLimit = 12
	recentWeightDays        = 7
	recentWeightLimit       = 10
)

type (
	BodyWeightSummary struct {
		Period    period.Token     `json:"period"`
		DateRange DateRange        `json:"dateRange"`
		Summary   BodyWeightTotals `json:"summary"`
	}

	BodyWeightTotals struct {
		TotalEntries      int                `json:"totalEntries"`
		AverageWeight     float64            `json:"averageWeight"`
		MinWeight         float64            `json:"minWeight"`
		MaxWeight         float64            `json:"maxWeight"`
		LatestWeight      float64            `json:"latestWeight"`
		WeightTrend       float64            `json:"weightTrend"`
		AverageBodyFat    *float64           `json:"averageBodyFat"`
		AverageMuscleMass *float64           `json:"averageMuscleMass"`
		AverageBMI        *float64           `json:"averageBMI"`
		PercentageChange  float64            `json:"percentageChange"`
		PreviousPeriod    PreviousWeightInfo `json:"previousPeriod"`
	}

	PreviousWeightInfo struct {
		AverageWeight float64 `json:"averageWeight"`
		TotalEntries  int     `json:"totalEntries"`
	}

	BodyWeightTrends struct {
		Period Granularity        `json:"period"`
		Trends []BodyWeightBucket `json:"trends"`
	}

	BodyWeightBucket struct {
		Period            string   `json:"period"`
		AverageWeight     float64  `json:"averageWeight"`
		MinWeight         float64  `json:"minWeight"`
		MaxWeight         float64  `json:"maxWeight"`
		EntryCount        int      `json:"entryCount"`
		AverageBodyFat    *float64 `json:"averageBodyFat"`
		AverageMuscleMass *float64 `json:"averageMuscleMass"`
		AverageBMI        *float64 `json:"averageBMI"`
	}

	BodyWeightStats struct {
		TotalEntries      int             `json:"totalEntries"`
		AverageWeight     float64         `json:"averageWeight"`
		MinWeight         float64         `json:"minWeight"`
		MaxWeight         float64         `json:"maxWeight"`
		TotalWeightChange float64         `json:"totalWeightChange"`
		AverageBodyFat    *float64        `json:"averageBodyFat"`
		AverageMuscleMass *float64        `json:"averageMuscleMass"`
		AverageBMI        *float64        `json:"averageBMI"`
		FirstEntry        *WeightSnapshot `json:"firstEntry"`
		LatestEntry       *WeightSnapshot `json:"latestEntry"`
		UnitBreakdown     []UnitBreakdown `json:"unitBreakdown"`
	}

	WeightSnapshot struct {
		Date   time.Time       `json:"date"`
		Weight float64         `json:"weight"`
		Unit   core.WeightUnit `json:"unit"`
	}

	UnitBreakdown struct {
		Unit          string  `json:"unit"`
		Count         int     `json:"count"`
		AverageWeight float64 `json:"averageWeight"`
	}
)

var bodyWeightMetrics = []Metric[core.BodyWeight]{
	Field("weight", func(b core.BodyWeight) float64 { return b.Weight }),
	Optional("bodyFat", func(b core.BodyWeight) *float64 { return b.BodyFatPercentage }),
	Optional("muscleMass", func(b core.BodyWeight) *float64 { return b.MuscleMass }),
	Optional("bmi", func(b core.BodyWeight) *float64 { return b.BMI }),
}

// BodyWeightService computes weigh-in analytics. Periods run up to now.
// Weights are aggregated as stored, without converting between units.
type BodyWeightService struct {
	source Source[core.BodyWeight]
	clock  period.Clock
}

func NewBodyWeightService(source Source[core.BodyWeight], clock period.Clock) *BodyWeightService {
	return &BodyWeightService{source: source, clock: clock}
}

func (s *BodyWeightService) Summary(ctx context.Context, req PeriodRequest) (BodyWeightSummary, error) {
	current := req.resolve(s.clock.Now(), period.ToDate)
	previous := period.Preceding(current)

	records, prevRecords, err := queryBoth(ctx, s.source, &current, &previous)
	if err != nil {
		return BodyWeightSummary{}, fmt.Errorf("body weight summary: %w", err)
	}

	cur := Total(records, Query[core.BodyWeight]{Range: &current, Metrics: bodyWeightMetrics})
	prev := Total(prevRecords, Query[core.BodyWeight]{Range: &previous, Metrics: bodyWeightMetrics[:1]})
	weight, prevWeight := cur.Stat("weight"), prev.Stat("weight")

	return BodyWeightSummary{
		Period:    req.token(),
		DateRange: dateRange(current),
		Summary: BodyWeightTotals{
			TotalEntries:      cur.Count,
			AverageWeight:     round1(weight.Avg()),
			MinWeight:         round1(weight.Min),
			MaxWeight:         round1(weight.Max),
			LatestWeight:      round1(weight.Last),
			WeightTrend:       round1(weight.Last - weight.First),
			AverageBodyFat:    cur.Stat("bodyFat").AvgPtr(core.MetricPlaces),
			AverageMuscleMass: cur.Stat("muscleMass").AvgPtr(core.MetricPlaces),
			AverageBMI:        cur.Stat("bmi").AvgPtr(core.MetricPlaces),
			PercentageChange:  core.PercentageChange(weight.Avg(), prevWeight.Avg()),
			PreviousPeriod: PreviousWeightInfo{
				AverageWeight: round1(prevWeight.Avg()),
				TotalEntries:  prev.Count,
			},
		},
	}, nil
}

// Trends buckets every entry by calendar unit and keeps the most recent req.Limit
// buckets (12 by default), oldest first.
func (s *BodyWeightService) Trends(ctx context.Context, req TrendRequest) (BodyWeightTrends, error) {
	g := req.Granularity
	if g == "" {
		g = Month
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultWeightTrendLimit
	}

	records, err := s.source.Query(ctx, nil)
	if err != nil {
		return BodyWeightTrends{}, fmt.Errorf("body weight trends: %w", err)
	}

	loc := s.clock.Now().Location()
	buckets := Aggregate(records, Query[core.BodyWeight]{
		GroupBy: func(b core.BodyWeight) Key { return CalendarKey(b.Date, g, loc) },
		Metrics: bodyWeightMetrics,
	})

	out := BodyWeightTrends{Period: g, Trends: []BodyWeightBucket{}}
	for _, b := range MostRecent(buckets, limit) {
		weight := b.Stat("weight")
		out.Trends = append(out.Trends, BodyWeightBucket{
			Period:            b.Key.String(),
			AverageWeight:     round1(weight.Avg()),
			MinWeight:         round1(weight.Min),
			MaxWeight:         round1(weight.Max),
			EntryCount:        b.Count,
			AverageBodyFat:    b.Stat("bodyFat").AvgPtr(core.MetricPlaces),
			AverageMuscleMass: b.Stat("muscleMass").AvgPtr(core.MetricPlaces),
			AverageBMI:        b.Stat("bmi").AvgPtr(core.MetricPlaces),
		})
	}
	return out, nil
}

func (s *BodyWeightService) Stats(ctx context.Context) (BodyWeightStats, error) {
	records, err := s.source.Query(ctx, nil)
	if err != nil {
		return BodyWeightStats{}, fmt.Errorf("body weight stats: %w", err)
	}

	total := Total(records, Query[core.BodyWeight]{Metrics: bodyWeightMetrics})
	weight := total.Stat("weight")
	out := BodyWeightStats{
		TotalEntries:      total.Count,
		AverageWeight:     round1(weight.Avg()),
		MinWeight:         round1(weight.Min),
		MaxWeight:         round1(weight.Max),
		TotalWeightChange: round1(weight.Last - weight.First),
		AverageBodyFat:    total.Stat("bodyFat").AvgPtr(core.MetricPlaces),
		AverageMuscleMass: total.Stat("muscleMass").AvgPtr(core.MetricPlaces),
		AverageBMI:        total.Stat("bmi").AvgPtr(core.MetricPlaces),
		UnitBreakdown:     []UnitBreakdown{},
	}

	if len(records) > 0 {
		sorted := sortedByDate(records)
		out.FirstEntry = weightSnapshot(sorted[0])
		out.LatestEntry = weightSnapshot(sorted[len(sorted)-1])
	}

	units := Aggregate(records, Query[core.BodyWeight]{
		GroupBy: func(b core.BodyWeight) Key { return LabelKey(string(b.Unit)) },
		Metrics: bodyWeightMetrics[:1],
	})
	for _, b := range units {
		out.UnitBreakdown = append(out.UnitBreakdown, UnitBreakdown{
			Unit:          b.Key.Label,
			Count:         b.Count,
			AverageWeight: round1(b.Stat("weight").Avg()),
		})
	}
	return out, nil
}

// Recent lists entries from the last seven days, newest first, at most ten.
func (s *BodyWeightService) Recent(ctx context.Context) ([]core.BodyWeight, error) {
	window := period.LastDays(s.clock.Now(), recentWeightDays)
	records, err := s.source.Query(ctx, &window)
	if err != nil {
		return nil, fmt.Errorf("recent body weight: %w", err)
	}
	sorted := sortedByDate(records)
	out := make([]core.BodyWeight, 0, recentWeightLimit)
	for i := len(sorted) - 1; i >= 0 && len(out) < recentWeightLimit; i-- {
		out = append(out, sorted[i])
	}
	return out, nil
}

func weightSnapshot(b core.BodyWeight) *WeightSnapshot {
	return &WeightSnapshot{Date: b.Date, Weight: b.Weight, Unit: b.Unit}
}
