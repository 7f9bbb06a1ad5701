package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

func weighIn(weight float64, date time.Time) core.BodyWeight {
	return core.BodyWeight{ID: core.NewID(), Weight: weight, Unit: core.UnitKg, Date: date}
}

func newBodyWeightService(records ...core.BodyWeight) *BodyWeightService {
	return NewBodyWeightService(&fakeSource[core.BodyWeight]{records: records}, period.FixedClock(fixedNow))
}

func TestBodyWeightSummary(t *testing.T) {
	withFat := weighIn(72, at(2025, 3, 2))
	withFat.BodyFatPercentage = fptr(18.4)

	svc := newBodyWeightService(
		withFat,
		weighIn(71, at(2025, 3, 10)),
		weighIn(73, at(2025, 2, 20)),
	)

	got, err := svc.Summary(context.Background(), PeriodRequest{Token: period.Monthly})
	require.NoError(t, err)

	assert.Equal(t, fixedNow, got.DateRange.EndDate, "body weight periods run to date")
	s := got.Summary
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, 71.5, s.AverageWeight)
	assert.Equal(t, 71.0, s.MinWeight)
	assert.Equal(t, 72.0, s.MaxWeight)
	assert.Equal(t, 71.0, s.LatestWeight)
	assert.Equal(t, -1.0, s.WeightTrend)
	require.NotNil(t, s.AverageBodyFat)
	assert.Equal(t, 18.4, *s.AverageBodyFat)
	assert.Nil(t, s.AverageMuscleMass)
	assert.Nil(t, s.AverageBMI)
	assert.Equal(t, 73.0, s.PreviousPeriod.AverageWeight)
	assert.Equal(t, -2.05, s.PercentageChange)
}

func TestBodyWeightSummary_Empty(t *testing.T) {
	got, err := newBodyWeightService().Summary(context.Background(), PeriodRequest{Token: "yearly"})
	require.NoError(t, err)
	assert.Equal(t, BodyWeightTotals{}, got.Summary)
}

func TestBodyWeightTrends_LimitKeepsMostRecentAscending(t *testing.T) {
	svc := newBodyWeightService(
		weighIn(80, at(2024, 11, 10)),
		weighIn(79, at(2024, 12, 10)),
		weighIn(78, at(2025, 1, 10)),
		weighIn(77, at(2025, 2, 10)),
		weighIn(76, at(2025, 3, 10)),
		weighIn(75, at(2025, 3, 12)),
	)

	got, err := svc.Trends(context.Background(), TrendRequest{Granularity: Month, Limit: 3})
	require.NoError(t, err)

	require.Len(t, got.Trends, 3)
	assert.Equal(t, "2025-01", got.Trends[0].Period)
	assert.Equal(t, "2025-02", got.Trends[1].Period)
	assert.Equal(t, "2025-03", got.Trends[2].Period)
	assert.Equal(t, 75.5, got.Trends[2].AverageWeight)
	assert.Equal(t, 2, got.Trends[2].EntryCount)
	assert.Nil(t, got.Trends[2].AverageBMI)
}

func TestBodyWeightTrends_DefaultLimit(t *testing.T) {
	var records []core.BodyWeight
	for i := 0; i < 20; i++ {
		records = append(records, weighIn(70, at(2023, 1, 1).AddDate(0, i, 0)))
	}
	got, err := newBodyWeightService(records...).Trends(context.Background(), TrendRequest{})
	require.NoError(t, err)
	assert.Len(t, got.Trends, 12)
	assert.Equal(t, Month, got.Period)
	assert.Equal(t, "2024-08", got.Trends[11].Period)
}

func TestBodyWeightStats(t *testing.T) {
	lbs := weighIn(160, at(2025, 2, 1))
	lbs.Unit = core.UnitLbs
	svc := newBodyWeightService(
		weighIn(80, at(2025, 1, 1)),
		lbs,
		weighIn(78.5, at(2025, 3, 1)),
	)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalEntries)
	assert.Equal(t, -1.5, got.TotalWeightChange)
	require.NotNil(t, got.FirstEntry)
	assert.Equal(t, 80.0, got.FirstEntry.Weight)
	assert.Equal(t, 78.5, got.LatestEntry.Weight)
	assert.Equal(t, []UnitBreakdown{
		{Unit: "kg", Count: 2, AverageWeight: 79.3},
		{Unit: "lbs", Count: 1, AverageWeight: 160},
	}, got.UnitBreakdown)
}

func TestBodyWeightRecent(t *testing.T) {
	var records []core.BodyWeight
	for i := 0; i < 14; i++ {
		records = append(records, weighIn(70+float64(i), fixedNow.Add(-time.Duration(i)*12*time.Hour)))
	}
	records = append(records, weighIn(99, fixedNow.AddDate(0, 0, -8)))

	got, err := newBodyWeightService(records...).Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, 70.0, got[0].Weight, "newest first")
	for _, b := range got {
		assert.NotEqual(t, 99.0, b.Weight)
	}
}
