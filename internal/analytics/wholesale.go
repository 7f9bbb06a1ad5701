package analytics

import (
	"context"
	"fmt"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

const (
	defaultWholesaleTrendMonths = 6
	defaultRecentBatches        = 5
)

type (
	WholesaleSummary struct {
		Period    period.Token    `json:"period"`
		DateRange DateRange       `json:"dateRange"`
		Summary   WholesaleTotals `json:"summary"`
	}

	WholesaleTotals struct {
		TotalInvestment        float64                 `json:"totalInvestment"`
		TotalBoxes             int                     `json:"totalBoxes"`
		TotalPotentialProfit   float64                 `json:"totalPotentialProfit"`
		AverageInvestment      float64                 `json:"averageInvestment"`
		AverageProfitPerBox    float64                 `json:"averageProfitPerBox"`
		TotalBatches           int                     `json:"totalBatches"`
		MaxInvestment          float64                 `json:"maxInvestment"`
		MinInvestment          float64                 `json:"minInvestment"`
		AverageCostPerBox      float64                 `json:"averageCostPerBox"`
		ProfitMarginPercentage float64                 `json:"profitMarginPercentage"`
		TotalSellingValue      float64                 `json:"totalSellingValue"`
		PercentageChange       float64                 `json:"percentageChange"`
		PreviousPeriod         PreviousInvestmentTotal `json:"previousPeriod"`
	}

	PreviousInvestmentTotal struct {
		TotalInvestment float64 `json:"totalInvestment"`
		TotalBatches    int     `json:"totalBatches"`
	}

	WholesaleTrends struct {
		Period Granularity           `json:"period"`
		Trends []WholesaleTrendPoint `json:"trends"`
	}

	WholesaleTrendPoint struct {
		Period          string  `json:"period"`
		TotalInvestment float64 `json:"totalInvestment"`
		TotalBoxes      int     `json:"totalBoxes"`
		TotalProfit     float64 `json:"totalProfit"`
		BatchCount      int     `json:"batchCount"`
	}

	WholesaleStats struct {
		TotalBatches              int                `json:"totalBatches"`
		TotalBoxes                int                `json:"totalBoxes"`
		TotalInvestment           float64            `json:"totalInvestment"`
		TotalPotentialProfit      float64            `json:"totalPotentialProfit"`
		AverageInvestmentPerBatch float64            `json:"averageInvestmentPerBatch"`
		MinInvestment             float64            `json:"minInvestment"`
		MaxInvestment             float64            `json:"maxInvestment"`
		TotalPotentialReturn      float64            `json:"totalPotentialReturn"`
		OverallProfitMargin       float64            `json:"overallProfitMargin"`
		FirstBatch                *WholesaleSnapshot `json:"firstBatch"`
		LatestBatch               *WholesaleSnapshot `json:"latestBatch"`
	}

	WholesaleSnapshot struct {
		Date             time.Time `json:"date"`
		InvestmentAmount float64   `json:"investment_amount"`
		BoxesPurchased   int       `json:"boxes_purchased"`
	}
)

var wholesaleMetrics = []Metric[core.WholesaleBatch]{
	Field("investment", func(w core.WholesaleBatch) float64 { return w.InvestmentAmount }),
	Field("boxes", func(w core.WholesaleBatch) float64 { return float64(w.BoxesPurchased) }),
	Field("profitPerBox", func(w core.WholesaleBatch) float64 { return w.ProfitPerBox }),
	// Summed per batch rather than derived from the totals.
	Field("profit", func(w core.WholesaleBatch) float64 { return w.TotalPotentialProfit() }),
}

// WholesaleService computes batch analytics. Periods run up to now.
type WholesaleService struct {
	source Source[core.WholesaleBatch]
	clock  period.Clock
}

func NewWholesaleService(source Source[core.WholesaleBatch], clock period.Clock) *WholesaleService {
	return &WholesaleService{source: source, clock: clock}
}

func (s *WholesaleService) Summary(ctx context.Context, req PeriodRequest) (WholesaleSummary, error) {
	current := req.resolve(s.clock.Now(), period.ToDate)
	previous := period.Preceding(current)

	records, prevRecords, err := queryBoth(ctx, s.source, &current, &previous)
	if err != nil {
		return WholesaleSummary{}, fmt.Errorf("wholesale summary: %w", err)
	}

	cur := Total(records, Query[core.WholesaleBatch]{Range: &current, Metrics: wholesaleMetrics})
	prev := Total(prevRecords, Query[core.WholesaleBatch]{Range: &previous, Metrics: wholesaleMetrics[:1]})

	investment := cur.Stat("investment")
	boxes := cur.Stat("boxes").Sum
	profit := cur.Stat("profit").Sum
	prevInvestment := prev.Stat("investment")

	totals := WholesaleTotals{
		TotalInvestment:      round2(investment.Sum),
		TotalBoxes:           int(boxes),
		TotalPotentialProfit: round2(profit),
		AverageInvestment:    round2(investment.Avg()),
		AverageProfitPerBox:  round2(cur.Stat("profitPerBox").Avg()),
		TotalBatches:         cur.Count,
		MaxInvestment:        round2(investment.Max),
		MinInvestment:        round2(investment.Min),
		TotalSellingValue:    round2(investment.Sum + profit),
		PercentageChange:     core.PercentageChange(investment.Sum, prevInvestment.Sum),
		PreviousPeriod: PreviousInvestmentTotal{
			TotalInvestment: round2(prevInvestment.Sum),
			TotalBatches:    prev.Count,
		},
	}
	if boxes > 0 {
		totals.AverageCostPerBox = round2(investment.Sum / boxes)
	}
	if investment.Sum > 0 {
		totals.ProfitMarginPercentage = core.Round(profit/investment.Sum*100, core.PercentPlaces)
	}

	return WholesaleSummary{Period: req.token(), DateRange: dateRange(current), Summary: totals}, nil
}

// Trends buckets batches from the start of the month req.Months months ago
// (6 by default) up to now.
func (s *WholesaleService) Trends(ctx context.Context, req TrendRequest) (WholesaleTrends, error) {
	now := s.clock.Now()
	g := req.Granularity
	if g == "" {
		g = Month
	}
	months := req.Months
	if months <= 0 {
		months = defaultWholesaleTrendMonths
	}
	window := period.MonthsBack(now, months+1)

	records, err := s.source.Query(ctx, &window)
	if err != nil {
		return WholesaleTrends{}, fmt.Errorf("wholesale trends: %w", err)
	}

	loc := now.Location()
	buckets := Aggregate(records, Query[core.WholesaleBatch]{
		Range:   &window,
		GroupBy: func(w core.WholesaleBatch) Key { return CalendarKey(w.Date, g, loc) },
		Metrics: wholesaleMetrics,
	})

	out := WholesaleTrends{Period: g, Trends: []WholesaleTrendPoint{}}
	for _, b := range MostRecent(buckets, req.Limit) {
		out.Trends = append(out.Trends, WholesaleTrendPoint{
			Period:          b.Key.String(),
			TotalInvestment: round2(b.Stat("investment").Sum),
			TotalBoxes:      int(b.Stat("boxes").Sum),
			TotalProfit:     round2(b.Stat("profit").Sum),
			BatchCount:      b.Count,
		})
	}
	return out, nil
}

func (s *WholesaleService) Stats(ctx context.Context) (WholesaleStats, error) {
	records, err := s.source.Query(ctx, nil)
	if err != nil {
		return WholesaleStats{}, fmt.Errorf("wholesale stats: %w", err)
	}

	total := Total(records, Query[core.WholesaleBatch]{Metrics: wholesaleMetrics})
	investment := total.Stat("investment")
	profit := total.Stat("profit").Sum

	out := WholesaleStats{
		TotalBatches:              total.Count,
		TotalBoxes:                int(total.Stat("boxes").Sum),
		TotalInvestment:           round2(investment.Sum),
		TotalPotentialProfit:      round2(profit),
		AverageInvestmentPerBatch: round2(investment.Avg()),
		MinInvestment:             round2(investment.Min),
		MaxInvestment:             round2(investment.Max),
		TotalPotentialReturn:      round2(investment.Sum + profit),
	}
	if investment.Sum > 0 {
		out.OverallProfitMargin = core.Round(profit/investment.Sum*100, core.PercentPlaces)
	}
	if len(records) > 0 {
		sorted := sortedByDate(records)
		out.FirstBatch = wholesaleSnapshot(sorted[0])
		out.LatestBatch = wholesaleSnapshot(sorted[len(sorted)-1])
	}
	return out, nil
}

// Recent lists the latest batches, newest first (5 by default).
func (s *WholesaleService) Recent(ctx context.Context, limit int) ([]core.WholesaleBatch, error) {
	if limit <= 0 {
		limit = defaultRecentBatches
	}
	batches, err := s.source.Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent wholesale batches: %w", err)
	}
	return batches, nil
}

func wholesaleSnapshot(w core.WholesaleBatch) *WholesaleSnapshot {
	return &WholesaleSnapshot{Date: w.Date, InvestmentAmount: w.InvestmentAmount, BoxesPurchased: w.BoxesPurchased}
}
