package storage

import (
	"context"
	"database/sql"
	"time"

	"mysphere/internal/core"
)

// WholesaleFilter bounds the investment amount of listed batches, inclusively.
type WholesaleFilter struct {
	MinInvestment *float64
	MaxInvestment *float64
}

// WholesaleStore persists wholesale batches.
type WholesaleStore struct {
	*recordTable[core.WholesaleBatch]
}

func newWholesaleStore(db *sql.DB, loc *time.Location) *WholesaleStore {
	return &WholesaleStore{&recordTable[core.WholesaleBatch]{
		db:   db,
		loc:  loc,
		kind: core.KindWholesale,
		name: "wholesale_batches",
		columns: []string{
			"id", "date", "investment_amount", "boxes_purchased", "profit_per_box", "notes",
			"created_at", "updated_at",
		},
		scan:   scanWholesale,
		values: wholesaleValues,
		sorts: sortColumns{
			"":                  "date",
			"date":              "date",
			"investment_amount": "investment_amount",
			"boxes_purchased":   "boxes_purchased",
			"profit_per_box":    "profit_per_box",
			"createdAt":         "created_at",
		},
	}}
}

func (s *WholesaleStore) List(ctx context.Context, f WholesaleFilter, req PageRequest) (Page[core.WholesaleBatch], error) {
	var where filter
	if f.MinInvestment != nil {
		where.add("investment_amount >= ?", *f.MinInvestment)
	}
	if f.MaxInvestment != nil {
		where.add("investment_amount <= ?", *f.MaxInvestment)
	}
	return s.list(ctx, where, req)
}

func wholesaleValues(w core.WholesaleBatch) ([]any, error) {
	return []any{
		w.ID, formatTime(w.Date), w.InvestmentAmount, w.BoxesPurchased, w.ProfitPerBox, w.Notes,
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt),
	}, nil
}

func scanWholesale(row rowScanner, loc *time.Location) (core.WholesaleBatch, error) {
	var (
		w                        core.WholesaleBatch
		date, createdAt, updated string
	)
	err := row.Scan(&w.ID, &date, &w.InvestmentAmount, &w.BoxesPurchased, &w.ProfitPerBox, &w.Notes, &createdAt, &updated)
	if err != nil {
		return core.WholesaleBatch{}, err
	}
	if w.Date, err = parseTime(date, loc); err != nil {
		return core.WholesaleBatch{}, err
	}
	if w.CreatedAt, err = parseTime(createdAt, loc); err != nil {
		return core.WholesaleBatch{}, err
	}
	if w.UpdatedAt, err = parseTime(updated, loc); err != nil {
		return core.WholesaleBatch{}, err
	}
	return w, nil
}
