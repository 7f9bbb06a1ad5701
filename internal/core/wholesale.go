package core

import (
	"encoding/json"
	"strings"
	"time"
)

type (
	// WholesaleBatch is one purchase of boxes for resale.
	WholesaleBatch struct {
		ID               string    `json:"id"`
		Date             time.Time `json:"date"`
		InvestmentAmount float64   `json:"investment_amount"`
		BoxesPurchased   int       `json:"boxes_purchased"`
		ProfitPerBox     float64   `json:"profit_per_box"`
		Notes            string    `json:"notes,omitempty"`
		CreatedAt        time.Time `json:"createdAt"`
		UpdatedAt        time.Time `json:"updatedAt"`
	}

	WholesaleInput struct {
		Date             *string  `json:"date"`
		InvestmentAmount *float64 `json:"investment_amount"`
		BoxesPurchased   *int     `json:"boxes_purchased"`
		ProfitPerBox     *float64 `json:"profit_per_box"`
		Notes            *string  `json:"notes"`
	}

	// WholesaleMetrics holds the values derived from a batch on read.
	// Nil pointers mark values that cannot be computed.
	WholesaleMetrics struct {
		CostPerBox             *float64 `json:"cost_per_box"`
		TotalPotentialProfit   float64  `json:"total_potential_profit"`
		ProfitMarginPercentage *string  `json:"profit_margin_percentage"`
		SellingPricePerBox     *float64 `json:"selling_price_per_box"`
		TotalSellingValue      *float64 `json:"total_selling_value"`
	}
)

// DefaultProfitPerBox applies when a batch is created without a profit per box.
const DefaultProfitPerBox = 20

const maxWholesaleNotes = 500

func (w WholesaleBatch) RecordID() string      { return w.ID }
func (w WholesaleBatch) RecordDate() time.Time { return w.Date }

// CostPerBox is investment divided by boxes; ok is false when no boxes were purchased.
func (w WholesaleBatch) CostPerBox() (float64, bool) {
	if w.BoxesPurchased <= 0 {
		return 0, false
	}
	return w.InvestmentAmount / float64(w.BoxesPurchased), true
}

func (w WholesaleBatch) TotalPotentialProfit() float64 {
	return float64(w.BoxesPurchased) * w.ProfitPerBox
}

// ProfitMargin is profit per box as a percentage of cost per box.
func (w WholesaleBatch) ProfitMargin() (float64, bool) {
	cost, ok := w.CostPerBox()
	if !ok || cost == 0 {
		return 0, false
	}
	return w.ProfitPerBox / cost * 100, true
}

func (w WholesaleBatch) SellingPricePerBox() (float64, bool) {
	cost, ok := w.CostPerBox()
	if !ok {
		return 0, false
	}
	return cost + w.ProfitPerBox, true
}

func (w WholesaleBatch) TotalSellingValue() (float64, bool) {
	price, ok := w.SellingPricePerBox()
	if !ok {
		return 0, false
	}
	return float64(w.BoxesPurchased) * price, true
}

// Derived computes every read-time metric of the batch.
func (w WholesaleBatch) Derived() WholesaleMetrics {
	m := WholesaleMetrics{TotalPotentialProfit: w.TotalPotentialProfit()}
	if v, ok := w.CostPerBox(); ok {
		m.CostPerBox = &v
	}
	if v, ok := w.ProfitMargin(); ok {
		s := Fixed(v, PercentPlaces)
		m.ProfitMarginPercentage = &s
	}
	if v, ok := w.SellingPricePerBox(); ok {
		m.SellingPricePerBox = &v
	}
	if v, ok := w.TotalSellingValue(); ok {
		m.TotalSellingValue = &v
	}
	return m
}

func (w WholesaleBatch) MarshalJSON() ([]byte, error) {
	type alias WholesaleBatch
	return json.Marshal(struct {
		alias
		WholesaleMetrics
	}{alias(w), w.Derived()})
}

// NewWholesaleBatch builds a validated batch; date defaults to now and profit per box to 20.
func NewWholesaleBatch(in WholesaleInput, now time.Time) (WholesaleBatch, error) {
	w := WholesaleBatch{Date: now, ProfitPerBox: DefaultProfitPerBox}
	verr := &ValidationError{}
	if in.InvestmentAmount == nil {
		verr.Add("investment_amount", "is required")
	}
	if in.BoxesPurchased == nil {
		verr.Add("boxes_purchased", "is required")
	}
	return w.merge(in, now, verr)
}

// Patch applies a partial update and re-validates the merged batch.
func (w WholesaleBatch) Patch(in WholesaleInput, now time.Time) (WholesaleBatch, error) {
	return w.merge(in, now, &ValidationError{})
}

func (w WholesaleBatch) merge(in WholesaleInput, now time.Time, verr *ValidationError) (WholesaleBatch, error) {
	applyDate(verr, "date", in.Date, &w.Date, now.Location())
	if in.InvestmentAmount != nil {
		w.InvestmentAmount = *in.InvestmentAmount
	}
	if in.BoxesPurchased != nil {
		w.BoxesPurchased = *in.BoxesPurchased
	}
	if in.ProfitPerBox != nil {
		w.ProfitPerBox = *in.ProfitPerBox
	}
	if in.Notes != nil {
		w.Notes = strings.TrimSpace(*in.Notes)
	}

	w.validate(now, verr)
	if err := verr.Err(); err != nil {
		return WholesaleBatch{}, err
	}
	return w, nil
}

func (w WholesaleBatch) validate(now time.Time, verr *ValidationError) {
	if !hasField(verr, "date") {
		checkNotFuture(verr, "date", w.Date, now)
	}
	if w.InvestmentAmount < 0 {
		verr.Add("investment_amount", "must be a non-negative number")
	}
	if !hasField(verr, "boxes_purchased") && w.BoxesPurchased < 1 {
		verr.Add("boxes_purchased", "must be a positive integer")
	}
	if w.ProfitPerBox < 0 {
		verr.Add("profit_per_box", "must be a non-negative number")
	}
	checkLength(verr, "notes", w.Notes, maxWholesaleNotes)
}
