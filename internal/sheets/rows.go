package sheets

import (
	"fmt"
	"strings"
	"time"

	"mysphere/internal/core"
)

// Tab names of the change journal, one per record kind.
const (
	TabExpenses   = "Expenses"
	TabBodyWeight = "BodyWeight"
	TabWholesale  = "Wholesale"
)

// Every journal row starts with these columns.
var journalColumns = []any{"Logged At", "Operation", "Record ID"}

var kindColumns = map[core.Kind][]any{
	core.KindExpense: {
		"Date", "Title", "Amount", "Currency", "Payment Type", "Category",
		"Tags", "Recurring", "Description", "Notes",
	},
	core.KindBodyWeight: {
		"Date", "Weight", "Unit", "Body Fat %", "Muscle Mass", "BMI", "Notes",
	},
	core.KindWholesale: {
		"Date", "Investment", "Boxes", "Profit / Box", "Cost / Box", "Potential Profit", "Margin %", "Notes",
	},
}

// TabFor returns the journal tab that records of kind are written to.
func TabFor(kind core.Kind) (string, error) {
	switch kind {
	case core.KindExpense:
		return TabExpenses, nil
	case core.KindBodyWeight:
		return TabBodyWeight, nil
	case core.KindWholesale:
		return TabWholesale, nil
	}
	return "", fmt.Errorf("no journal tab for record kind %q", kind)
}

// Headers returns the header row of every journal tab, keyed by tab name.
func Headers() map[string][]any {
	out := make(map[string][]any, len(kindColumns))
	for kind, cols := range kindColumns {
		tab, _ := TabFor(kind)
		out[tab] = append(append([]any{}, journalColumns...), cols...)
	}
	return out
}

// Row renders one journal line. rec is nil for deletions, which only log the id.
func Row(op, id string, at time.Time, rec core.Record) []any {
	row := []any{at.UTC().Format(time.RFC3339), op, id}
	switch r := rec.(type) {
	case core.Expense:
		recurring := ""
		if r.IsRecurring {
			recurring = string(r.RecurringType)
		}
		row = append(row,
			dateCell(r.Date), r.Title, r.Amount, r.Currency, string(r.PaymentType), string(r.Category),
			strings.Join(r.Tags, ", "), recurring, r.Description, r.Notes)
	case core.BodyWeight:
		row = append(row,
			dateCell(r.Date), r.Weight, string(r.Unit),
			optional(r.BodyFatPercentage), optional(r.MuscleMass), optional(r.BMI), r.Notes)
	case core.WholesaleBatch:
		m := r.Derived()
		margin := ""
		if m.ProfitMarginPercentage != nil {
			margin = *m.ProfitMarginPercentage
		}
		row = append(row,
			dateCell(r.Date), r.InvestmentAmount, r.BoxesPurchased, r.ProfitPerBox,
			optional(m.CostPerBox), m.TotalPotentialProfit, margin, r.Notes)
	}
	return row
}

func dateCell(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
