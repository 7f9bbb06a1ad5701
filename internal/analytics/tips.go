package analytics

import (
	"context"
	"fmt"

	"mysphere/internal/core"
)

const tipSampleSize = 10

// Tip is one piece of advice about recent wholesale buying.
type Tip struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

var generalTips = []Tip{
	{Type: "tip", Title: "Market Research", Message: "Regularly research market prices to ensure competitive profit margins."},
	{Type: "tip", Title: "Supplier Relations", Message: "Build strong relationships with suppliers for better pricing and payment terms."},
	{Type: "tip", Title: "Inventory Turnover", Message: "Track how quickly you sell inventory to optimize cash flow and reduce storage costs."},
}

// Tips inspects the ten most recent batches and returns rule based advice followed by
// the general tips.
func (s *WholesaleService) Tips(ctx context.Context) ([]Tip, error) {
	batches, err := s.source.Latest(ctx, tipSampleSize)
	if err != nil {
		return nil, fmt.Errorf("wholesale tips: %w", err)
	}
	return ProfitTips(batches), nil
}

// ProfitTips applies the margin, volume and consistency rules to batches.
func ProfitTips(batches []core.WholesaleBatch) []Tip {
	tips := []Tip{}
	if len(batches) > 0 {
		var profitPerBox, costPerBox, boxes float64
		minInvestment, maxInvestment := batches[0].InvestmentAmount, batches[0].InvestmentAmount
		for _, b := range batches {
			profitPerBox += b.ProfitPerBox
			if cost, ok := b.CostPerBox(); ok {
				costPerBox += cost
			}
			boxes += float64(b.BoxesPurchased)
			minInvestment = min(minInvestment, b.InvestmentAmount)
			maxInvestment = max(maxInvestment, b.InvestmentAmount)
		}
		n := float64(len(batches))
		profitPerBox, costPerBox, boxes = profitPerBox/n, costPerBox/n, boxes/n

		if costPerBox > 0 {
			margin := profitPerBox / costPerBox * 100
			switch {
			case margin < 20:
				tips = append(tips, Tip{
					Type:    "warning",
					Title:   "Low Profit Margin",
					Message: fmt.Sprintf("Current margin is %s%%. Consider negotiating better prices or finding higher-margin products.", core.Fixed(margin, 1)),
				})
			case margin > 50:
				tips = append(tips, Tip{
					Type:    "success",
					Title:   "Excellent Profit Margin",
					Message: fmt.Sprintf("Great margin of %s%%! Consider scaling up this profitable line.", core.Fixed(margin, 1)),
				})
			}
		}

		if boxes < 50 {
			tips = append(tips, Tip{
				Type:    "info",
				Title:   "Scale Up Opportunity",
				Message: "Consider bulk purchasing to negotiate better rates and increase profit margins.",
			})
		}

		if maxInvestment > minInvestment*3 {
			tips = append(tips, Tip{
				Type:    "info",
				Title:   "Investment Consistency",
				Message: "Consider maintaining consistent investment amounts for better cash flow management.",
			})
		}
	}
	return append(tips, generalTips...)
}
