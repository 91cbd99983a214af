package rewards

import (
	"github.com/warp/reward-points/model"
)

// =============================================================================
// CUSTOMER SUMMARIES
// =============================================================================

// CustomerSummary is the rewards view of one customer.
type CustomerSummary struct {
	CustomerID       string         `json:"customerId"`
	CustomerName     string         `json:"customerName"`
	TransactionCount int            `json:"transactionCount"`
	TotalPoints      int64          `json:"totalPoints"`
	MonthlyPoints    *MonthlyPoints `json:"monthlyPoints"`
}

// Summarize builds one summary per customer, in first-seen order. The name
// is the first one seen for the customer id.
func (e *Engine) Summarize(txs []model.Transaction) []CustomerSummary {
	groups := make(map[string][]model.Transaction)
	for _, tx := range txs {
		groups[tx.CustomerID] = append(groups[tx.CustomerID], tx)
	}

	customers := model.UniqueCustomers(txs)
	out := make([]CustomerSummary, 0, len(customers))
	for _, c := range customers {
		group := groups[c.CustomerID]
		total, byMonth := e.Tally(e.EnrichWithPoints(group))
		out = append(out, CustomerSummary{
			CustomerID:       c.CustomerID,
			CustomerName:     c.CustomerName,
			TransactionCount: len(group),
			TotalPoints:      total,
			MonthlyPoints:    byMonth,
		})
	}
	return out
}

// Summarize summarizes with DefaultTiers.
func Summarize(txs []model.Transaction) []CustomerSummary {
	return defaultEngine.Summarize(txs)
}
