/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Transactions and
  customers use the same camelCase field names as the import format, so a
  browser client can feed API output straight back into an import.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Paging:
    PageDTO[T] (paging.Result plus the page-number window)

  Transactions:
    TransactionsPageDTO, ImportResultDTO

  Customers / rewards:
    CustomerRewardsDTO, PointsDTO, ConfigDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - paging/paging.go: Result
*/
package api

import (
	"github.com/warp/reward-points/model"
	"github.com/warp/reward-points/paging"
	"github.com/warp/reward-points/rewards"
)

// =============================================================================
// PAGING
// =============================================================================

// PageDTO is one page of T plus the page numbers to render in the pager.
type PageDTO[T any] struct {
	paging.Result[T]
	Pages []int `json:"pages"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionsPageDTO is a page of enriched transactions. The totals cover
// every transaction matching the filter, not just the current page.
type TransactionsPageDTO struct {
	PageDTO[rewards.TransactionWithPoints]
	TotalPoints   int64                  `json:"totalPoints"`
	MonthlyPoints *rewards.MonthlyPoints `json:"monthlyPoints"`
}

// ImportResultDTO reports how many transactions an import wrote.
type ImportResultDTO struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// =============================================================================
// CUSTOMERS & REWARDS
// =============================================================================

// CustomerRewardsDTO is the full rewards breakdown of one customer.
type CustomerRewardsDTO struct {
	model.Customer
	TransactionCount int                             `json:"transactionCount"`
	TotalPoints      int64                           `json:"totalPoints"`
	MonthlyPoints    *rewards.MonthlyPoints          `json:"monthlyPoints"`
	Transactions     []rewards.TransactionWithPoints `json:"transactions"`
}

// PointsDTO is the result of the points calculator.
type PointsDTO struct {
	Amount string `json:"amount"`
	Points int64  `json:"points"`
}

// TiersDTO describes the points schedule.
type TiersDTO struct {
	LowerThreshold string `json:"lowerThreshold"`
	UpperThreshold string `json:"upperThreshold"`
	LowerRate      string `json:"lowerRate"`
	UpperRate      string `json:"upperRate"`
}

// ConfigDTO exposes what the UI needs to render consistently with the server.
type ConfigDTO struct {
	Tiers           TiersDTO `json:"tiers"`
	ItemsPerPage    int      `json:"itemsPerPage"`
	MaxPagesDisplay int      `json:"maxPagesDisplay"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO describes a demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo dataset.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
