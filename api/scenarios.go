/*
scenarios.go - Demo dataset loaders for testing and demonstrations

PURPOSE:

	Provides pre-built transaction sets that populate the database with
	realistic data for demos and UI development. Each scenario exercises a
	different part of the rewards and paging behavior.

AVAILABLE SCENARIOS:

	sample:      5 customers over three months, every tier represented
	edge-cases:  null, negative, textual and missing amounts; an undated record
	many-customers: 64 generated customers, enough for several customer pages

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Load the scenario's transactions (embedded JSON or generated)
 3. Save them through the store, in order

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "edge-cases"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - scenarios/*.json: embedded datasets
  - handlers.go: ResetDatabase
*/
package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/reward-points/model"
	"github.com/warp/reward-points/source"
)

//go:embed scenarios/*.json
var scenarioFiles embed.FS

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "sample",
		Name:        "Sample Customers",
		Description: "Five customers across January to March, covering every points tier",
	},
	{
		ID:          "edge-cases",
		Name:        "Dirty Data",
		Description: "Malformed amounts and dates that must earn zero points without breaking totals",
	},
	{
		ID:          "many-customers",
		Name:        "Many Customers",
		Description: "64 customers with two purchases each, for exercising pagination",
	},
}

// scenarioSource returns the transactions of a scenario.
func scenarioSource(id string) (source.Source, bool) {
	switch id {
	case "sample", "edge-cases":
		return source.Func(func(ctx context.Context) ([]model.Transaction, error) {
			data, err := scenarioFiles.ReadFile("scenarios/" + id + ".json")
			if err != nil {
				return nil, err
			}
			return model.ParseTransactions(data), nil
		}), true
	case "many-customers":
		return source.Func(func(ctx context.Context) ([]model.Transaction, error) {
			return manyCustomers(64), nil
		}), true
	default:
		return nil, false
	}
}

// manyCustomers generates n customers with two purchases each. Amounts
// cycle through all three tiers.
func manyCustomers(n int) []model.Transaction {
	amounts := []float64{35, 65.5, 100, 140.25, 210}
	txs := make([]model.Transaction, 0, n*2)
	for i := 0; i < n; i++ {
		for j := 0; j < 2; j++ {
			seq := i*2 + j
			txs = append(txs, model.Transaction{
				CustomerID:    fmt.Sprintf("C%03d", i+1),
				CustomerName:  fmt.Sprintf("Customer %03d", i+1),
				TransactionID: fmt.Sprintf("G%04d", seq+1),
				Amount:        model.NewAmount(amounts[seq%len(amounts)]),
				Date:          fmt.Sprintf("2025-%02d-%02d", j+1, i%28+1),
			})
		}
	}
	return txs
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.getCurrentScenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	src, ok := scenarioSource(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")

	n, err := source.Seed(ctx, src, h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setCurrentScenario(req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "scenario": req.ScenarioID, "transactions": n})
}
