/*
handlers.go - HTTP API handlers for the rewards service

PURPOSE:
  Exposes reward points via REST. Handlers read transactions from a Source,
  run them through the rewards engine and the pagination helpers, and write
  JSON. All points are computed on read.

ENDPOINTS:
  Transactions:
    GET    /api/transactions           Enriched transactions, filtered and paged
    POST   /api/transactions           Import a JSON array of transactions
    GET    /api/transactions/{id}      One transaction with its points

  Customers:
    GET    /api/customers              Unique customers, paged
    GET    /api/customers/{id}/rewards Totals, monthly points, transactions

  Rewards:
    GET    /api/rewards                Per-customer summaries, paged
    GET    /api/points?amount=         Points calculator
    GET    /api/config                 Tiers and paging defaults

  Admin:
    POST   /api/admin/reset            Delete every transaction
    POST   /api/admin/reload           Re-import the configured seed file

QUERY PARAMETERS (list endpoints):
  page       1-based page, clamped to the last page (default 1)
  pageSize   items per page, 1..100 (default from config)
  customerId exact customer filter      (transactions)
  month      "YYYY-MM" filter           (transactions)
  q          case-insensitive search    (transactions, customers, rewards)

  Unparseable numbers fall back to defaults instead of failing the request,
  matching the engine's treatment of bad data.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed request body
  - 404: Unknown customer or transaction
  - 413: Import body over 10 MB
  - 504: Source did not answer before the request context ended
  - 500: Store/source failures

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo dataset loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/reward-points/logging"
	"github.com/warp/reward-points/model"
	"github.com/warp/reward-points/paging"
	"github.com/warp/reward-points/rewards"
	"github.com/warp/reward-points/source"
	"github.com/warp/reward-points/store/sqlite"
)

const (
	maxPageSize   = 100
	maxImportSize = 10 << 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HandlerConfig carries optional collaborators. Zero values get defaults.
type HandlerConfig struct {
	Engine          *rewards.Engine // default: rewards.NewEngine()
	Source          source.Source   // read path; default: the store
	ItemsPerPage    int
	MaxPagesDisplay int
	SeedFile        string // used by /api/admin/reload
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *rewards.Engine
	Source source.Source

	itemsPerPage    int
	maxPagesDisplay int
	seedFile        string

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, cfg HandlerConfig) *Handler {
	h := &Handler{
		Store:           store,
		Engine:          cfg.Engine,
		Source:          cfg.Source,
		itemsPerPage:    cfg.ItemsPerPage,
		maxPagesDisplay: cfg.MaxPagesDisplay,
		seedFile:        cfg.SeedFile,
	}
	if h.Engine == nil {
		h.Engine = rewards.NewEngine()
	}
	if h.Source == nil {
		h.Source = store
	}
	if h.itemsPerPage < 1 {
		h.itemsPerPage = paging.DefaultItemsPerPage
	}
	if h.maxPagesDisplay < 1 {
		h.maxPagesDisplay = paging.DefaultMaxPagesDisplay
	}
	return h
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns enriched transactions matching the filter.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadTransactions(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filtered := model.Filter{
		CustomerID: q.Get("customerId"),
		Month:      q.Get("month"),
		Query:      q.Get("q"),
	}.Apply(txs)

	page, size := h.pageParams(r)
	priced := h.Engine.EnrichWithPoints(filtered)
	total, byMonth := h.Engine.Tally(priced)

	writeJSON(w, http.StatusOK, TransactionsPageDTO{
		PageDTO:       newPage(paging.Paginate(priced, page, size), h.maxPagesDisplay),
		TotalPoints:   total,
		MonthlyPoints: byMonth,
	})
}

// GetTransaction returns one transaction with its points.
// GET /api/transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.Store.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transaction", err)
		return
	}
	if tx == nil {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, h.Engine.EnrichWithPoints([]model.Transaction{*tx})[0])
}

// ImportTransactions stores a JSON array of transactions. Records with bad
// amounts or dates are kept; they simply earn no points.
// POST /api/transactions
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed) {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON array of transactions", nil)
		return
	}

	n, err := h.Store.SaveTransactions(r.Context(), model.ParseTransactions(trimmed))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import transactions", err)
		return
	}
	total, err := h.Store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count transactions", err)
		return
	}

	log := logging.FromContext(r.Context())
	log.Info().Int("imported", n).Int("total", total).Msg("transactions imported")

	writeJSON(w, http.StatusCreated, ImportResultDTO{Imported: n, Total: total})
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns unique customers in first-seen order.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadTransactions(w, r)
	if !ok {
		return
	}

	filtered := model.Filter{Query: r.URL.Query().Get("q")}.Apply(txs)
	page, size := h.pageParams(r)

	writeJSON(w, http.StatusOK, newPage(paging.UniqueCustomersPaginated(filtered, page, size), h.maxPagesDisplay))
}

// GetCustomerRewards returns one customer's points breakdown.
// GET /api/customers/{id}/rewards
func (h *Handler) GetCustomerRewards(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	mine, err := source.ByCustomer(r.Context(), h.Source, id)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	if len(mine) == 0 {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}

	priced := h.Engine.EnrichWithPoints(mine)
	total, byMonth := h.Engine.Tally(priced)

	writeJSON(w, http.StatusOK, CustomerRewardsDTO{
		Customer:         model.UniqueCustomers(mine)[0],
		TransactionCount: len(mine),
		TotalPoints:      total,
		MonthlyPoints:    byMonth,
		Transactions:     priced,
	})
}

// =============================================================================
// REWARDS HANDLERS
// =============================================================================

// ListRewards returns per-customer summaries.
// GET /api/rewards
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadTransactions(w, r)
	if !ok {
		return
	}

	filtered := model.Filter{Query: r.URL.Query().Get("q")}.Apply(txs)
	page, size := h.pageParams(r)

	writeJSON(w, http.StatusOK, newPage(paging.Paginate(h.Engine.Summarize(filtered), page, size), h.maxPagesDisplay))
}

// GetPoints prices a single amount.
// GET /api/points?amount=120.25
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	amount := r.URL.Query().Get("amount")
	writeJSON(w, http.StatusOK, PointsDTO{
		Amount: amount,
		Points: h.Engine.PointsForAmount(amount),
	})
}

// GetConfig returns the active tiers and paging defaults.
// GET /api/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	t := h.Engine.Tiers()
	writeJSON(w, http.StatusOK, ConfigDTO{
		Tiers: TiersDTO{
			LowerThreshold: t.LowerThreshold.String(),
			UpperThreshold: t.UpperThreshold.String(),
			LowerRate:      t.LowerRate.String(),
			UpperRate:      t.UpperRate.String(),
		},
		ItemsPerPage:    h.itemsPerPage,
		MaxPagesDisplay: h.maxPagesDisplay,
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data.
// POST /api/admin/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.setCurrentScenario("")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReloadSeed re-imports the configured seed file on top of the current data.
// POST /api/admin/reload
func (h *Handler) ReloadSeed(w http.ResponseWriter, r *http.Request) {
	if h.seedFile == "" {
		writeError(w, http.StatusBadRequest, "No seed file configured", nil)
		return
	}

	n, err := source.Seed(r.Context(), source.File{Path: h.seedFile}, h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload seed file", err)
		return
	}
	total, err := h.Store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, ImportResultDTO{Imported: n, Total: total})
}

// =============================================================================
// HELPERS
// =============================================================================

// loadTransactions reads from the Source, writing an error response on failure.
func (h *Handler) loadTransactions(w http.ResponseWriter, r *http.Request) ([]model.Transaction, bool) {
	txs, err := h.Source.Transactions(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return nil, false
	}
	return txs, true
}

// writeSourceError maps a Source failure to 504 when the request ran out of
// time and 500 otherwise.
func writeSourceError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusGatewayTimeout, "Timed out loading transactions", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
}

// pageParams reads page and pageSize, falling back to defaults.
func (h *Handler) pageParams(r *http.Request) (page, size int) {
	q := r.URL.Query()
	page = queryInt(q.Get("page"), 1)
	size = queryInt(q.Get("pageSize"), h.itemsPerPage)
	if size < 1 {
		size = h.itemsPerPage
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// newPage attaches the pager window to a page result.
func newPage[T any](result paging.Result[T], maxDisplay int) PageDTO[T] {
	return PageDTO[T]{
		Result: result,
		Pages:  paging.PageWindow(result.CurrentPage, result.TotalPages, maxDisplay),
	}
}

func queryInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

func (h *Handler) getCurrentScenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
