package rewards

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/reward-points/model"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine prices amounts against a fixed Tiers schedule. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	tiers    Tiers
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTiers replaces the default schedule.
func WithTiers(t Tiers) Option {
	return func(e *Engine) { e.tiers = t }
}

// WithObserver installs a diagnostic callback.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine using DefaultTiers unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{tiers: DefaultTiers()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tiers returns the schedule in use.
func (e *Engine) Tiers() Tiers { return e.tiers }

func (e *Engine) emit(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

// =============================================================================
// POINTS FOR AMOUNT
// =============================================================================

// PointsForAmount converts an amount into points.
//
// Accepted inputs are Go numeric types, decimal.Decimal, model.Amount,
// json.Number and numeric strings. Every other input, and any value that is
// NaN, infinite, zero or negative, is worth 0.
func (e *Engine) PointsForAmount(amount any) int64 {
	d, ok := toDecimal(amount)
	if !ok {
		return 0
	}
	return e.tiers.points(d)
}

func (t Tiers) points(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}

	var raw decimal.Decimal
	switch {
	case amount.GreaterThan(t.UpperThreshold):
		over := amount.Sub(t.UpperThreshold).Mul(t.UpperRate)
		band := t.UpperThreshold.Sub(t.LowerThreshold).Mul(t.LowerRate)
		raw = over.Add(band)
	case amount.GreaterThan(t.LowerThreshold):
		raw = amount.Sub(t.LowerThreshold).Mul(t.LowerRate)
	default:
		return 0
	}

	// Round rounds half away from zero, which is half up for positive values.
	rounded := raw.Round(0)
	if !rounded.IsPositive() {
		return 0
	}
	if rounded.GreaterThan(maxPoints) {
		return math.MaxInt64
	}
	return rounded.IntPart()
}

var maxPoints = decimal.NewFromInt(math.MaxInt64)

// addPoints adds without wrapping, saturating at the int64 limits.
func addPoints(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// toDecimal coerces the loosely typed inputs PointsForAmount accepts.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case model.Amount:
		return model.BoundDecimal(x.Value), x.Valid
	case *model.Amount:
		if x == nil {
			return decimal.Zero, false
		}
		return model.BoundDecimal(x.Value), x.Valid
	case decimal.Decimal:
		return model.BoundDecimal(x), true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return model.BoundDecimal(*x), true
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return fromUint(uint64(x)), true
	case uint8:
		return fromUint(uint64(x)), true
	case uint16:
		return fromUint(uint64(x)), true
	case uint32:
		return fromUint(uint64(x)), true
	case uint64:
		return fromUint(x), true
	case json.Number:
		a := model.ParseAmount(string(x))
		return a.Value, a.Valid
	case string:
		a := model.ParseAmount(strings.TrimSpace(x))
		return a.Value, a.Valid
	default:
		return decimal.Zero, false
	}
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return model.BoundDecimal(decimal.NewFromFloat(f)), true
}

// pointsFor prices a single transaction and reports it to the observer.
func (e *Engine) pointsFor(tx model.Transaction) int64 {
	if !tx.Amount.Valid {
		e.emit(Event{Kind: EventInvalidAmount, TransactionID: tx.TransactionID})
		return 0
	}
	pts := e.tiers.points(model.BoundDecimal(tx.Amount.Value))
	month, _ := tx.Month()
	e.emit(Event{
		Kind:          EventPoints,
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount.String(),
		Month:         month,
		Points:        pts,
	})
	return pts
}

// =============================================================================
// AGGREGATIONS
// =============================================================================

// TotalPoints sums the points of every transaction. A nil slice is worth 0.
func (e *Engine) TotalPoints(txs []model.Transaction) int64 {
	var total int64
	for _, tx := range txs {
		total = addPoints(total, e.pointsFor(tx))
	}
	return total
}

// PointsByMonth groups points into "YYYY-MM" buckets in first-seen order.
// Transactions whose date cannot be parsed are left out of every bucket.
func (e *Engine) PointsByMonth(txs []model.Transaction) *MonthlyPoints {
	out := NewMonthlyPoints()
	for _, tx := range txs {
		month, ok := tx.Month()
		if !ok {
			e.emit(Event{Kind: EventSkippedDate, TransactionID: tx.TransactionID, Date: tx.Date})
			continue
		}
		out.Add(month, e.pointsFor(tx))
	}
	return out
}

// Tally totals transactions that were already priced by EnrichWithPoints,
// without pricing them again. It returns the same values TotalPoints and
// PointsByMonth would for the underlying transactions.
func (e *Engine) Tally(priced []TransactionWithPoints) (int64, *MonthlyPoints) {
	var total int64
	byMonth := NewMonthlyPoints()
	for _, p := range priced {
		total = addPoints(total, p.RewardPoints)
		month, ok := p.Month()
		if !ok {
			e.emit(Event{Kind: EventSkippedDate, TransactionID: p.TransactionID, Date: p.Date})
			continue
		}
		byMonth.Add(month, p.RewardPoints)
	}
	return total, byMonth
}

// EnrichWithPoints returns a copy of each transaction with its points, in
// input order. The input slice is not modified.
func (e *Engine) EnrichWithPoints(txs []model.Transaction) []TransactionWithPoints {
	out := make([]TransactionWithPoints, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionWithPoints{
			Transaction:  tx,
			RewardPoints: e.pointsFor(tx),
		})
	}
	return out
}

// =============================================================================
// PACKAGE-LEVEL HELPERS (default tiers, no observer)
// =============================================================================

var defaultEngine = NewEngine()

// PointsForAmount prices amount with DefaultTiers.
func PointsForAmount(amount any) int64 { return defaultEngine.PointsForAmount(amount) }

// TotalPoints sums points with DefaultTiers.
func TotalPoints(txs []model.Transaction) int64 { return defaultEngine.TotalPoints(txs) }

// PointsByMonth buckets points with DefaultTiers.
func PointsByMonth(txs []model.Transaction) *MonthlyPoints { return defaultEngine.PointsByMonth(txs) }

// EnrichWithPoints enriches transactions with DefaultTiers.
func EnrichWithPoints(txs []model.Transaction) []TransactionWithPoints {
	return defaultEngine.EnrichWithPoints(txs)
}
