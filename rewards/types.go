/*
Package rewards computes loyalty reward points from purchase amounts.

PURPOSE:
  Converts a transaction amount into points using a three-tier schedule and
  aggregates those points over collections of transactions: a flat total,
  monthly buckets, per-transaction enrichment and per-customer summaries.

TIERS (defaults):
  amount <= 50          0 points
  50 < amount <= 100    1 point per dollar over 50
  amount > 100          2 points per dollar over 100, plus 50 for the 50-100 band

  points(120.25) = 2 * 20.25 + 50 = 90.5 -> 91

ROUNDING:
  Tier arithmetic is done in decimal.Decimal. The final value is rounded half
  up once; intermediate tier sums are never rounded. Aggregations round each
  transaction first and then sum.

INVALID INPUT:
  Nothing in this package returns an error. A missing, null, non-numeric,
  zero or negative amount is worth 0 points. An unparseable date removes the
  transaction from monthly bucketing only. Nil collections produce 0, an empty
  mapping, or an empty slice.

DIAGNOSTICS:
  An Observer can be injected with WithObserver. The engine reports every
  priced transaction and every record it had to skip. Without one the engine
  does no logging at all.

USAGE:
  engine := rewards.NewEngine(rewards.WithTiers(tiers))
  total := engine.TotalPoints(txs)
  byMonth := engine.PointsByMonth(txs)
  for _, month := range byMonth.Keys() { ... }

SEE ALSO:
  - engine.go:  Engine and the four core operations
  - summary.go: Per-customer aggregation
  - model/:     Transaction and Amount types
*/
package rewards

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/reward-points/model"
)

// =============================================================================
// TIERS
// =============================================================================

// Tiers configures the piecewise-linear points schedule.
type Tiers struct {
	LowerThreshold decimal.Decimal // amounts at or below earn nothing
	UpperThreshold decimal.Decimal // amounts above earn UpperRate per dollar
	LowerRate      decimal.Decimal // points per dollar between the thresholds
	UpperRate      decimal.Decimal // points per dollar above UpperThreshold
}

// DefaultTiers returns the 50/100 schedule at 1 and 2 points per dollar.
func DefaultTiers() Tiers {
	return Tiers{
		LowerThreshold: decimal.NewFromInt(50),
		UpperThreshold: decimal.NewFromInt(100),
		LowerRate:      decimal.NewFromInt(1),
		UpperRate:      decimal.NewFromInt(2),
	}
}

// Validate checks that the schedule is non-decreasing and non-negative.
func (t Tiers) Validate() error {
	var errs []error
	if t.LowerThreshold.IsNegative() {
		errs = append(errs, fmt.Errorf("lower threshold %s is negative", t.LowerThreshold))
	}
	if t.UpperThreshold.LessThan(t.LowerThreshold) {
		errs = append(errs, fmt.Errorf("upper threshold %s is below lower threshold %s",
			t.UpperThreshold, t.LowerThreshold))
	}
	if t.LowerRate.IsNegative() {
		errs = append(errs, fmt.Errorf("lower rate %s is negative", t.LowerRate))
	}
	if t.UpperRate.IsNegative() {
		errs = append(errs, fmt.Errorf("upper rate %s is negative", t.UpperRate))
	}
	return errors.Join(errs...)
}

// =============================================================================
// OBSERVER
// =============================================================================

// EventKind classifies what the engine observed.
type EventKind string

const (
	EventPoints        EventKind = "points"         // amount priced
	EventInvalidAmount EventKind = "invalid_amount" // amount unusable, priced at 0
	EventSkippedDate   EventKind = "skipped_date"   // date unparseable, left out of monthly buckets
)

// Event is reported to an Observer. Fields not relevant to Kind are empty.
type Event struct {
	Kind          EventKind
	TransactionID string
	Amount        string
	Date          string
	Month         string // "YYYY-MM", empty when the date is unparseable
	Points        int64
}

// Observer receives diagnostic events. It must not retain or mutate engine inputs.
type Observer func(Event)

// =============================================================================
// RESULTS
// =============================================================================

// TransactionWithPoints is a transaction plus its derived points.
type TransactionWithPoints struct {
	model.Transaction
	RewardPoints int64 `json:"rewardPoints"`
}

// MonthlyPoints maps "YYYY-MM" to points, remembering the order in which
// months were first seen. It is not re-sorted by calendar.
type MonthlyPoints struct {
	keys   []string
	points map[string]int64
}

// NewMonthlyPoints returns an empty mapping.
func NewMonthlyPoints() *MonthlyPoints {
	return &MonthlyPoints{points: make(map[string]int64)}
}

// Add adds pts to month, creating the bucket on first use.
func (m *MonthlyPoints) Add(month string, pts int64) {
	if m.points == nil {
		m.points = make(map[string]int64)
	}
	if _, ok := m.points[month]; !ok {
		m.keys = append(m.keys, month)
	}
	m.points[month] = addPoints(m.points[month], pts)
}

// Get returns the points of month.
func (m *MonthlyPoints) Get(month string) (int64, bool) {
	pts, ok := m.points[month]
	return pts, ok
}

// Keys returns months in first-seen order.
func (m *MonthlyPoints) Keys() []string {
	return append([]string{}, m.keys...)
}

func (m *MonthlyPoints) Len() int { return len(m.keys) }

// Total sums every bucket.
func (m *MonthlyPoints) Total() int64 {
	var total int64
	for _, pts := range m.points {
		total = addPoints(total, pts)
	}
	return total
}

// Map returns a copy as a plain map. Ordering is lost.
func (m *MonthlyPoints) Map() map[string]int64 {
	out := make(map[string]int64, len(m.points))
	for k, v := range m.points {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes an object whose keys follow first-seen order.
func (m MonthlyPoints) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, month := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(month)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", m.points[month])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the document.
func (m *MonthlyPoints) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("monthly points: expected object, got %v", tok)
	}

	*m = MonthlyPoints{points: make(map[string]int64)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		month, _ := tok.(string)
		var pts int64
		if err := dec.Decode(&pts); err != nil {
			return fmt.Errorf("monthly points %q: %w", month, err)
		}
		m.Add(month, pts)
	}
	_, err = dec.Token()
	return err
}
