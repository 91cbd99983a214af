package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a purchase amount as it arrived on the wire.
//
// Numbers and numeric strings decode as Valid. null, booleans, objects and
// non-numeric strings decode as not Valid without returning an error. The raw
// JSON is retained so that re-encoding a record reproduces the original value.
type Amount struct {
	Value decimal.Decimal
	Valid bool

	raw json.RawMessage
}

// Amounts are clamped to ±MaxAmount. Non-zero magnitudes below 1e-20 read
// as 0, and digits past the 20th decimal place are truncated. Both keep the
// exponent small enough that tier arithmetic never expands a huge power of ten.
// Literals longer than maxLiteral bytes are not amounts.
const (
	maxMagnitude = 30
	minMagnitude = -20
	maxLiteral   = 64
)

// MaxAmount is the largest magnitude an Amount carries.
var MaxAmount = decimal.New(1, maxMagnitude)

// BoundDecimal clamps d into the range amounts are priced in. The result is
// monotone in d: a larger input never yields a smaller output.
func BoundDecimal(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	mag := int64(d.NumDigits()) + int64(d.Exponent())
	switch {
	case mag > maxMagnitude:
		if d.IsNegative() {
			return MaxAmount.Neg()
		}
		return MaxAmount
	case mag < minMagnitude:
		return decimal.Zero
	case int64(d.Exponent()) < minMagnitude:
		return d.Truncate(-minMagnitude)
	}
	return d
}

// NewAmount builds a valid amount from a float. NaN and infinities are invalid.
func NewAmount(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Amount{Value: BoundDecimal(decimal.NewFromFloat(v)), Valid: true}
}

// ParseAmount reads a numeric string. Empty or non-numeric input is invalid.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	d, ok := parseDecimal(s)
	if !ok {
		return Amount{}
	}
	return Amount{Value: d, Valid: true}
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	if len(s) > maxLiteral {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return BoundDecimal(d), true
}

// AmountFromJSON decodes raw JSON the same way a Transaction field would.
func AmountFromJSON(data []byte) Amount {
	var a Amount
	_ = a.UnmarshalJSON(data)
	return a
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*a = Amount{raw: append(json.RawMessage(nil), trimmed...)}

	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		a.raw = nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			parsed := ParseAmount(s)
			a.Value, a.Valid = parsed.Value, parsed.Valid
		}
	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		a.Value, a.Valid = parseDecimal(string(trimmed))
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}

// String renders the numeric value, or "" when invalid.
func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	return a.Value.String()
}
