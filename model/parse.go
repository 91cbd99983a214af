package model

import (
	"encoding/json"
	"strings"
)

// ParseTransactions decodes a JSON document into transactions.
//
// A document that is not an array yields an empty slice. Each element is
// decoded on its own: an element that is not an object becomes a zero record,
// and a field of the wrong type is left empty while the other fields of that
// element are still filled in.
func ParseTransactions(data []byte) []Transaction {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return []Transaction{}
	}

	txs := make([]Transaction, 0, len(elems))
	for _, elem := range elems {
		var tx Transaction
		_ = json.Unmarshal(elem, &tx)
		txs = append(txs, tx)
	}
	return txs
}

// =============================================================================
// FILTERING
// =============================================================================

// Filter narrows a transaction list. Empty fields match everything.
type Filter struct {
	CustomerID string
	Month      string // "YYYY-MM"
	Query      string // case-insensitive match on customer name, customer id or transaction id
}

// IsZero reports whether the filter matches every transaction.
func (f Filter) IsZero() bool {
	return f.CustomerID == "" && f.Month == "" && strings.TrimSpace(f.Query) == ""
}

// Match reports whether tx passes the filter.
func (f Filter) Match(tx Transaction) bool {
	if f.CustomerID != "" && tx.CustomerID != f.CustomerID {
		return false
	}
	if f.Month != "" {
		month, ok := tx.Month()
		if !ok || month != f.Month {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(tx.CustomerName), q) &&
			!strings.Contains(strings.ToLower(tx.CustomerID), q) &&
			!strings.Contains(strings.ToLower(tx.TransactionID), q) {
			return false
		}
	}
	return true
}

// Apply returns the matching transactions in their original order.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
