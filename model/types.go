/*
Package model defines the purchase records the rewards service works on.

PURPOSE:
  Transactions arrive from JSON files, HTTP imports, and the sqlite cache.
  None of those sources can be trusted to be well formed, so decoding here is
  permissive: a bad amount or a bad date never fails a whole document, it
  just produces a record that earns zero points.

KEY TYPES:
  - Transaction: one purchase (customer, id, amount, ISO date)
  - Amount:      tolerant numeric value that remembers its raw JSON
  - Customer:    customer identity derived from transactions
  - Filter:      customer / month / free-text narrowing used by the API

JSON SHAPE:
  {
    "customerId":    "C001",
    "customerName":  "Ada Lovelace",
    "transactionId": "T-1001",
    "amount":        120.25,
    "date":          "2025-01-15"
  }

SEE ALSO:
  - amount.go: Amount decoding rules
  - parse.go:  Document-level tolerant parsing
  - rewards/:  Points computed from these records
*/
package model

import (
	"fmt"
	"time"
)

// =============================================================================
// TRANSACTION
// =============================================================================

// Transaction is a single purchase event. Records are treated as immutable
// values; derived data is always returned in new records.
type Transaction struct {
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	TransactionID string `json:"transactionId"`
	Amount        Amount `json:"amount"`
	Date          string `json:"date"`
}

// Month returns the "YYYY-MM" bucket key of the transaction date.
func (t Transaction) Month() (string, bool) {
	return MonthKey(t.Date)
}

// dateLayouts are tried in order when reading a transaction date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses an ISO calendar date, with or without a time part.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthKey derives the zero-padded "YYYY-MM" key for an ISO date string.
// The bool is false when the date cannot be parsed.
func MonthKey(date string) (string, bool) {
	t, ok := ParseDate(date)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())), true
}

// =============================================================================
// CUSTOMER
// =============================================================================

// Customer is the identity part of a transaction.
type Customer struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
}

// UniqueCustomers returns one Customer per customerId in first-seen order.
// The first name seen for an id wins.
func UniqueCustomers(txs []Transaction) []Customer {
	seen := make(map[string]struct{}, len(txs))
	customers := make([]Customer, 0)
	for _, tx := range txs {
		if _, ok := seen[tx.CustomerID]; ok {
			continue
		}
		seen[tx.CustomerID] = struct{}{}
		customers = append(customers, Customer{
			CustomerID:   tx.CustomerID,
			CustomerName: tx.CustomerName,
		})
	}
	return customers
}
