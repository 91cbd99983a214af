/*
Package source supplies transactions to the API.

PURPOSE:
  The rewards engine is pure; everything that can fail (reading files,
  waiting on a slow backend) lives here. A Source hands back an ordered
  slice of transactions or an error, and the API decides what to do with it.

IMPLEMENTATIONS:
  File:    a JSON document on disk, parsed permissively
  Delayed: wraps another Source and waits before answering, simulating a
           slow network fetch; honours context cancellation
  Func:    adapts a function
  *sqlite.Store satisfies Source directly.

CUSTOMER LOOKUP:
  ByCustomer uses a source's own ListByCustomer when it has one (the store
  answers with an indexed query) and filters the full list otherwise.
  Delayed passes the lookup through after its wait.

SEEDING:
  Seed copies everything a Source returns into a Saver (the sqlite store).

SEE ALSO:
  - model/parse.go:       permissive document parsing
  - store/sqlite:         the Store the API reads through
  - cmd/server/main.go:   wiring
*/
package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/warp/reward-points/model"
)

// Source returns transactions in their natural order.
type Source interface {
	Transactions(ctx context.Context) ([]model.Transaction, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) ([]model.Transaction, error)

func (f Func) Transactions(ctx context.Context) ([]model.Transaction, error) { return f(ctx) }

// =============================================================================
// FILE
// =============================================================================

// File reads a JSON array of transactions. A document that is not an array
// yields no transactions; only I/O failures are errors.
type File struct {
	Path string
}

func (f File) Transactions(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read transactions file: %w", err)
	}
	return model.ParseTransactions(data), nil
}

// =============================================================================
// DELAYED
// =============================================================================

// Delayed waits Delay before delegating to Source.
type Delayed struct {
	Source Source
	Delay  time.Duration
}

func (d Delayed) Transactions(ctx context.Context) ([]model.Transaction, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.Source.Transactions(ctx)
}

func (d Delayed) wait(ctx context.Context) error {
	if d.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// =============================================================================
// CUSTOMER LOOKUP
// =============================================================================

// CustomerLister is implemented by sources that can look up one customer
// without loading everything.
type CustomerLister interface {
	ListByCustomer(ctx context.Context, customerID string) ([]model.Transaction, error)
}

// ByCustomer returns the transactions of customerID in source order.
func ByCustomer(ctx context.Context, src Source, customerID string) ([]model.Transaction, error) {
	if l, ok := src.(CustomerLister); ok {
		return l.ListByCustomer(ctx, customerID)
	}
	txs, err := src.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return model.Filter{CustomerID: customerID}.Apply(txs), nil
}

// ListByCustomer waits Delay, then looks up customerID in Source.
func (d Delayed) ListByCustomer(ctx context.Context, customerID string) ([]model.Transaction, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return ByCustomer(ctx, d.Source, customerID)
}

// =============================================================================
// SEEDING
// =============================================================================

// Saver persists transactions.
type Saver interface {
	SaveTransactions(ctx context.Context, txs []model.Transaction) (int, error)
}

// Seed copies all transactions from src into dst and returns how many were saved.
func Seed(ctx context.Context, src Source, dst Saver) (int, error) {
	txs, err := src.Transactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load seed transactions: %w", err)
	}
	n, err := dst.SaveTransactions(ctx, txs)
	if err != nil {
		return 0, fmt.Errorf("save seed transactions: %w", err)
	}
	return n, nil
}
