package sqlite_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/reward-points/model"
	"github.com/warp/reward-points/rewards"
	"github.com/warp/reward-points/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDoc() []model.Transaction {
	return model.ParseTransactions([]byte(`[
		{"customerId":"C1","customerName":"Ada","transactionId":"T1","amount":120,"date":"2025-01-15"},
		{"customerId":"C2","customerName":"Bob","transactionId":"T2","amount":"75.75","date":"2025-01-20"},
		{"customerId":"C1","customerName":"Ada","transactionId":"T3","amount":"abc","date":"2025-02-01"},
		{"customerId":"C3","customerName":"Cy","transactionId":"T4","amount":null,"date":"bad"}
	]`))
}

// =============================================================================
// TESTS
// =============================================================================

func TestStore_SaveAndListPreservesOrderAndAmounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.SaveTransactions(ctx, sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 4)

	assert.Equal(t, []string{"T1", "T2", "T3", "T4"},
		[]string{txs[0].TransactionID, txs[1].TransactionID, txs[2].TransactionID, txs[3].TransactionID})

	// Raw amounts survive the round trip, including the malformed ones.
	out, err := json.Marshal(txs)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"customerId":"C1","customerName":"Ada","transactionId":"T1","amount":120,"date":"2025-01-15"},
		{"customerId":"C2","customerName":"Bob","transactionId":"T2","amount":"75.75","date":"2025-01-20"},
		{"customerId":"C1","customerName":"Ada","transactionId":"T3","amount":"abc","date":"2025-02-01"},
		{"customerId":"C3","customerName":"Cy","transactionId":"T4","amount":null,"date":"bad"}
	]`, string(out))

	assert.Equal(t, int64(90+26), rewards.TotalPoints(txs))
}

func TestStore_UpsertKeepsPosition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, sampleDoc())
	require.NoError(t, err)

	// GIVEN: T1 re-imported with a new amount after the others
	_, err = store.SaveTransactions(ctx, []model.Transaction{{
		CustomerID: "C1", CustomerName: "Ada", TransactionID: "T1",
		Amount: model.NewAmount(200), Date: "2025-01-15",
	}})
	require.NoError(t, err)

	// THEN: T1 is updated in place, not appended
	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 4)
	assert.Equal(t, "T1", txs[0].TransactionID)
	assert.Equal(t, "200", txs[0].Amount.String())

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestStore_GeneratesMissingIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, []model.Transaction{
		{CustomerID: "C1", Amount: model.NewAmount(60), Date: "2025-01-01"},
		{CustomerID: "C1", Amount: model.NewAmount(70), Date: "2025-01-02"},
	})
	require.NoError(t, err)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		_, err := uuid.Parse(tx.TransactionID)
		assert.NoError(t, err, "generated id %q should be a UUID", tx.TransactionID)
	}
	assert.NotEqual(t, txs[0].TransactionID, txs[1].TransactionID)
}

func TestStore_ListByCustomerAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.SaveTransactions(ctx, sampleDoc())
	require.NoError(t, err)

	txs, err := store.ListByCustomer(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "T1", txs[0].TransactionID)
	assert.Equal(t, "T3", txs[1].TransactionID)

	none, err := store.ListByCustomer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := store.GetTransaction(ctx, "T2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bob", got.CustomerName)

	missing, err := store.GetTransaction(ctx, "T99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.SaveTransactions(ctx, sampleDoc())
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	txs, err := store.Transactions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestStore_ReopenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	_, err = store.SaveTransactions(ctx, sampleDoc())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Migrations are already applied; reopening must not fail.
	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
