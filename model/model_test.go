package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/reward-points/model"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		value string
	}{
		{"number", `120.25`, true, "120.25"},
		{"integer", `75`, true, "75"},
		{"negative", `-50`, true, "-50"},
		{"numeric string", `"88.5"`, true, "88.5"},
		{"padded numeric string", `" 42 "`, true, "42"},
		{"null", `null`, false, ""},
		{"empty string", `""`, false, ""},
		{"word", `"abc"`, false, ""},
		{"boolean", `true`, false, ""},
		{"object", `{"v":1}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a model.Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.valid, a.Valid)
			assert.Equal(t, tt.value, a.String())
		})
	}
}

func TestAmount_ExtremeValuesAreBounded(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		value string
	}{
		{"huge exponent", `1e10000000`, true, model.MaxAmount.String()},
		{"huge negative", `-1e400`, true, model.MaxAmount.Neg().String()},
		{"huge exponent in string", `"1e400"`, true, model.MaxAmount.String()},
		{"tiny exponent", `1e-10000000`, true, "0"},
		{"long fraction truncated", `12.1234567890123456789012345`, true, "12.1234567890123456789"},
		{"overlong literal", strings.Repeat("9", 65), false, ""},
		{"exponent beyond int32", `1e99999999999`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := model.AmountFromJSON([]byte(tt.input))
			assert.Equal(t, tt.valid, a.Valid)
			assert.Equal(t, tt.value, a.String())
		})
	}
}

func TestParseAmount_Bounded(t *testing.T) {
	assert.True(t, model.ParseAmount("5e40").Value.Equal(model.MaxAmount))
	assert.True(t, model.ParseAmount("1e30").Value.Equal(model.MaxAmount))
	assert.True(t, model.ParseAmount("123.45").Value.Equal(model.ParseAmount("123.450").Value))
	assert.True(t, model.NewAmount(1e300).Value.Equal(model.MaxAmount))

	// Re-encoding still reproduces what arrived.
	out, err := json.Marshal(model.AmountFromJSON([]byte(`1e10000000`)))
	require.NoError(t, err)
	assert.Equal(t, `1e10000000`, string(out))
}

func TestAmount_RoundTripKeepsRawValue(t *testing.T) {
	// GIVEN: amounts in several shapes, including unusable ones
	// WHEN: decoding and re-encoding
	// THEN: the original JSON text is reproduced
	for _, raw := range []string{`120.50`, `"75"`, `"abc"`, `true`} {
		var a model.Amount
		require.NoError(t, json.Unmarshal([]byte(raw), &a))
		out, err := json.Marshal(a)
		require.NoError(t, err)
		assert.Equal(t, raw, string(out))
	}
}

func TestAmount_MarshalBuiltValues(t *testing.T) {
	out, err := json.Marshal(model.NewAmount(99.5))
	require.NoError(t, err)
	assert.Equal(t, "99.5", string(out))

	out, err = json.Marshal(model.Amount{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestNewAmount_NaNIsInvalid(t *testing.T) {
	zero := 0.0
	assert.False(t, model.NewAmount(zero/zero).Valid)
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		date string
		want string
		ok   bool
	}{
		{"2025-01-15", "2025-01", true},
		{"2025-12-31", "2025-12", true},
		{"2025-03-05T10:30:00Z", "2025-03", true},
		{"2025-03-05T10:30:00", "2025-03", true},
		{"2025-13-01", "", false},
		{"not-a-date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := model.MonthKey(tt.date)
		assert.Equal(t, tt.ok, ok, tt.date)
		assert.Equal(t, tt.want, got, tt.date)
	}
}

func TestParseTransactions(t *testing.T) {
	doc := `[
		{"customerId":"C1","customerName":"Ada","transactionId":"T1","amount":120,"date":"2025-01-15"},
		{"customerId":"C2","customerName":"Bob","transactionId":"T2","amount":"75.5","date":"2025-02-01"},
		{"customerId":7,"customerName":"Eve","transactionId":"T3","amount":null,"date":"2025-02-03"},
		"garbage"
	]`

	txs := model.ParseTransactions([]byte(doc))
	require.Len(t, txs, 4)

	assert.Equal(t, "C1", txs[0].CustomerID)
	assert.Equal(t, "120", txs[0].Amount.String())
	assert.Equal(t, "75.5", txs[1].Amount.String())

	// Wrong-typed field is dropped, the rest of the record survives.
	assert.Equal(t, "", txs[2].CustomerID)
	assert.Equal(t, "Eve", txs[2].CustomerName)
	assert.False(t, txs[2].Amount.Valid)

	assert.Equal(t, model.Transaction{}, txs[3])
}

func TestParseTransactions_NonArrayDocuments(t *testing.T) {
	for _, doc := range []string{`{}`, `null`, `"x"`, `42`, ``, `not json`} {
		txs := model.ParseTransactions([]byte(doc))
		assert.NotNil(t, txs, doc)
		assert.Empty(t, txs, doc)
	}
}

func TestUniqueCustomers_FirstSeenWins(t *testing.T) {
	txs := []model.Transaction{
		{CustomerID: "C2", CustomerName: "Bob"},
		{CustomerID: "C1", CustomerName: "Ada"},
		{CustomerID: "C2", CustomerName: "Robert"},
		{CustomerID: "C3", CustomerName: "Cy"},
	}

	got := model.UniqueCustomers(txs)
	assert.Equal(t, []model.Customer{
		{CustomerID: "C2", CustomerName: "Bob"},
		{CustomerID: "C1", CustomerName: "Ada"},
		{CustomerID: "C3", CustomerName: "Cy"},
	}, got)

	assert.Empty(t, model.UniqueCustomers(nil))
}

func TestFilter_Apply(t *testing.T) {
	txs := []model.Transaction{
		{CustomerID: "C1", CustomerName: "Ada Lovelace", TransactionID: "T1", Date: "2025-01-15"},
		{CustomerID: "C2", CustomerName: "Bob Smith", TransactionID: "T2", Date: "2025-01-20"},
		{CustomerID: "C1", CustomerName: "Ada Lovelace", TransactionID: "T3", Date: "2025-02-02"},
		{CustomerID: "C3", CustomerName: "Cy", TransactionID: "T4", Date: "bad"},
	}

	ids := func(txs []model.Transaction) []string {
		out := []string{}
		for _, tx := range txs {
			out = append(out, tx.TransactionID)
		}
		return out
	}

	assert.True(t, model.Filter{}.IsZero())
	assert.Equal(t, []string{"T1", "T2", "T3", "T4"}, ids(model.Filter{}.Apply(txs)))
	assert.Equal(t, []string{"T1", "T3"}, ids(model.Filter{CustomerID: "C1"}.Apply(txs)))
	assert.Equal(t, []string{"T1", "T2"}, ids(model.Filter{Month: "2025-01"}.Apply(txs)))
	assert.Equal(t, []string{"T2"}, ids(model.Filter{Query: "smith"}.Apply(txs)))
	assert.Equal(t, []string{"T3"}, ids(model.Filter{CustomerID: "C1", Month: "2025-02"}.Apply(txs)))
	assert.Empty(t, model.Filter{CustomerID: "C9"}.Apply(txs))
}
