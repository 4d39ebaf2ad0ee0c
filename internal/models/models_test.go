package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTypeUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want FieldType
	}{
		{`1`, FieldTitle},
		{`2`, FieldCounterparty},
		{`"Counterparty"`, FieldCounterparty},
		{`"title"`, FieldTitle},
		{`"2"`, FieldCounterparty},
		{`7`, FieldType(7)},
	}
	for _, tt := range tests {
		var f FieldType
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f), tt.in)
		assert.Equal(t, tt.want, f, tt.in)
	}

	var f FieldType
	assert.Error(t, json.Unmarshal([]byte(`"amount"`), &f))
}

func TestTransactionUnmarshalAcceptsPlainDates(t *testing.T) {
	body := `{"transactionDate":"2024-03-05","bookingDate":"2024-03-06T00:00:00Z",
		"title":"Coffee","amount":"-12.50","category":null,"balanceAfterTransaction":null}`

	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(body), &tx))

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.TransactionDate)
	require.NotNil(t, tx.BookingDate)
	assert.Equal(t, 6, tx.BookingDate.Day())
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-12.50")))
	assert.False(t, tx.BalanceAfter.Valid)
	assert.True(t, tx.IsUncategorized())
}

func TestIsUncategorized(t *testing.T) {
	assert.True(t, Transaction{Category: ""}.IsUncategorized())
	assert.True(t, Transaction{Category: "  \t"}.IsUncategorized())
	assert.False(t, Transaction{Category: "Food"}.IsUncategorized())
}

func TestRawMarketDataDay(t *testing.T) {
	assert.Equal(t, 2024, RawMarketData{Date: "2024-01-02"}.Day().Year())
	assert.True(t, RawMarketData{Date: "bad"}.Day().IsZero())
}
