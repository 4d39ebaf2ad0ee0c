package cqrs

import (
	"context"
	"errors"
	"testing"

	"finance-predictor/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRoundTrip(t *testing.T) {
	srv, e, _, seen := newTestServer(t)
	c := NewClient(srv.URL+"/", e, nil)
	ctx := context.Background()

	var status statusResult
	require.NoError(t, c.Send(ctx, statusQuery{}, &status))
	assert.Equal(t, "OK", status.Status)

	year := 2023
	var echoed searchQuery
	require.NoError(t, c.Send(ctx, searchQuery{Year: &year, Account: "savings"}, &echoed))
	require.NotNil(t, echoed.Year)
	assert.Equal(t, 2023, *echoed.Year)
	assert.Equal(t, "savings", echoed.Account)

	require.NoError(t, c.Send(ctx, assignCommand{TransactionId: 5, CategoryId: 2}, nil))
	assert.Contains(t, *seen, any(assignCommand{TransactionId: 5, CategoryId: 2}))
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	srv, e, _, _ := newTestServer(t)
	c := NewClient(srv.URL, e, nil)

	err := c.Send(context.Background(), renameCommand{Id: 1}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	assert.Equal(t, "Category name is required.", err.Error())
}

func TestClientRejectsUndeclaredType(t *testing.T) {
	c := NewClient("http://localhost", NewEndpoints(), nil)
	assert.Error(t, c.Send(context.Background(), ping{}, nil))
}

func TestQueryStringSkipsZeroAndRouteFields(t *testing.T) {
	q := QueryString(assignCommand{TransactionId: 4, CategoryId: 9}, []string{"TransactionId"})
	assert.Equal(t, "CategoryId=9", q)
	assert.Empty(t, QueryString(statusQuery{}, nil))
}
