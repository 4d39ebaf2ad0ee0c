package cqrs

import (
	"context"
	"errors"
	"testing"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{ Message string }
type pong struct{ Echo string }
type touch struct{ ID int }
type unregistered struct{}

func newTestMediator(t *testing.T) (*Mediator, *prometheus.CounterVec) {
	t.Helper()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_dispatch_total"}, []string{"request", "outcome"})
	m := NewMediator(WithLogger(logging.Discard()), WithDispatchCounter(counter))

	require.NoError(t, Handle(m, func(ctx context.Context, p ping) (pong, error) {
		return pong{Echo: p.Message}, nil
	}))
	return m, counter
}

func counterValue(t *testing.T, c *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.WithLabelValues(labels...).Write(&m))
	return m.GetCounter().GetValue()
}

func TestDispatchRoutesByType(t *testing.T) {
	m, counter := newTestMediator(t)

	res, err := Send[pong](context.Background(), m, ping{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Echo)
	assert.Equal(t, 1.0, counterValue(t, counter, "ping", "ok"))
}

func TestDispatchUnregisteredType(t *testing.T) {
	m, counter := newTestMediator(t)

	_, err := m.Dispatch(context.Background(), unregistered{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrHandlerNotFound))
	assert.Equal(t, 500, apperr.HTTPStatus(err))
	assert.Equal(t, 1.0, counterValue(t, counter, "unregistered", "not_found"))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	m, _ := newTestMediator(t)

	err := Handle(m, func(ctx context.Context, p ping) (pong, error) { return pong{}, nil })
	assert.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestFrozenMediatorRejectsRegistration(t *testing.T) {
	m, _ := newTestMediator(t)
	m.Freeze()

	err := HandleCommand(m, func(ctx context.Context, c touch) error { return nil })
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestDispatchHonoursCancelledContext(t *testing.T) {
	m := NewMediator(WithLogger(logging.Discard()))
	called := false
	require.NoError(t, HandleCommand(m, func(ctx context.Context, c touch) error {
		called = true
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Dispatch(ctx, touch{ID: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestCommandReturnsNilResult(t *testing.T) {
	m := NewMediator(WithLogger(logging.Discard()))
	var got int
	require.NoError(t, HandleCommand(m, func(ctx context.Context, c touch) error {
		got = c.ID
		return nil
	}))

	res, err := m.Dispatch(context.Background(), touch{ID: 9})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 9, got)
}

func TestHandlerErrorsPropagate(t *testing.T) {
	m := NewMediator(WithLogger(logging.Discard()))
	require.NoError(t, HandleCommand(m, func(ctx context.Context, c touch) error {
		return apperr.Invalid("touch %d rejected", c.ID)
	}))

	_, err := m.Dispatch(context.Background(), touch{ID: 2})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	assert.EqualError(t, err, "touch 2 rejected")
}

func TestSendRejectsWrongResultType(t *testing.T) {
	m, _ := newTestMediator(t)
	_, err := Send[string](context.Background(), m, ping{})
	assert.Error(t, err)
}
