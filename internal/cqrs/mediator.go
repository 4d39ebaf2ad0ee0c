// internal/cqrs/mediator.go
package cqrs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	ErrDuplicateHandler = errors.New("cqrs: handler already registered")
	ErrFrozen           = errors.New("cqrs: mediator is frozen")
)

// HandlerFunc is the type-erased form of a registered handler.
type HandlerFunc func(ctx context.Context, req any) (any, error)

// Mediator routes a request value to the single handler registered for its type.
type Mediator struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]HandlerFunc
	results  map[reflect.Type]reflect.Type
	frozen   bool

	log        *logrus.Logger
	dispatches *prometheus.CounterVec
}

type Option func(*Mediator)

func WithLogger(log *logrus.Logger) Option {
	return func(m *Mediator) { m.log = log }
}

// WithDispatchCounter counts dispatches by request and outcome labels.
func WithDispatchCounter(c *prometheus.CounterVec) Option {
	return func(m *Mediator) { m.dispatches = c }
}

func NewMediator(opts ...Option) *Mediator {
	m := &Mediator{
		handlers: make(map[reflect.Type]HandlerFunc),
		results:  make(map[reflect.Type]reflect.Type),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle registers fn as the handler for requests of type Req.
func Handle[Req, Res any](m *Mediator, fn func(context.Context, Req) (Res, error)) error {
	t := typeOf[Req]()
	return m.register(t, typeOf[Res](), func(ctx context.Context, req any) (any, error) {
		r, ok := req.(Req)
		if !ok {
			return nil, fmt.Errorf("cqrs: handler for %s received %T", t, req)
		}
		return fn(ctx, r)
	})
}

// HandleCommand registers fn as the handler for a request type that produces no result.
func HandleCommand[Req any](m *Mediator, fn func(context.Context, Req) error) error {
	t := typeOf[Req]()
	return m.register(t, nil, func(ctx context.Context, req any) (any, error) {
		r, ok := req.(Req)
		if !ok {
			return nil, fmt.Errorf("cqrs: handler for %s received %T", t, req)
		}
		return nil, fn(ctx, r)
	})
}

func (m *Mediator) register(t, result reflect.Type, h HandlerFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.frozen {
		return fmt.Errorf("%w: cannot register %s", ErrFrozen, t)
	}
	if _, exists := m.handlers[t]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, t)
	}
	m.handlers[t] = h
	m.results[t] = result
	return nil
}

// Freeze rejects further registrations.
func (m *Mediator) Freeze() {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
}

// Has reports whether a handler exists for t.
func (m *Mediator) Has(t reflect.Type) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[t]
	return ok
}

// ResultType returns the result type of the handler registered for t; nil for commands.
func (m *Mediator) ResultType(t reflect.Type) (reflect.Type, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.results[t]
	return res, ok
}

// Dispatch invokes the handler registered for the dynamic type of req.
func (m *Mediator) Dispatch(ctx context.Context, req any) (any, error) {
	if req == nil {
		return nil, apperr.Invalid("request is required")
	}
	t := reflect.TypeOf(req)
	name := t.Name()

	m.mu.RLock()
	h, ok := m.handlers[t]
	m.mu.RUnlock()
	if !ok {
		m.observe(name, "not_found")
		return nil, apperr.HandlerNotFound(t.String())
	}

	if err := ctx.Err(); err != nil {
		m.observe(name, "cancelled")
		return nil, err
	}

	logging.FromContext(ctx).WithField("request", name).Debug("dispatching request")

	res, err := h(ctx, req)
	switch {
	case err == nil:
		m.observe(name, "ok")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.observe(name, "cancelled")
	default:
		m.observe(name, "error")
	}
	return res, err
}

func (m *Mediator) observe(request, outcome string) {
	if m.dispatches != nil {
		m.dispatches.WithLabelValues(request, outcome).Inc()
	}
}

// Send dispatches req and asserts the result type.
func Send[Res any](ctx context.Context, m *Mediator, req any) (Res, error) {
	var zero Res
	out, err := m.Dispatch(ctx, req)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("cqrs: %T returned %T, want %T", req, out, zero)
	}
	return res, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
