// internal/cqrs/endpoints.go
package cqrs

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"finance-predictor/internal/apperr"

	"github.com/gorilla/mux"
)

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Descriptor binds a request type to an HTTP route. Result is nil for commands.
type Descriptor struct {
	Name    string
	Route   string
	Method  string
	Request reflect.Type
	Result  reflect.Type
}

func (d Descriptor) IsCommand() bool { return d.Result == nil }

// Endpoints is the explicit registration table of request shapes.
type Endpoints struct {
	descs []Descriptor
}

func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Query declares a request type Req answered with a Res at method+route.
func Query[Req, Res any](e *Endpoints, route, method string) Descriptor {
	return e.add(Descriptor{
		Name:    typeOf[Req]().Name(),
		Route:   route,
		Method:  strings.ToUpper(strings.TrimSpace(method)),
		Request: typeOf[Req](),
		Result:  typeOf[Res](),
	})
}

// Command declares a request type Req with no result at method+route.
func Command[Req any](e *Endpoints, route, method string) Descriptor {
	return e.add(Descriptor{
		Name:    typeOf[Req]().Name(),
		Route:   route,
		Method:  strings.ToUpper(strings.TrimSpace(method)),
		Request: typeOf[Req](),
	})
}

func (e *Endpoints) add(d Descriptor) Descriptor {
	e.descs = append(e.descs, d)
	return d
}

func (e *Endpoints) Descriptors() []Descriptor {
	out := make([]Descriptor, len(e.descs))
	copy(out, e.descs)
	return out
}

// Lookup finds the descriptor declared for a request type.
func (e *Endpoints) Lookup(t reflect.Type) (Descriptor, bool) {
	for _, d := range e.descs {
		if d.Request == t {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Validate checks every descriptor and returns all problems joined.
func (e *Endpoints) Validate() error {
	var errs []error
	seen := make(map[string]string)

	for _, d := range e.descs {
		if !supportedMethods[d.Method] {
			errs = append(errs, apperr.Registration("%s: unsupported HTTP method %q", d.Name, d.Method))
		}
		if d.Route == "" || !strings.HasPrefix(d.Route, "/") {
			errs = append(errs, apperr.Registration("%s: route %q must be an absolute path", d.Name, d.Route))
		}
		if d.Request == nil || d.Request.Kind() != reflect.Struct {
			errs = append(errs, apperr.Registration("%s: request type must be a struct", d.Name))
		} else if _, err := ResolveParams(d.Route, reflect.Zero(d.Request).Interface()); err != nil {
			errs = append(errs, apperr.Registration("%s: %v", d.Name, err))
		}

		key := d.Method + " " + d.Route
		if prev, dup := seen[key]; dup {
			errs = append(errs, apperr.Registration("%s: %s already mapped to %s", d.Name, key, prev))
		} else {
			seen[key] = d.Name
		}
	}
	return errors.Join(errs...)
}

// Mount validates the table and registers one route per descriptor on r.
// Nothing is registered when validation fails.
func (e *Endpoints) Mount(r *mux.Router, m *Mediator) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := e.checkResults(m); err != nil {
		return err
	}
	for _, d := range e.descs {
		if !m.Has(d.Request) {
			m.log.WithField("request", d.Name).Warn("endpoint mapped without a handler")
		}
		r.HandleFunc(d.Route, e.handler(d, m)).Methods(d.Method).Name(d.Name)
	}
	m.log.WithField("endpoints", len(e.descs)).Info("cqrs endpoints mounted")
	return nil
}

// checkResults compares each declared result type with the registered handler's.
func (e *Endpoints) checkResults(m *Mediator) error {
	var errs []error
	for _, d := range e.descs {
		got, ok := m.ResultType(d.Request)
		if !ok || got == d.Result {
			continue
		}
		errs = append(errs, apperr.Registration("%s: declared result %s, handler returns %s",
			d.Name, typeName(d.Result), typeName(got)))
	}
	return errors.Join(errs...)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nothing"
	}
	return t.String()
}

func (e *Endpoints) handler(d Descriptor, m *Mediator) http.HandlerFunc {
	b := newBinder(d.Method, d.Request)
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := b.bind(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		res, err := m.Dispatch(r.Context(), req)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		if d.IsCommand() {
			w.WriteHeader(http.StatusOK)
			return
		}
		apperr.WriteJSON(w, r, http.StatusOK, res)
	}
}
