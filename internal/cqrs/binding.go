// internal/cqrs/binding.go
package cqrs

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"finance-predictor/internal/apperr"

	"github.com/gorilla/mux"
)

// maxBodyBytes bounds JSON request bodies. Statement uploads go through the import handler.
const maxBodyBytes = 8 << 20

var (
	timeType            = reflect.TypeOf(time.Time{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

type boundField struct {
	index int
	names []string
}

// binder turns an HTTP request into a value of one request type.
type binder struct {
	method string
	typ    reflect.Type
	fields []boundField
}

func newBinder(method string, typ reflect.Type) *binder {
	b := &binder{method: method, typ: typ}
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		b.fields = append(b.fields, boundField{index: i, names: fieldNames(sf)})
	}
	return b
}

func (b *binder) bind(r *http.Request) (any, error) {
	v := reflect.New(b.typ).Elem()
	if len(b.fields) == 0 {
		return v.Interface(), nil
	}

	if b.method == http.MethodGet {
		values := url.Values{}
		for k, vs := range r.URL.Query() {
			values[strings.ToLower(k)] = vs
		}
		for k, s := range mux.Vars(r) {
			values[strings.ToLower(k)] = []string{s}
		}
		if err := b.assign(v, values); err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}

	if r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(v.Addr().Interface()); err != nil && !errors.Is(err, io.EOF) {
			return nil, apperr.Invalid("malformed request body: %v", err)
		}
	}

	vars := url.Values{}
	for k, s := range mux.Vars(r) {
		vars[strings.ToLower(k)] = []string{s}
	}
	if err := b.assign(v, vars); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// assign sets every field that has a value in values, keyed by lower-cased name.
func (b *binder) assign(v reflect.Value, values url.Values) error {
	for _, f := range b.fields {
		var raw []string
		for _, name := range f.names {
			if vs, ok := values[name]; ok {
				raw = vs
				break
			}
		}
		if len(raw) == 0 {
			continue
		}
		if err := setField(v.Field(f.index), raw); err != nil {
			return apperr.Invalid("invalid value for %s: %v", b.typ.Field(f.index).Name, err)
		}
	}
	return nil
}

func setField(fv reflect.Value, raw []string) error {
	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() != reflect.Uint8 && !fv.Addr().Type().Implements(textUnmarshalerType) {
		out := reflect.MakeSlice(fv.Type(), 0, len(raw))
		for _, s := range raw {
			elem := reflect.New(fv.Type().Elem()).Elem()
			if err := setScalar(elem, s); err != nil {
				return err
			}
			out = reflect.Append(out, elem)
		}
		fv.Set(out)
		return nil
	}
	return setScalar(fv, raw[0])
}

func setScalar(fv reflect.Value, s string) error {
	if fv.Kind() == reflect.Pointer {
		if s == "" {
			return nil
		}
		p := reflect.New(fv.Type().Elem())
		if err := setScalar(p.Elem(), s); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}

	if fv.Type() == timeType {
		if s == "" {
			return nil
		}
		t, err := parseTime(s)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}

	if fv.CanAddr() && fv.Addr().Type().Implements(textUnmarshalerType) {
		if s == "" && fv.Kind() != reflect.String {
			return nil
		}
		return fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}

	if s == "" && fv.Kind() != reflect.String {
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
