// internal/cqrs/params.go
package cqrs

import (
	"encoding"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Placeholders returns the names of the {Name} segments of a route, without mux regex suffixes.
func Placeholders(route string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(route, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, placeholderName(m[1]))
	}
	return names
}

func placeholderName(inner string) string {
	if i := strings.IndexByte(inner, ':'); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

// ApplyParams replaces each {Name} in template with the percent-encoded value of the
// same-named field of req, matched case-insensitively. Placeholders without a matching
// field stay literal and nil pointers render empty.
func ApplyParams(template string, req any) string {
	values := fieldStrings(req)
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		v, ok := values[strings.ToLower(placeholderName(m[1:len(m)-1]))]
		if !ok {
			return m
		}
		return escapeParam(v)
	})
}

// escapeParam percent-encodes everything except the RFC 3986 unreserved characters.
func escapeParam(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// ResolveParams is the strict form of ApplyParams: every placeholder must resolve to a
// field of a struct request.
func ResolveParams(template string, req any) (string, error) {
	v := reflect.ValueOf(req)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("route %s: request of type %T is not a struct", template, req)
	}

	values := fieldStrings(req)
	var errs []error
	for _, name := range Placeholders(template) {
		if _, ok := values[strings.ToLower(name)]; !ok {
			errs = append(errs, fmt.Errorf("route %s: placeholder {%s} has no matching field on %s", template, name, v.Type()))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return "", err
	}
	return ApplyParams(template, req), nil
}

// fieldStrings maps lower-cased field names, and json tag names, to formatted values.
func fieldStrings(req any) map[string]string {
	v := reflect.ValueOf(req)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	out := make(map[string]string)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		s := formatValue(v.Field(i))
		for _, name := range fieldNames(sf) {
			out[name] = s
		}
	}
	return out
}

// fieldNames returns the lower-cased names a field answers to.
func fieldNames(sf reflect.StructField) []string {
	names := []string{strings.ToLower(sf.Name)}
	if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag != "" && tag != "-" {
		if lt := strings.ToLower(tag); lt != names[0] {
			names = append(names, lt)
		}
	}
	return names
}

func formatValue(v reflect.Value) string {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return ""
	}
	switch x := v.Interface().(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return ""
		}
		return string(b)
	}
	return fmt.Sprint(v.Interface())
}
