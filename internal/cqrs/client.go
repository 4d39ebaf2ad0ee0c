// internal/cqrs/client.go
package cqrs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"finance-predictor/internal/apperr"
)

// Client sends request values to a remote server using the same registration table.
type Client struct {
	baseURL    string
	endpoints  *Endpoints
	httpClient *http.Client
}

func NewClient(baseURL string, endpoints *Endpoints, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		endpoints:  endpoints,
		httpClient: httpClient,
	}
}

// Send issues req and decodes the result into out. out may be nil for commands.
func (c *Client) Send(ctx context.Context, req any, out any) error {
	d, ok := c.endpoints.Lookup(reflect.TypeOf(req))
	if !ok {
		return fmt.Errorf("no endpoint declared for %T", req)
	}

	target := c.baseURL + ApplyParams(d.Route, req)
	var body io.Reader
	if d.Method == http.MethodGet {
		if q := QueryString(req, Placeholders(d.Route)); q != "" {
			target += "?" + q
		}
	} else {
		payload, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, d.Method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env apperr.Envelope
		if err := json.Unmarshal(respBody, &env); err != nil || env.Error == "" {
			return apperr.FromStatus(resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		return apperr.FromStatus(resp.StatusCode, env.Error)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// QueryString encodes the non-zero exported fields of req, skipping the route placeholders.
func QueryString(req any, skip []string) string {
	v := reflect.ValueOf(req)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}

	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[strings.ToLower(s)] = true
	}

	q := url.Values{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if !sf.IsExported() || fv.IsZero() || skipped[strings.ToLower(sf.Name)] {
			continue
		}
		q.Set(sf.Name, formatValue(fv))
	}
	return q.Encode()
}
