// internal/prediction/polygon.go
package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/metrics"
	"finance-predictor/internal/models"

	"golang.org/x/time/rate"
)

const maxResponseBytes = 32 << 20

var ErrMissingAPIKey = errors.New("polygon API key is not configured")

// PolygonClient fetches daily aggregates from the Polygon REST API.
type PolygonClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type polygonBar struct {
	T int64   `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

type polygonAggregates struct {
	Status  string       `json:"status"`
	Results []polygonBar `json:"results"`
}

// NewPolygonClient returns a client allowing at most perMinute outbound requests.
// A non-positive perMinute disables limiting.
func NewPolygonClient(baseURL, apiKey string, perMinute int, httpClient *http.Client) *PolygonClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &PolygonClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// DailyBars returns the adjusted daily bars between from and to, oldest first.
func (c *PolygonClient) DailyBars(ctx context.Context, symbol string, from, to time.Time) (bars []models.RawMarketData, err error) {
	defer func() { metrics.RecordMarketDataRequest(err == nil) }()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperr.Invalid("symbol is required")
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for market data rate limit: %w", err)
	}

	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(symbol), from.Format(models.DateLayout), to.Format(models.DateLayout))
	query := url.Values{}
	query.Set("adjusted", "true")
	query.Set("sort", "asc")

	logging.FromContext(ctx).WithField("symbol", symbol).WithField("path", path).Debug("fetching market data")

	query.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Transient(redact(err, c.apiKey), "market data request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.Transient(err, "failed to read market data response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Transient(fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), "market data request failed")
	}

	var payload polygonAggregates
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode market data: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, apperr.Invalid("no market data returned for %s", symbol)
	}

	bars = make([]models.RawMarketData, len(payload.Results))
	for i, r := range payload.Results {
		bars[i] = models.RawMarketData{
			Date:   time.UnixMilli(r.T).UTC().Format(models.DateLayout),
			Open:   r.O,
			High:   r.H,
			Low:    r.L,
			Close:  r.C,
			Volume: r.V,
		}
	}
	return bars, nil
}

// redact strips the API key from transport errors, which embed the request URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
