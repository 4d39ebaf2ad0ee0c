package prediction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finance-predictor/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonDailyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/aggs/ticker/AAPL/range/1/day/2024-01-01/2024-01-31", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("adjusted"))
		assert.Equal(t, "asc", r.URL.Query().Get("sort"))
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"t":1704153600000,"o":187.15,"h":188.44,"l":183.89,"c":185.64,"v":82488700},
			{"t":1704240000000,"o":184.22,"h":185.88,"l":183.43,"c":184.25,"v":58414500}]}`))
	}))
	defer srv.Close()

	c := NewPolygonClient(srv.URL+"/", "secret", 0, srv.Client())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := c.DailyBars(context.Background(), "aapl", from, from.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2024-01-02", bars[0].Date)
	assert.Equal(t, 185.64, bars[0].Close)
	assert.Equal(t, "2024-01-03", bars[1].Date)
}

func TestPolygonEmptyResultIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":0}`))
	}))
	defer srv.Close()

	_, err := NewPolygonClient(srv.URL, "k", 0, nil).DailyBars(context.Background(), "ZZZZ", time.Now(), time.Now())
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
	assert.Contains(t, err.Error(), "ZZZZ")
}

func TestPolygonUpstreamFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"ERROR","error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewPolygonClient(srv.URL, "k", 0, nil).DailyBars(context.Background(), "AAPL", time.Now(), time.Now())
	assert.ErrorIs(t, err, apperr.ErrTransient)
	assert.Equal(t, apperr.GenericMessage, apperr.PublicMessage(err))
}

func TestPolygonRequiresKeyAndSymbol(t *testing.T) {
	c := NewPolygonClient("http://127.0.0.1:0", "", 5, nil)
	_, err := c.DailyBars(context.Background(), "AAPL", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c = NewPolygonClient("http://127.0.0.1:0", "k", 5, nil)
	_, err = c.DailyBars(context.Background(), "  ", time.Now(), time.Now())
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestPolygonHonoursCancelledContext(t *testing.T) {
	c := NewPolygonClient("http://127.0.0.1:0", "k", 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DailyBars(ctx, "AAPL", time.Now(), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTickers(t *testing.T) {
	in := "Symbol;Security\nAAPL;Apple Inc.\n\nMSFT ; Microsoft Corp.\nBROKEN\n"
	got, err := ParseTickers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, "Microsoft Corp.", got[1].Name)
	assert.Equal(t, "MSFT", got[1].Ticker)
}

func TestTickerProviderMissingFile(t *testing.T) {
	p := NewTickerProvider(t.TempDir() + "/missing.csv")
	_, err := p.All()
	assert.ErrorContains(t, err, "open ticker list")
}
