// internal/models/market.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of market data dates.
const DateLayout = "2006-01-02"

// RawMarketData is one daily OHLCV bar. Date uses DateLayout.
type RawMarketData struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Day parses Date, returning the zero time when it is malformed.
func (r RawMarketData) Day() time.Time {
	d, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}

// MarketDataInput is one engineered feature row. Target is the 30-day forward return.
type MarketDataInput struct {
	Date         string  `json:"date"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	Volume       float64 `json:"volume"`
	SMA5         float64 `json:"sma5"`
	SMA10        float64 `json:"sma10"`
	SMA20        float64 `json:"sma20"`
	Volatility10 float64 `json:"volatility10"`
	RSI14        float64 `json:"rsi14"`
	Target       float64 `json:"target"`
}

// Features returns the regressors in a fixed order.
func (m MarketDataInput) Features() []float64 {
	return []float64{
		m.Open, m.High, m.Low, m.Close, m.Volume,
		m.SMA5, m.SMA10, m.SMA20, m.Volatility10, m.RSI14,
	}
}

type PredictionResult struct {
	Prediction float64 `json:"prediction"`
}

type BacktestPoint struct {
	Date            time.Time `json:"date"`
	PredictedChange float64   `json:"predictedChange"`
	ActualChange    float64   `json:"actualChange"`
}

type BacktestResult struct {
	Ticker           string          `json:"ticker"`
	Year             int             `json:"year"`
	Points           []BacktestPoint `json:"points"`
	Accuracy         float64         `json:"accuracy"`
	MeanSquaredError float64         `json:"meanSquaredError"`
}

type CompanyTicker struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type ApiStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type ApplyResult struct {
	Updated int `json:"updated"`
}

type TransactionFilters struct {
	Accounts       []string `json:"accounts"`
	Counterparties []string `json:"counterparties"`
	Years          []int    `json:"years"`
}

type GetTransactionsResponse struct {
	Transactions []Transaction   `json:"transactions"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Count        int             `json:"count"`
}
