// internal/prediction/features.go
package prediction

import (
	"math"

	"finance-predictor/internal/models"

	"gonum.org/v1/gonum/stat"
)

const (
	// MinHistory is the number of bars below which no feature row is produced.
	MinHistory = 50
	// Horizon is the forward distance, in bars, of the training target.
	Horizon = 30

	warmup    = 20
	rsiPeriod = 14
)

// BuildFeatures turns daily bars into feature rows. Row i uses the bars before i
// for its indicators and bar i+Horizon for its target.
func BuildFeatures(raw []models.RawMarketData) []models.MarketDataInput {
	if len(raw) < MinHistory {
		return []models.MarketDataInput{}
	}

	closes := make([]float64, len(raw))
	for i, r := range raw {
		closes[i] = r.Close
	}

	rows := make([]models.MarketDataInput, 0, len(raw)-warmup-Horizon)
	for i := warmup; i < len(raw)-Horizon; i++ {
		cur := raw[i]
		rows = append(rows, models.MarketDataInput{
			Date:         cur.Date,
			Open:         cur.Open,
			High:         cur.High,
			Low:          cur.Low,
			Close:        cur.Close,
			Volume:       cur.Volume,
			SMA5:         stat.Mean(closes[i-5:i], nil),
			SMA10:        stat.Mean(closes[i-10:i], nil),
			SMA20:        stat.Mean(closes[i-20:i], nil),
			Volatility10: volatility(closes[i-10 : i]),
			RSI14:        rsi(closes[i-rsiPeriod : i]),
			Target:       (closes[i+Horizon] - cur.Close) / cur.Close,
		})
	}
	return rows
}

// volatility is the population standard deviation of log returns over the window.
// The first return is zero.
func volatility(window []float64) float64 {
	returns := make([]float64, len(window))
	for j := 1; j < len(window); j++ {
		returns[j] = math.Log(window[j] / window[j-1])
	}
	return stat.PopStdDev(returns, nil)
}

func rsi(window []float64) float64 {
	var gain, loss float64
	for j := 1; j < len(window); j++ {
		delta := window[j] - window[j-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	if loss == 0 {
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}
