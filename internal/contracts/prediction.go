// internal/contracts/prediction.go
package contracts

import (
	"time"

	"finance-predictor/internal/models"
)

type GetApiStatus struct{}

type GetSp500Tickers struct{}

// GetRawMarketData reads Symbol from the route and From/To from the query string.
type GetRawMarketData struct {
	Symbol string    `json:"symbol"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

type PredictFromRaw struct {
	RawData []models.RawMarketData `json:"rawData"`
}

type TrainModel struct {
	Data []models.MarketDataInput `json:"data"`
}

type GetPrediction struct {
	Sample models.MarketDataInput `json:"sample"`
}

type RunBacktest struct {
	Ticker string `json:"ticker"`
	Year   int    `json:"year"`
}
