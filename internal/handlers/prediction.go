// internal/handlers/prediction.go
package handlers

import (
	"context"
	"strings"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/models"
	"finance-predictor/internal/prediction"
)

func (h *Handler) GetApiStatus(_ context.Context, _ contracts.GetApiStatus) (models.ApiStatus, error) {
	return models.ApiStatus{Status: "OK", Version: Version, Timestamp: h.now().UTC()}, nil
}

func (h *Handler) GetSp500Tickers(_ context.Context, _ contracts.GetSp500Tickers) ([]models.CompanyTicker, error) {
	return h.tickers.All()
}

func (h *Handler) GetRawMarketData(ctx context.Context, req contracts.GetRawMarketData) ([]models.RawMarketData, error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, apperr.Invalid("symbol is required")
	}
	if req.From.IsZero() || req.To.IsZero() {
		return nil, apperr.Invalid("from and to dates are required")
	}
	if req.To.Before(req.From) {
		return nil, apperr.Invalid("to must not be before from")
	}
	return h.market.DailyBars(ctx, req.Symbol, req.From, req.To)
}

// PredictFromRaw trains a throwaway model on the supplied history and predicts from its last row.
func (h *Handler) PredictFromRaw(ctx context.Context, req contracts.PredictFromRaw) (models.PredictionResult, error) {
	p, err := prediction.PredictFromHistory(req.RawData)
	if err != nil {
		return models.PredictionResult{}, err
	}
	logging.FromContext(ctx).WithField("bars", len(req.RawData)).WithField("prediction", p).Debug("prediction from raw data")
	return models.PredictionResult{Prediction: p}, nil
}

func (h *Handler) TrainModel(ctx context.Context, req contracts.TrainModel) error {
	if len(req.Data) == 0 {
		return apperr.Invalid("training data is required")
	}
	if err := h.predictor.Train(req.Data); err != nil {
		return err
	}
	logging.FromContext(ctx).WithField("rows", len(req.Data)).Info("model trained")
	return nil
}

func (h *Handler) GetPrediction(_ context.Context, req contracts.GetPrediction) (models.PredictionResult, error) {
	p, err := h.predictor.Predict(req.Sample)
	if err != nil {
		return models.PredictionResult{}, err
	}
	return models.PredictionResult{Prediction: p}, nil
}

func (h *Handler) RunBacktest(ctx context.Context, req contracts.RunBacktest) (models.BacktestResult, error) {
	res, err := h.backtester.Run(ctx, req.Ticker, req.Year)
	if err != nil {
		return models.BacktestResult{}, err
	}
	return *res, nil
}
