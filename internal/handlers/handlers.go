// internal/handlers/handlers.go
package handlers

import (
	"context"
	"errors"
	"time"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/categorize"
	"finance-predictor/internal/cqrs"
	"finance-predictor/internal/models"
	"finance-predictor/internal/prediction"
	"finance-predictor/internal/repository"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

// TickerSource lists the companies offered for prediction.
type TickerSource interface {
	All() ([]models.CompanyTicker, error)
}

type Handler struct {
	repos      repository.Repositories
	engine     *categorize.Engine
	predictor  *prediction.Predictor
	market     prediction.MarketData
	backtester *prediction.Backtester
	tickers    TickerSource
	now        func() time.Time
}

func New(repos repository.Repositories, market prediction.MarketData, tickers TickerSource) *Handler {
	return &Handler{
		repos:      repos,
		engine:     categorize.NewEngine(repos),
		predictor:  prediction.NewPredictor(),
		market:     market,
		backtester: prediction.NewBacktester(market),
		tickers:    tickers,
		now:        time.Now,
	}
}

// Register adds a handler for every request shape to the mediator.
func (h *Handler) Register(m *cqrs.Mediator) error {
	return errors.Join(
		cqrs.Handle(m, h.GetApiStatus),

		cqrs.Handle(m, h.GetCategories),
		cqrs.Handle(m, h.AddCategory),
		cqrs.Handle(m, h.UpdateCategory),
		cqrs.HandleCommand(m, h.DeleteCategory),

		cqrs.Handle(m, h.GetCategoryRules),
		cqrs.Handle(m, h.AddCategoryRule),
		cqrs.Handle(m, h.UpdateCategoryRule),
		cqrs.HandleCommand(m, h.DeleteCategoryRule),
		cqrs.Handle(m, h.ApplyCategoryRules),
		cqrs.HandleCommand(m, h.AssignCategoryToTransaction),

		cqrs.HandleCommand(m, h.AddTransactions),
		cqrs.Handle(m, h.ImportTransactions),
		cqrs.Handle(m, h.GetTransactions),
		cqrs.HandleCommand(m, h.UpdateTransaction),
		cqrs.HandleCommand(m, h.ClearAllTransactions),
		cqrs.Handle(m, h.GetUncategorizedTransactions),
		cqrs.Handle(m, h.GetCategoryAnalysis),
		cqrs.Handle(m, h.GetTransactionFilters),

		cqrs.Handle(m, h.GetSp500Tickers),
		cqrs.Handle(m, h.GetRawMarketData),
		cqrs.Handle(m, h.PredictFromRaw),
		cqrs.HandleCommand(m, h.TrainModel),
		cqrs.Handle(m, h.GetPrediction),
		cqrs.Handle(m, h.RunBacktest),
	)
}

// storeErr keeps classified and cancellation errors and marks the rest transient.
func storeErr(err error, format string, args ...any) error {
	var e *apperr.Error
	if errors.As(err, &e) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperr.Transient(err, format, args...)
}
