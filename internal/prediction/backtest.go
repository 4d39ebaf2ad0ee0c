// internal/prediction/backtest.go
package prediction

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/models"
)

const (
	lookbackDays  = 360
	lookaheadDays = 60
	maxInputBars  = 360
	minInputBars  = 30
	weeksPerYear  = 52
)

// MarketData supplies daily bars for a symbol.
type MarketData interface {
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.RawMarketData, error)
}

// Backtester replays weekly predictions over a calendar year.
type Backtester struct {
	source  MarketData
	predict func([]models.RawMarketData) (float64, error)
}

func NewBacktester(source MarketData) *Backtester {
	return &Backtester{source: source, predict: PredictFromHistory}
}

type datedBar struct {
	day time.Time
	bar models.RawMarketData
}

// Run predicts at every seventh day of the year, starting on January 1st, and
// compares each prediction with the close exactly Horizon days later.
func (b *Backtester) Run(ctx context.Context, ticker string, year int) (*models.BacktestResult, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, apperr.Invalid("ticker is required")
	}
	if year < 1 {
		return nil, apperr.Invalid("year must be positive, got %d", year)
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	raw, err := b.source.DailyBars(ctx, ticker, start.AddDate(0, 0, -lookbackDays), end.AddDate(0, 0, lookaheadDays))
	if err != nil {
		return nil, err
	}

	bars := make([]datedBar, 0, len(raw))
	byDay := make(map[time.Time]models.RawMarketData, len(raw))
	for _, r := range raw {
		d := r.Day()
		if d.IsZero() {
			continue
		}
		bars = append(bars, datedBar{day: d, bar: r})
		byDay[d] = r
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].day.Before(bars[j].day) })

	log := logging.FromContext(ctx).WithField("ticker", ticker).WithField("year", year)
	result := &models.BacktestResult{Ticker: ticker, Year: year, Points: []models.BacktestPoint{}}

	for week := 0; week < weeksPerYear; week++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := start.AddDate(0, 0, 7*week)
		if date.After(end) {
			break
		}

		input := inputBefore(bars, date)
		if len(input) < minInputBars {
			continue
		}
		future, ok := byDay[date.AddDate(0, 0, Horizon)]
		if !ok {
			continue
		}

		predicted, err := b.predict(input)
		if err != nil {
			if !errors.Is(err, ErrInsufficientData) {
				return nil, err
			}
			predicted = 0
		}

		last := input[len(input)-1].Close
		result.Points = append(result.Points, models.BacktestPoint{
			Date:            date,
			PredictedChange: predicted,
			ActualChange:    (future.Close - last) / last,
		})
	}

	result.Accuracy, result.MeanSquaredError = score(result.Points)
	log.WithField("points", len(result.Points)).WithField("accuracy", result.Accuracy).Info("backtest finished")
	return result, nil
}

// inputBefore returns up to maxInputBars bars dated strictly before date, oldest first.
func inputBefore(bars []datedBar, date time.Time) []models.RawMarketData {
	end := sort.Search(len(bars), func(i int) bool { return !bars[i].day.Before(date) })
	begin := end - maxInputBars
	if begin < 0 {
		begin = 0
	}
	out := make([]models.RawMarketData, 0, end-begin)
	for _, b := range bars[begin:end] {
		out = append(out, b.bar)
	}
	return out
}

func score(points []models.BacktestPoint) (accuracy, mse float64) {
	if len(points) == 0 {
		return 0, 0
	}
	hits := 0
	for _, p := range points {
		if sign(p.PredictedChange) == sign(p.ActualChange) {
			hits++
		}
		d := p.PredictedChange - p.ActualChange
		mse += d * d
	}
	n := float64(len(points))
	return float64(hits) / n, mse / n
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
