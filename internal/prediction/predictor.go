// internal/prediction/predictor.go
package prediction

import (
	"sync"

	"finance-predictor/internal/models"
)

// Predictor keeps the most recently trained model for the train/predict endpoints.
type Predictor struct {
	mu    sync.RWMutex
	model *Model
}

func NewPredictor() *Predictor {
	return &Predictor{}
}

// Train replaces the current model. On failure the previous model is kept.
func (p *Predictor) Train(data []models.MarketDataInput) error {
	m, err := Train(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.model = m
	p.mu.Unlock()
	return nil
}

func (p *Predictor) Predict(sample models.MarketDataInput) (float64, error) {
	p.mu.RLock()
	m := p.model
	p.mu.RUnlock()
	if m == nil {
		return 0, ErrNotTrained
	}
	return m.Predict(sample), nil
}

// PredictFromHistory builds features from raw bars, trains a fresh model on them
// and predicts the return following the last usable row.
func PredictFromHistory(raw []models.RawMarketData) (float64, error) {
	rows := BuildFeatures(raw)
	if len(rows) == 0 {
		return 0, ErrInsufficientData
	}
	m, err := Train(rows)
	if err != nil {
		return 0, err
	}
	return m.Predict(rows[len(rows)-1]), nil
}
