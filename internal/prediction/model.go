// internal/prediction/model.go
package prediction

import (
	"errors"
	"fmt"
	"math"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/models"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	featureCount = 10
	// ridge keeps the normal equations positive definite when features are collinear.
	ridge = 1e-3
)

var (
	ErrInsufficientData = &apperr.Error{Kind: apperr.KindInvalid, Message: "insufficient data for feature engineering"}
	ErrNotTrained       = &apperr.Error{Kind: apperr.KindInvalid, Message: "model has not been trained"}
)

// Model is a linear regression over standardised features.
type Model struct {
	means     []float64
	scales    []float64
	weights   []float64
	intercept float64
}

// Train fits a ridge-regularised least squares model to the rows' targets.
func Train(data []models.MarketDataInput) (*Model, error) {
	if len(data) < 2 {
		return nil, apperr.Invalid("at least two training rows are required, got %d", len(data))
	}
	n := len(data)

	x := mat.NewDense(n, featureCount, nil)
	y := make([]float64, n)
	for i, row := range data {
		x.SetRow(i, row.Features())
		y[i] = row.Target
	}

	m := &Model{
		means:   make([]float64, featureCount),
		scales:  make([]float64, featureCount),
		weights: make([]float64, featureCount),
	}
	col := make([]float64, n)
	for j := 0; j < featureCount; j++ {
		mat.Col(col, j, x)
		mean, std := stat.MeanStdDev(col, nil)
		m.means[j] = mean
		if std > 0 && !math.IsNaN(std) && !math.IsInf(std, 0) {
			m.scales[j] = std
		}
	}

	z := mat.NewDense(n, featureCount, nil)
	z.Apply(func(_, j int, v float64) float64 {
		if m.scales[j] == 0 {
			return 0
		}
		return (v - m.means[j]) / m.scales[j]
	}, x)

	m.intercept = stat.Mean(y, nil)
	centred := mat.NewVecDense(n, nil)
	for i, v := range y {
		centred.SetVec(i, v-m.intercept)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, z.T())
	for j := 0; j < featureCount; j++ {
		gram.SetSym(j, j, gram.At(j, j)+ridge)
	}
	var rhs mat.VecDense
	rhs.MulVec(z.T(), centred)

	var chol mat.Cholesky
	if !chol.Factorize(&gram) {
		return nil, errors.New("normal equations are not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}
	for j := range m.weights {
		m.weights[j] = w.AtVec(j)
	}
	return m, nil
}

// Predict returns the expected 30-day return for a sample.
func (m *Model) Predict(sample models.MarketDataInput) float64 {
	out := m.intercept
	for j, v := range sample.Features() {
		if m.scales[j] == 0 {
			continue
		}
		out += m.weights[j] * (v - m.means[j]) / m.scales[j]
	}
	return out
}
