package categorize

import (
	"context"
	"errors"
	"testing"

	"finance-predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	utilities = models.Category{ID: 1, Name: "Utilities"}
	transport = models.Category{ID: 2, Name: "Transport"}
)

// Rules are listed so that Transport matches first and Utilities last.
var gasRules = []models.CategoryRule{
	{ID: 10, Keyword: "gas", CategoryID: transport.ID, FieldType: models.FieldTitle},
	{ID: 11, Keyword: "station", CategoryID: utilities.ID, FieldType: models.FieldTitle},
}

type recorder struct {
	writes []models.Transaction
	failAt int
}

func (r *recorder) persist(ctx context.Context, t *models.Transaction) error {
	if r.failAt > 0 && len(r.writes)+1 == r.failAt {
		return errors.New("database is locked")
	}
	r.writes = append(r.writes, *t)
	return nil
}

func pointers(txs []models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, len(txs))
	for i := range txs {
		out[i] = &txs[i]
	}
	return out
}

func TestApplyAllLastMatchWins(t *testing.T) {
	txs := []models.Transaction{{ID: 1, Title: "Gas Station"}}
	rec := &recorder{}

	n, err := ApplyAll(context.Background(), gasRules, []models.Category{utilities, transport}, pointers(txs), rec.persist)
	require.NoError(t, err)

	assert.Equal(t, 2, n, "one write per match")
	assert.Len(t, rec.writes, 2)
	assert.Equal(t, "Utilities", txs[0].Category)
}

func TestApplyToNewFirstMatchWins(t *testing.T) {
	txs := []models.Transaction{{Title: "Gas Station"}, {Title: "Bakery"}}

	n, err := ApplyToNew(context.Background(), gasRules, []models.Category{utilities, transport}, txs)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, "Transport", txs[0].Category)
	assert.Empty(t, txs[1].Category)
}

func TestApplyAllIsIdempotent(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Title: "Gas Station"},
		{ID: 2, Title: "Shell gas"},
		{ID: 3, Title: "Cinema"},
	}
	cats := []models.Category{utilities, transport}

	_, err := ApplyAll(context.Background(), gasRules, cats, pointers(txs), (&recorder{}).persist)
	require.NoError(t, err)
	first := append([]models.Transaction(nil), txs...)

	_, err = ApplyAll(context.Background(), gasRules, cats, pointers(txs), (&recorder{}).persist)
	require.NoError(t, err)
	assert.Equal(t, first, txs)
}

func TestBlankKeywordIsInert(t *testing.T) {
	rules := []models.CategoryRule{{ID: 1, Keyword: "   ", CategoryID: transport.ID}}
	txs := []models.Transaction{{ID: 1, Title: "Anything at all"}}
	rec := &recorder{}

	n, err := ApplyAll(context.Background(), rules, []models.Category{transport}, pointers(txs), rec.persist)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.writes)
	assert.Empty(t, txs[0].Category)

	n, err = ApplyToNew(context.Background(), rules, []models.Category{transport}, txs)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUnknownCategoryIsInert(t *testing.T) {
	rules := []models.CategoryRule{{ID: 1, Keyword: "gas", CategoryID: 99}}
	txs := []models.Transaction{{ID: 1, Title: "Gas Station", Category: "Fuel"}}
	rec := &recorder{}

	n, err := ApplyAll(context.Background(), rules, []models.Category{transport}, pointers(txs), rec.persist)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "Fuel", txs[0].Category)
}

func TestCounterpartyField(t *testing.T) {
	rules := []models.CategoryRule{{ID: 1, Keyword: "ORLEN", CategoryID: transport.ID, FieldType: models.FieldCounterparty}}
	txs := []models.Transaction{
		{ID: 1, Title: "Card payment", Counterparty: "PKN Orlen SA"},
		{ID: 2, Title: "orlen in title only", Counterparty: "Zabka"},
	}

	n, err := ApplyToNew(context.Background(), rules, []models.Category{transport}, txs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Transport", txs[0].Category)
	assert.Empty(t, txs[1].Category)
}

func TestUnknownFieldTypeFallsBackToTitle(t *testing.T) {
	rules := []models.CategoryRule{{ID: 1, Keyword: "bus", CategoryID: transport.ID, FieldType: models.FieldType(9)}}
	txs := []models.Transaction{{Title: "City BUS ticket"}}

	n, err := ApplyToNew(context.Background(), rules, []models.Category{transport}, txs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApplyAllStopsOnPersistError(t *testing.T) {
	txs := []models.Transaction{{ID: 1, Title: "Gas Station"}, {ID: 2, Title: "gas"}}
	rec := &recorder{failAt: 2}

	n, err := ApplyAll(context.Background(), gasRules, []models.Category{utilities, transport}, pointers(txs), rec.persist)
	assert.EqualError(t, err, "database is locked")
	assert.Equal(t, 1, n)
}

func TestApplyAllHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}

	n, err := ApplyAll(ctx, gasRules, []models.Category{utilities, transport}, pointers([]models.Transaction{{ID: 1, Title: "gas"}}), rec.persist)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Empty(t, rec.writes)
}
