// internal/categorize/engine.go
package categorize

import (
	"context"
	"errors"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/metrics"
	"finance-predictor/internal/models"
	"finance-predictor/internal/repository"
)

const (
	modeApplyAll   = "apply_all"
	modeBestEffort = "best_effort"
	modeNew        = "new"
)

// Engine runs categorisation passes against the repositories.
type Engine struct {
	repos repository.Repositories
}

func NewEngine(repos repository.Repositories) *Engine {
	return &Engine{repos: repos}
}

func (e *Engine) load(ctx context.Context) ([]models.CategoryRule, []models.Category, error) {
	rules, err := e.repos.Rules.GetAll(ctx)
	if err != nil {
		return nil, nil, apperr.Transient(err, "load category rules")
	}
	categories, err := e.repos.Categories.GetAll(ctx)
	if err != nil {
		return nil, nil, apperr.Transient(err, "load categories")
	}
	return rules, categories, nil
}

func (e *Engine) persist(ctx context.Context, t *models.Transaction) error {
	if err := e.repos.Transactions.UpdateCategory(ctx, t.ID, t.Category); err != nil {
		return apperr.Transient(err, "update transaction %d", t.ID)
	}
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"transaction_id": t.ID,
		"category":       t.Category,
	}).Debug("transaction categorized")
	return nil
}

// Recategorize applies every rule to every stored transaction. Errors propagate.
func (e *Engine) Recategorize(ctx context.Context) (int, error) {
	n, err := e.run(ctx, modeApplyAll)
	metrics.RecordCategorization(modeApplyAll, n, err)
	return n, err
}

// RecategorizeBestEffort is the follow-up pass after rule or category changes.
// Persistence failures are logged and swallowed; cancellation is still returned.
func (e *Engine) RecategorizeBestEffort(ctx context.Context) (int, error) {
	n, err := e.run(ctx, modeBestEffort)
	metrics.RecordCategorization(modeBestEffort, n, err)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return n, err
	}
	logging.FromContext(ctx).WithError(err).WithField("updated", n).Warn("best-effort recategorization failed")
	return n, nil
}

func (e *Engine) run(ctx context.Context, mode string) (int, error) {
	log := logging.FromContext(ctx).WithField("mode", mode)

	rules, categories, err := e.load(ctx)
	if err != nil {
		return 0, err
	}
	stored, err := e.repos.Transactions.GetAll(ctx)
	if err != nil {
		return 0, apperr.Transient(err, "load transactions")
	}

	txs := make([]*models.Transaction, len(stored))
	for i := range stored {
		txs[i] = &stored[i]
	}

	log.WithFields(map[string]interface{}{
		"rules":        len(rules),
		"transactions": len(txs),
	}).Info("categorization started")

	n, err := ApplyAll(ctx, rules, categories, txs, e.persist)
	if err != nil {
		return n, err
	}
	log.WithField("updated", n).Info("categorization finished")
	return n, nil
}

// CategorizeNew assigns categories to an incoming batch before it is stored.
// When rules or categories cannot be loaded the batch stays uncategorised.
func (e *Engine) CategorizeNew(ctx context.Context, txs []models.Transaction) int {
	log := logging.FromContext(ctx).WithField("mode", modeNew)

	rules, categories, err := e.load(ctx)
	if err != nil {
		log.WithError(err).Warn("rules unavailable, storing batch uncategorized")
		metrics.RecordCategorization(modeNew, 0, err)
		return 0
	}

	n, err := ApplyToNew(ctx, rules, categories, txs)
	metrics.RecordCategorization(modeNew, n, err)
	if err != nil {
		log.WithError(err).Warn("categorization of new transactions interrupted")
	}
	log.WithFields(map[string]interface{}{
		"categorized": n,
		"total":       len(txs),
	}).Info("new transactions categorized")
	return n
}
