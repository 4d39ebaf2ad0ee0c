// internal/handlers/transactions.go
package handlers

import (
	"context"
	"slices"
	"strings"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/models"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	uncategorizedLabel = "Uncategorized"
	defaultCurrency    = "PLN"
)

var analysisPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#FF6384", "#C9CBCF", "#4BC0C0", "#FF6384",
}

// AddTransactions categorises the batch with the current rules and stores it.
func (h *Handler) AddTransactions(ctx context.Context, req contracts.AddTransactions) error {
	_, err := h.insertBatch(ctx, req.Transactions)
	return err
}

func (h *Handler) ImportTransactions(ctx context.Context, req contracts.ImportTransactions) ([]models.Transaction, error) {
	return h.insertBatch(ctx, req.Transactions)
}

// insertBatch categorizes a copy of txs and stores it, returning the stored rows.
func (h *Handler) insertBatch(ctx context.Context, txs []models.Transaction) ([]models.Transaction, error) {
	if len(txs) == 0 {
		return nil, apperr.Invalid("transactions are required")
	}

	batch := make([]models.Transaction, len(txs))
	copy(batch, txs)
	for i := range batch {
		batch[i].ID = 0
		if batch[i].TransactionDate.IsZero() {
			return nil, apperr.Invalid("transaction %d: date is required", i+1)
		}
	}

	categorized := h.engine.CategorizeNew(ctx, batch)
	if err := h.repos.Transactions.BulkInsert(ctx, batch); err != nil {
		return nil, storeErr(err, "insert %d transactions", len(batch))
	}
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"count":       len(batch),
		"categorized": categorized,
	}).Info("transactions added")
	return batch, nil
}

func (h *Handler) GetTransactions(ctx context.Context, req contracts.GetTransactions) (models.GetTransactionsResponse, error) {
	if req.Month != nil && (*req.Month < 1 || *req.Month > 12) {
		return models.GetTransactionsResponse{}, apperr.Invalid("month must be between 1 and 12, got %d", *req.Month)
	}

	txs, err := h.repos.Transactions.Query(ctx, models.TransactionFilter{
		Year:         req.Year,
		Month:        req.Month,
		Account:      req.Account,
		Counterparty: req.Counterparty,
	})
	if err != nil {
		return models.GetTransactionsResponse{}, storeErr(err, "query transactions")
	}

	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return models.GetTransactionsResponse{Transactions: txs, TotalAmount: total, Count: len(txs)}, nil
}

// UpdateTransaction overwrites the editable fields of a stored transaction.
func (h *Handler) UpdateTransaction(ctx context.Context, req contracts.UpdateTransaction) error {
	if req.Date.IsZero() {
		return apperr.Invalid("date is required")
	}
	t, err := h.repos.Transactions.GetByID(ctx, req.ID)
	if err != nil {
		return storeErr(err, "load transaction %d", req.ID)
	}

	t.TransactionDate = req.Date.Time
	t.Title = req.Title
	t.Counterparty = req.Counterparty
	t.Amount = req.Amount
	t.Category = req.Category
	t.Account = req.Account
	t.Currency = req.Currency

	if err := h.repos.Transactions.Update(ctx, t); err != nil {
		return storeErr(err, "update transaction %d", req.ID)
	}
	return nil
}

func (h *Handler) ClearAllTransactions(ctx context.Context, _ contracts.ClearAllTransactions) error {
	if err := h.repos.Transactions.Clear(ctx); err != nil {
		return storeErr(err, "clear transactions")
	}
	logging.FromContext(ctx).Warn("all transactions cleared")
	return nil
}

func (h *Handler) GetUncategorizedTransactions(ctx context.Context, _ contracts.GetUncategorizedTransactions) ([]models.Transaction, error) {
	txs, err := h.repos.Transactions.GetUncategorized(ctx)
	if err != nil {
		return nil, storeErr(err, "load uncategorized transactions")
	}
	return txs, nil
}

func (h *Handler) GetTransactionFilters(ctx context.Context, _ contracts.GetTransactionFilters) (models.TransactionFilters, error) {
	f, err := h.repos.Transactions.Filters(ctx)
	if err != nil {
		return models.TransactionFilters{}, storeErr(err, "load transaction filters")
	}
	return f, nil
}

type analysisGroup struct {
	name     string
	count    int
	total    decimal.Decimal
	currency string
}

// GetCategoryAnalysis groups outflows by category. Colours follow the order in which
// categories first appear; the result is sorted by absolute total, largest first.
func (h *Handler) GetCategoryAnalysis(ctx context.Context, _ contracts.GetCategoryAnalysis) ([]models.CategoryAnalysisDto, error) {
	txs, err := h.repos.Transactions.GetAll(ctx)
	if err != nil {
		return nil, storeErr(err, "load transactions")
	}

	var groups []*analysisGroup
	index := map[string]*analysisGroup{}
	outflows := 0
	for _, t := range txs {
		if !t.Amount.IsNegative() {
			continue
		}
		outflows++
		name := uncategorizedLabel
		if !t.IsUncategorized() {
			name = t.Category
		}
		g, ok := index[name]
		if !ok {
			g = &analysisGroup{name: name, total: decimal.Zero, currency: t.Currency}
			index[name] = g
			groups = append(groups, g)
		}
		g.count++
		g.total = g.total.Add(t.Amount)
	}

	out := make([]models.CategoryAnalysisDto, len(groups))
	for i, g := range groups {
		total := g.total.Abs()
		out[i] = models.CategoryAnalysisDto{
			CategoryName:     g.name,
			TransactionCount: g.count,
			Percentage:       float64(g.count) / float64(outflows) * 100,
			TotalAmount:      total,
			TotalDisplay:     displayAmount(total, g.currency),
			Color:            analysisPalette[i%len(analysisPalette)],
		}
	}
	slices.SortStableFunc(out, func(a, b models.CategoryAnalysisDto) int {
		return b.TotalAmount.Cmp(a.TotalAmount)
	})
	return out, nil
}

// displayAmount formats an amount in its currency, falling back to the default
// currency for blank or unknown codes.
func displayAmount(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		code = defaultCurrency
		cur = money.GetCurrency(code)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
