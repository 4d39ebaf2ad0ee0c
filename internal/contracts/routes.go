// internal/contracts/routes.go
package contracts

import (
	"net/http"

	"finance-predictor/internal/cqrs"
	"finance-predictor/internal/models"
)

// Register declares the route of every request shape.
func Register(e *cqrs.Endpoints) {
	cqrs.Query[GetApiStatus, models.ApiStatus](e, "/api/status", http.MethodGet)

	// Categories
	cqrs.Query[GetCategories, []models.CategoryDto](e, "/api/expenses/categories", http.MethodGet)
	cqrs.Query[AddCategory, models.CategoryDto](e, "/api/expenses/categories", http.MethodPost)
	cqrs.Query[UpdateCategory, models.CategoryDto](e, "/api/expenses/categories", http.MethodPut)
	cqrs.Command[DeleteCategory](e, "/api/expenses/categories", http.MethodDelete)

	// Category rules
	cqrs.Query[GetCategoryRules, []models.CategoryRuleDto](e, "/api/expenses/categoryrules", http.MethodPost)
	cqrs.Query[AddCategoryRule, models.CategoryRuleDto](e, "/api/expenses/categorierules", http.MethodPost)
	cqrs.Query[UpdateCategoryRule, models.CategoryRuleDto](e, "/api/expenses/categorierules", http.MethodPut)
	cqrs.Command[DeleteCategoryRule](e, "/api/expenses/categorierules", http.MethodDelete)
	cqrs.Query[ApplyCategoryRules, models.ApplyResult](e, "/api/expenses/apply-category-rules", http.MethodPost)

	// Expense views over transactions
	cqrs.Command[AssignCategoryToTransaction](e, "/api/expenses/transactions/{TransactionId}/category", http.MethodPost)
	cqrs.Query[GetUncategorizedTransactions, []models.Transaction](e, "/api/expenses/transactions/uncategorized", http.MethodPost)
	cqrs.Query[GetCategoryAnalysis, []models.CategoryAnalysisDto](e, "/api/expenses/category-analysis", http.MethodGet)

	// Transactions
	cqrs.Command[AddTransactions](e, "/api/transactions/add", http.MethodPost)
	cqrs.Query[GetTransactions, models.GetTransactionsResponse](e, "/api/transactions/query", http.MethodPost)
	cqrs.Command[UpdateTransaction](e, "/api/transactions/update", http.MethodPut)
	cqrs.Command[ClearAllTransactions](e, "/api/transactions/clear", http.MethodDelete)
	cqrs.Query[GetTransactionFilters, models.TransactionFilters](e, "/api/transactions/filters", http.MethodGet)

	// Market data and prediction
	cqrs.Query[GetSp500Tickers, []models.CompanyTicker](e, "/api/marketdata/tickers", http.MethodGet)
	cqrs.Query[GetRawMarketData, []models.RawMarketData](e, "/api/marketdata/{Symbol}", http.MethodGet)
	cqrs.Query[PredictFromRaw, models.PredictionResult](e, "/api/prediction/predict-from-raw", http.MethodPost)
	cqrs.Command[TrainModel](e, "/api/prediction/train", http.MethodPost)
	cqrs.Query[GetPrediction, models.PredictionResult](e, "/api/prediction/predict", http.MethodPost)
	cqrs.Query[RunBacktest, models.BacktestResult](e, "/api/backtest", http.MethodPost)
}
