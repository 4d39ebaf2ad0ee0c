// internal/contracts/expenses.go
package contracts

import (
	"finance-predictor/internal/models"

	"github.com/shopspring/decimal"
)

type GetCategories struct{}

type AddCategory struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type DeleteCategory struct {
	ID int `json:"id"`
}

// GetCategoryRules is served on POST for compatibility with existing clients.
type GetCategoryRules struct{}

type AddCategoryRule struct {
	Keyword    string           `json:"keyword"`
	CategoryID int              `json:"categoryId"`
	FieldType  models.FieldType `json:"fieldType"`
}

type UpdateCategoryRule struct {
	ID         int              `json:"id"`
	Keyword    string           `json:"keyword"`
	CategoryID int              `json:"categoryId"`
	FieldType  models.FieldType `json:"fieldType"`
}

type DeleteCategoryRule struct {
	ID int `json:"id"`
}

type ApplyCategoryRules struct{}

type AssignCategoryToTransaction struct {
	TransactionID int `json:"transactionId"`
	CategoryID    int `json:"categoryId"`
}

type GetUncategorizedTransactions struct{}

type GetCategoryAnalysis struct{}

type AddTransactions struct {
	Transactions []models.Transaction `json:"transactions"`
}

// ImportTransactions stores a parsed statement like AddTransactions and returns the stored
// rows with their ids and categories. It has no route; the upload handler dispatches it.
type ImportTransactions struct {
	Transactions []models.Transaction
}

// GetTransactions filters by year, month (only together with year), account and counterparty.
type GetTransactions struct {
	Year         *int   `json:"year,omitempty"`
	Month        *int   `json:"month,omitempty"`
	Account      string `json:"account,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
}

type UpdateTransaction struct {
	ID           int             `json:"id"`
	Date         models.Date     `json:"date"`
	Title        string          `json:"title"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Account      string          `json:"account"`
	Currency     string          `json:"currency"`
}

type ClearAllTransactions struct{}

type GetTransactionFilters struct{}
