// internal/repository/repository.go
package repository

import (
	"context"

	"finance-predictor/internal/models"
)

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Add(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int) error
}

type CategoryRuleRepository interface {
	GetAll(ctx context.Context) ([]models.CategoryRule, error)
	GetByID(ctx context.Context, id int) (*models.CategoryRule, error)
	Add(ctx context.Context, r *models.CategoryRule) error
	Update(ctx context.Context, r *models.CategoryRule) error
	Delete(ctx context.Context, id int) error
	DeleteByCategory(ctx context.Context, categoryID int) (int, error)
}

type TransactionRepository interface {
	GetAll(ctx context.Context) ([]models.Transaction, error)
	Query(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	GetByID(ctx context.Context, id int) (*models.Transaction, error)
	GetUncategorized(ctx context.Context) ([]models.Transaction, error)
	BulkInsert(ctx context.Context, txs []models.Transaction) error
	Update(ctx context.Context, t *models.Transaction) error
	UpdateCategory(ctx context.Context, id int, category string) error
	Clear(ctx context.Context) error
	Filters(ctx context.Context) (models.TransactionFilters, error)
}

// Repositories groups the three stores the handlers depend on.
type Repositories struct {
	Categories   CategoryRepository
	Rules        CategoryRuleRepository
	Transactions TransactionRepository
}
