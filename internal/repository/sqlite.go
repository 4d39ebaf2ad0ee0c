// internal/repository/sqlite.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/database"
	"finance-predictor/internal/models"
)

// NewSQLRepositories returns SQLite-backed repositories sharing one handle.
func NewSQLRepositories(db *database.DB) Repositories {
	return Repositories{
		Categories:   NewCategoryRepository(db),
		Rules:        NewCategoryRuleRepository(db),
		Transactions: NewTransactionRepository(db),
	}
}

func nullIfBlank(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Categories

type categoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.SelectContext(ctx, &categories, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := r.db.GetContext(ctx, &c, `SELECT id, name, description FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select category %d: %w", id, err)
	}
	return &c, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := r.db.GetContext(ctx, &c, `SELECT id, name, description FROM categories WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("select category %q: %w", name, err)
	}
	return &c, nil
}

func (r *categoryRepository) Add(ctx context.Context, c *models.Category) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name, description) VALUES (?, ?)`, c.Name, c.Description)
	if database.IsUniqueViolation(err) {
		return apperr.Invalid("category %q already exists", c.Name)
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = int(id)
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c *models.Category) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ?, description = ? WHERE id = ?`, c.Name, c.Description, c.ID)
	if database.IsUniqueViolation(err) {
		return apperr.Invalid("category %q already exists", c.Name)
	}
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return affected(res, apperr.NotFound("category %d not found", c.ID))
}

func (r *categoryRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// Category rules

type categoryRuleRepository struct {
	db *database.DB
}

func NewCategoryRuleRepository(db *database.DB) CategoryRuleRepository {
	return &categoryRuleRepository{db: db}
}

const selectRulesSQL = `SELECT id, keyword, category_id, field_type FROM category_rules`

func (r *categoryRuleRepository) GetAll(ctx context.Context) ([]models.CategoryRule, error) {
	rules := []models.CategoryRule{}
	if err := r.db.SelectContext(ctx, &rules, selectRulesSQL+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select category rules: %w", err)
	}
	return rules, nil
}

func (r *categoryRuleRepository) GetByID(ctx context.Context, id int) (*models.CategoryRule, error) {
	var rule models.CategoryRule
	err := r.db.GetContext(ctx, &rule, selectRulesSQL+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category rule %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select category rule %d: %w", id, err)
	}
	return &rule, nil
}

func (r *categoryRuleRepository) Add(ctx context.Context, rule *models.CategoryRule) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO category_rules (keyword, category_id, field_type) VALUES (?, ?, ?)`,
		rule.Keyword, rule.CategoryID, int(rule.FieldType))
	if err != nil {
		return fmt.Errorf("insert category rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rule.ID = int(id)
	return nil
}

func (r *categoryRuleRepository) Update(ctx context.Context, rule *models.CategoryRule) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE category_rules SET keyword = ?, category_id = ?, field_type = ? WHERE id = ?`,
		rule.Keyword, rule.CategoryID, int(rule.FieldType), rule.ID)
	if err != nil {
		return fmt.Errorf("update category rule %d: %w", rule.ID, err)
	}
	return affected(res, apperr.NotFound("category rule %d not found", rule.ID))
}

func (r *categoryRuleRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category rule %d: %w", id, err)
	}
	return nil
}

func (r *categoryRuleRepository) DeleteByCategory(ctx context.Context, categoryID int) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM category_rules WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete rules of category %d: %w", categoryID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Transactions

type transactionRepository struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const selectTransactionsSQL = `
SELECT id, transaction_date, booking_date, title, counterparty, amount, currency, account,
       account_number, bank_name, details, transaction_number, blocked_amount, blocked_currency,
       payment_amount, payment_currency, balance_after, balance_currency,
       COALESCE(category, '') AS category
FROM transactions`

const insertTransactionSQL = `
INSERT INTO transactions (
    transaction_date, booking_date, title, counterparty, amount, currency, account,
    account_number, bank_name, details, transaction_number, blocked_amount, blocked_currency,
    payment_amount, payment_currency, balance_after, balance_currency, category
) VALUES (
    :transaction_date, :booking_date, :title, :counterparty, :amount, :currency, :account,
    :account_number, :bank_name, :details, :transaction_number, :blocked_amount, :blocked_currency,
    :payment_amount, :payment_currency, :balance_after, :balance_currency, NULLIF(TRIM(:category), '')
)`

func (r *transactionRepository) GetAll(ctx context.Context) ([]models.Transaction, error) {
	return r.Query(ctx, models.TransactionFilter{})
}

func (r *transactionRepository) Query(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	query := selectTransactionsSQL + ` WHERE 1=1`
	args := []interface{}{}

	if f.Year != nil {
		from := time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if f.Month != nil {
			from = time.Date(*f.Year, time.Month(*f.Month), 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		}
		query += " AND transaction_date >= ? AND transaction_date < ?"
		args = append(args, from, to)
	}
	if f.Account != "" {
		query += " AND account = ?"
		args = append(args, f.Account)
	}
	if f.Counterparty != "" {
		query += " AND counterparty = ?"
		args = append(args, f.Counterparty)
	}
	query += " ORDER BY transaction_date DESC, id ASC"

	txs := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.GetContext(ctx, &t, selectTransactionsSQL+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("transaction %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select transaction %d: %w", id, err)
	}
	return &t, nil
}

func (r *transactionRepository) GetUncategorized(ctx context.Context) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := r.db.SelectContext(ctx, &txs,
		selectTransactionsSQL+` WHERE category IS NULL OR TRIM(category) = '' ORDER BY transaction_date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("select uncategorized transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) BulkInsert(ctx context.Context, txs []models.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertTransactionSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range txs {
		row := normalise(txs[i])
		res, err := stmt.ExecContext(ctx, row)
		if err != nil {
			return fmt.Errorf("insert transaction %d of %d: %w", i+1, len(txs), err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		txs[i].ID = int(id)
	}

	return tx.Commit()
}

// normalise stores dates in UTC so range filters compare lexically.
func normalise(t models.Transaction) models.Transaction {
	t.TransactionDate = t.TransactionDate.UTC()
	if t.BookingDate != nil {
		b := t.BookingDate.UTC()
		t.BookingDate = &b
	}
	return t
}

func (r *transactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	row := normalise(*t)
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET transaction_date = ?, title = ?, counterparty = ?, amount = ?, currency = ?,
		    account = ?, category = ?
		WHERE id = ?`,
		row.TransactionDate, row.Title, row.Counterparty, row.Amount, row.Currency,
		row.Account, nullIfBlank(row.Category), row.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return affected(res, apperr.NotFound("transaction %d not found", t.ID))
}

func (r *transactionRepository) UpdateCategory(ctx context.Context, id int, category string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, nullIfBlank(category), id)
	if err != nil {
		return fmt.Errorf("update category of transaction %d: %w", id, err)
	}
	return affected(res, apperr.NotFound("transaction %d not found", id))
}

func (r *transactionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

func (r *transactionRepository) Filters(ctx context.Context) (models.TransactionFilters, error) {
	f := models.TransactionFilters{Accounts: []string{}, Counterparties: []string{}, Years: []int{}}

	if err := r.db.SelectContext(ctx, &f.Accounts,
		`SELECT DISTINCT account FROM transactions WHERE TRIM(account) <> '' ORDER BY account`); err != nil {
		return f, fmt.Errorf("select accounts: %w", err)
	}
	if err := r.db.SelectContext(ctx, &f.Counterparties,
		`SELECT DISTINCT counterparty FROM transactions WHERE TRIM(counterparty) <> '' ORDER BY counterparty`); err != nil {
		return f, fmt.Errorf("select counterparties: %w", err)
	}
	if err := r.db.SelectContext(ctx, &f.Years,
		`SELECT DISTINCT CAST(substr(transaction_date, 1, 4) AS INTEGER) AS year FROM transactions ORDER BY year DESC`); err != nil {
		return f, fmt.Errorf("select years: %w", err)
	}
	return f, nil
}
