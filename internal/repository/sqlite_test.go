package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/database"
	"finance-predictor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepos(t *testing.T) (Repositories, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewSQLRepositories(database.Wrap(sqlx.NewDb(mockDB, "sqlite3"))), mock
}

func TestSQLCategoryGetAll(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, description FROM categories ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow(1, "Food", "").
			AddRow(2, "Transport", "Fuel and tickets"))

	got, err := repos.Categories.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{ID: 1, Name: "Food"}, {ID: 2, Name: "Transport", Description: "Fuel and tickets"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCategoryGetByIDNotFound(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery("SELECT id, name, description FROM categories WHERE id").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}))

	_, err := repos.Categories.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSQLCategoryAddMapsUniqueViolation(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("Food", "").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	err := repos.Categories.Add(context.Background(), &models.Category{Name: "Food"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSQLCategoryAddSetsID(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("Food", "Groceries").
		WillReturnResult(sqlmock.NewResult(5, 1))

	c := &models.Category{Name: "Food", Description: "Groceries"}
	require.NoError(t, repos.Categories.Add(context.Background(), c))
	assert.Equal(t, 5, c.ID)
}

func TestSQLRuleUpdateNotFound(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec("UPDATE category_rules").
		WithArgs("ORLEN", 2, 2, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repos.Rules.Update(context.Background(), &models.CategoryRule{ID: 9, Keyword: "ORLEN", CategoryID: 2, FieldType: models.FieldCounterparty})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSQLRuleDeleteByCategory(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec("DELETE FROM category_rules WHERE category_id").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repos.Rules.DeleteByCategory(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLBulkInsertUsesOneTransaction(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO transactions")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(11, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	txs := []models.Transaction{
		{TransactionDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Title: "Coffee", Amount: decimal.RequireFromString("-12.5")},
		{TransactionDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Title: "Fuel", Amount: decimal.RequireFromString("-200")},
	}
	require.NoError(t, repos.Transactions.BulkInsert(context.Background(), txs))
	assert.Equal(t, 11, txs[0].ID)
	assert.Equal(t, 12, txs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBulkInsertRollsBackOnError(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO transactions")
	prep.ExpectExec().WillReturnError(sqlite3.Error{Code: sqlite3.ErrFull})
	mock.ExpectRollback()

	err := repos.Transactions.BulkInsert(context.Background(), []models.Transaction{{Title: "x"}})
	assert.ErrorContains(t, err, "insert transaction 1 of 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLQueryBuildsYearMonthRange(t *testing.T) {
	repos, mock := newMockRepos(t)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "transaction_date", "booking_date", "title", "counterparty", "amount", "currency", "account",
		"account_number", "bank_name", "details", "transaction_number", "blocked_amount", "blocked_currency",
		"payment_amount", "payment_currency", "balance_after", "balance_currency", "category",
	}).AddRow(1, from.AddDate(0, 0, 4), nil, "Coffee", "Cafe", "-12.50", "PLN", "Main", "", "", "", "", nil, "", nil, "", nil, "", "")

	mock.ExpectQuery(`transaction_date >= \? AND transaction_date < \? AND account = \? ORDER BY transaction_date DESC`).
		WithArgs(from, to, "Main").
		WillReturnRows(rows)

	year, month := 2024, 3
	got, err := repos.Transactions.Query(context.Background(), models.TransactionFilter{Year: &year, Month: &month, Account: "Main"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-12.50")))
	assert.False(t, got[0].BalanceAfter.Valid)
	assert.Nil(t, got[0].BookingDate)
	assert.True(t, got[0].IsUncategorized())
}

func TestSQLUpdateCategoryStoresNullForBlank(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec("UPDATE transactions SET category").
		WithArgs(nil, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repos.Transactions.UpdateCategory(context.Background(), 4, "  "))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLFilters(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery("SELECT DISTINCT account").WillReturnRows(sqlmock.NewRows([]string{"account"}).AddRow("Card").AddRow("Main"))
	mock.ExpectQuery("SELECT DISTINCT counterparty").WillReturnRows(sqlmock.NewRows([]string{"counterparty"}).AddRow("Orlen"))
	mock.ExpectQuery("SELECT DISTINCT CAST").WillReturnRows(sqlmock.NewRows([]string{"year"}).AddRow(2024).AddRow(2023))

	f, err := repos.Transactions.Filters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TransactionFilters{
		Accounts:       []string{"Card", "Main"},
		Counterparties: []string{"Orlen"},
		Years:          []int{2024, 2023},
	}, f)
}
