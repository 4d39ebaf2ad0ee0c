// internal/database/migrations.go
package database

const pragmasSQL = `
PRAGMA foreign_keys = ON;
PRAGMA journal_mode = WAL;
`

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS category_rules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword TEXT NOT NULL,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    field_type INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_date DATETIME NOT NULL,
    booking_date DATETIME,
    title TEXT NOT NULL DEFAULT '',
    counterparty TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    currency TEXT NOT NULL DEFAULT '',
    account TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    bank_name TEXT NOT NULL DEFAULT '',
    details TEXT NOT NULL DEFAULT '',
    transaction_number TEXT NOT NULL DEFAULT '',
    blocked_amount TEXT,
    blocked_currency TEXT NOT NULL DEFAULT '',
    payment_amount TEXT,
    payment_currency TEXT NOT NULL DEFAULT '',
    balance_after TEXT,
    balance_currency TEXT NOT NULL DEFAULT '',
    category TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(name);
CREATE INDEX IF NOT EXISTS idx_category_rules_category ON category_rules(category_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account);
CREATE INDEX IF NOT EXISTS idx_transactions_counterparty ON transactions(counterparty);
`
