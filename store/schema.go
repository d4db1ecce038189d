package store

// Decimals are stored as TEXT so no precision is lost on the way through
// SQLite's REAL affinity.
const Schema = `
CREATE TABLE IF NOT EXISTS portfolios (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL COLLATE NOCASE,
	description TEXT NOT NULL DEFAULT '',
	is_default INTEGER NOT NULL DEFAULT 0,
	cash_balance TEXT NOT NULL,
	initial_balance TEXT NOT NULL,
	total_value TEXT NOT NULL,
	total_return TEXT NOT NULL,
	total_return_pct TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (owner_id, name)
);

CREATE TABLE IF NOT EXISTS positions (
	portfolio_id TEXT NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	quantity TEXT NOT NULL,
	average_cost TEXT NOT NULL,
	last_price TEXT,
	opened_at DATETIME NOT NULL,
	PRIMARY KEY (portfolio_id, symbol)
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL CHECK (side IN ('buy', 'sell')),
	quantity TEXT NOT NULL,
	price TEXT NOT NULL,
	fee TEXT NOT NULL,
	total TEXT NOT NULL,
	cost_basis TEXT NOT NULL,
	time DATETIME NOT NULL,
	UNIQUE (portfolio_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_portfolios_owner ON portfolios(owner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(portfolio_id, time);
`
