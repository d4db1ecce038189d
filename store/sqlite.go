// Package store persists portfolios in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
)

// SQLite is a ledger.Repository backed by a single SQLite file.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ ledger.Repository = (*SQLite)(nil)

// New opens (or creates) the database at path and applies the schema.
func New(path string, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite would answer SQLITE_BUSY otherwise.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{
		db:  db,
		log: log.With().Str("repo", "sqlite").Str("path", path).Logger(),
	}, nil
}

func (s *SQLite) Create(ctx context.Context, p *ledger.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO portfolios
		(id, owner_id, name, description, is_default, cash_balance, initial_balance,
		 total_value, total_return, total_return_pct, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.IsDefault, p.CashBalance, p.InitialBalance,
		p.TotalValue, p.TotalReturn, p.TotalReturnPercent, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: %s", ledger.ErrPortfolioExists, p.ID)
		}
		return fmt.Errorf("insert portfolio %s: %w", p.ID, err)
	}

	if err := writeChildren(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.log.Debug().Str("portfolio", p.ID).Msg("portfolio inserted")
	return nil
}

// Save writes the portfolio row, replaces its positions and appends the
// transactions not stored yet, all in one SQL transaction.
func (s *SQLite) Save(ctx context.Context, p *ledger.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE portfolios SET
			name = ?, description = ?, is_default = ?, cash_balance = ?,
			total_value = ?, total_return = ?, total_return_pct = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.IsDefault, p.CashBalance,
		p.TotalValue, p.TotalReturn, p.TotalReturnPercent, p.UpdatedAt.UTC(), p.ID,
	)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: name %q", ledger.ErrPortfolioExists, p.Name)
		}
		return fmt.Errorf("update portfolio %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrPortfolioNotFound, p.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE portfolio_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear positions of %s: %w", p.ID, err)
	}
	if err := writeChildren(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.log.Debug().
		Str("portfolio", p.ID).
		Int("positions", len(p.Positions)).
		Int("transactions", len(p.Transactions)).
		Msg("portfolio saved")
	return nil
}

func writeChildren(ctx context.Context, tx *sql.Tx, p *ledger.Portfolio) error {
	for _, sym := range p.Positions.Symbols() {
		pos := p.Positions[sym]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO positions
			(portfolio_id, symbol, quantity, average_cost, last_price, opened_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, pos.Symbol, pos.Quantity, pos.AverageCost, pos.LastKnownPrice, pos.OpenedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert position %s/%s: %w", p.ID, sym, err)
		}
	}

	// Transactions are append-only; rows already stored are left alone.
	for _, t := range p.Transactions {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO transactions
			(id, portfolio_id, seq, symbol, side, quantity, price, fee, total, cost_basis, time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, p.ID, t.Seq, t.Symbol, string(t.Side), t.Quantity, t.Price,
			t.Fee, t.Total, t.CostBasis, t.Timestamp.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*ledger.Portfolio, error) {
	p := &ledger.Portfolio{Positions: make(ledger.PositionBook)}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, is_default, cash_balance, initial_balance,
		       total_value, total_return, total_return_pct, created_at, updated_at
		FROM portfolios
		WHERE id = ?`, id)

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.IsDefault,
		&p.CashBalance,
		&p.InitialBalance,
		&p.TotalValue,
		&p.TotalReturn,
		&p.TotalReturnPercent,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrPortfolioNotFound, id)
		}
		return nil, err
	}

	if err := s.loadPositions(ctx, p); err != nil {
		return nil, err
	}
	if err := s.loadTransactions(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLite) loadPositions(ctx context.Context, p *ledger.Portfolio) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, quantity, average_cost, last_price, opened_at
		FROM positions
		WHERE portfolio_id = ?`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pos ledger.Position
		var last decimal.NullDecimal
		if err := rows.Scan(&pos.Symbol, &pos.Quantity, &pos.AverageCost, &last, &pos.OpenedAt); err != nil {
			return err
		}
		pos.LastKnownPrice = last
		p.Positions[pos.Symbol] = &pos
	}
	return rows.Err()
}

func (s *SQLite) loadTransactions(ctx context.Context, p *ledger.Portfolio) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, symbol, side, quantity, price, fee, total, cost_basis, time
		FROM transactions
		WHERE portfolio_id = ?
		ORDER BY seq ASC`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := ledger.Transaction{PortfolioID: p.ID}
		var side string
		if err := rows.Scan(
			&t.ID,
			&t.Seq,
			&t.Symbol,
			&side,
			&t.Quantity,
			&t.Price,
			&t.Fee,
			&t.Total,
			&t.CostBasis,
			&t.Timestamp,
		); err != nil {
			return err
		}
		t.Side = ledger.Side(side)
		p.Transactions = append(p.Transactions, t)
	}
	return rows.Err()
}

// ListByOwner returns the owner's portfolios, oldest first.
func (s *SQLite) ListByOwner(ctx context.Context, ownerID string) ([]*ledger.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM portfolios
		WHERE owner_id = ?
		ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	// The single connection must be released before loading each portfolio.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*ledger.Portfolio, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
