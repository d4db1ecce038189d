package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/ledger/internal/id"
	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/market"
	"github.com/shopspring/decimal"
)

// Engine is the entry point used by outer layers. Mutations of one
// portfolio are serialized; different portfolios proceed in parallel.
type Engine struct {
	repo    Repository
	fees    FeeStrategy
	journal journal.Journal
	log     zerolog.Logger
	now     func() time.Time

	portfolios *keyedMutex
	owners     *keyedMutex
}

type Option func(*Engine)

// WithFeeStrategy replaces the default PercentFee.
func WithFeeStrategy(f FeeStrategy) Option {
	return func(e *Engine) {
		if f != nil {
			e.fees = f
		}
	}
}

// WithJournal sends every committed trade and valuation to j.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) {
		if j != nil {
			e.journal = j
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:       repo,
		fees:       PercentFee{},
		journal:    journal.Nop{},
		log:        zerolog.Nop(),
		now:        time.Now,
		portfolios: newKeyedMutex(),
		owners:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "ledger").Logger()
	return e
}

type createOptions struct {
	name        string
	description string
}

type CreateOption func(*createOptions)

func WithName(name string) CreateOption {
	return func(o *createOptions) { o.name = strings.TrimSpace(name) }
}

func WithDescription(desc string) CreateOption {
	return func(o *createOptions) { o.description = strings.TrimSpace(desc) }
}

// CreatePortfolio opens a portfolio for ownerID holding initialBalance in
// cash. The owner's first portfolio becomes the default one. Names are
// unique per owner; an unnamed portfolio gets "Main" or "Portfolio N".
func (e *Engine) CreatePortfolio(ctx context.Context, ownerID string, initialBalance decimal.Decimal, opts ...CreateOption) (*Portfolio, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidPortfolio)
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance must not be negative, got %s", ErrInvalidPortfolio, initialBalance)
	}

	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	unlock := e.owners.Lock(ownerID)
	defer unlock()

	existing, err := e.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list portfolios of %s: %w", ownerID, err)
	}

	name := o.name
	if name == "" {
		name = defaultName(existing)
	}
	if taken(existing, name, "") {
		return nil, fmt.Errorf("%w: %s already has a portfolio named %q", ErrPortfolioExists, ownerID, name)
	}

	now := e.now()
	p := NewPortfolio(id.At(now), ownerID, initialBalance, now)
	p.Name = name
	p.Description = o.description
	p.IsDefault = len(existing) == 0

	if err := e.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create portfolio: %w", err)
	}

	e.log.Info().
		Str("portfolio", p.ID).
		Str("owner", ownerID).
		Str("name", name).
		Stringer("balance", initialBalance).
		Msg("portfolio created")
	return p, nil
}

func defaultName(existing []*Portfolio) string {
	if len(existing) == 0 {
		return "Main"
	}
	for n := len(existing) + 1; ; n++ {
		name := fmt.Sprintf("Portfolio %d", n)
		if !taken(existing, name, "") {
			return name
		}
	}
}

func taken(existing []*Portfolio, name, exceptID string) bool {
	for _, p := range existing {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// GetPortfolio returns a copy of the stored portfolio.
func (e *Engine) GetPortfolio(ctx context.Context, portfolioID string) (*Portfolio, error) {
	return e.repo.Get(ctx, portfolioID)
}

// ListPortfolios returns the owner's portfolios, oldest first.
func (e *Engine) ListPortfolios(ctx context.Context, ownerID string) ([]*Portfolio, error) {
	return e.repo.ListByOwner(ctx, strings.TrimSpace(ownerID))
}

// Details holds the editable descriptive fields of a portfolio. Nil fields
// are left unchanged.
type Details struct {
	Name        *string
	Description *string
}

// UpdateDetails renames or re-describes a portfolio.
func (e *Engine) UpdateDetails(ctx context.Context, portfolioID string, d Details) (*Portfolio, error) {
	p, err := e.repo.Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	unlockOwner := e.owners.Lock(p.OwnerID)
	defer unlockOwner()
	unlock := e.portfolios.Lock(portfolioID)
	defer unlock()

	// Re-read under the locks; a trade may have committed meanwhile.
	if p, err = e.repo.Get(ctx, portfolioID); err != nil {
		return nil, err
	}

	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidPortfolio)
		}
		existing, err := e.repo.ListByOwner(ctx, p.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("list portfolios of %s: %w", p.OwnerID, err)
		}
		if taken(existing, name, p.ID) {
			return nil, fmt.Errorf("%w: %s already has a portfolio named %q", ErrPortfolioExists, p.OwnerID, name)
		}
		p.Name = name
	}
	if d.Description != nil {
		p.Description = strings.TrimSpace(*d.Description)
	}
	p.UpdatedAt = e.now()

	if err := e.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save portfolio %s: %w", portfolioID, err)
	}
	return p, nil
}

// ExecuteTrade applies req to the portfolio. Either the cash balance, the
// position and the new transaction are all stored, or nothing is.
func (e *Engine) ExecuteTrade(ctx context.Context, portfolioID string, req TradeRequest) (Transaction, error) {
	unlock := e.portfolios.Lock(portfolioID)
	defer unlock()

	p, err := e.repo.Get(ctx, portfolioID)
	if err != nil {
		return Transaction{}, err
	}

	tx, err := p.Execute(req, e.fees, e.now())
	if err != nil {
		e.log.Debug().
			Err(err).
			Str("portfolio", portfolioID).
			Str("symbol", req.Symbol).
			Str("side", string(req.Side)).
			Msg("trade rejected")
		return Transaction{}, err
	}

	if err := e.repo.Save(ctx, p); err != nil {
		return Transaction{}, fmt.Errorf("save portfolio %s: %w", portfolioID, err)
	}

	e.log.Info().
		Str("portfolio", portfolioID).
		Str("tx", tx.ID).
		Str("symbol", tx.Symbol).
		Str("side", string(tx.Side)).
		Stringer("quantity", tx.Quantity).
		Stringer("price", tx.Price).
		Stringer("fee", tx.Fee).
		Stringer("cash", p.CashBalance).
		Msg("trade executed")

	if err := e.journal.RecordTransaction(tx.Record()); err != nil {
		e.log.Warn().Err(err).Str("tx", tx.ID).Msg("journal transaction")
	}
	return tx, nil
}

// Revalue marks the portfolio to market with snapshot and stores the new
// prices and totals.
func (e *Engine) Revalue(ctx context.Context, portfolioID string, snapshot market.Snapshot) (PortfolioValuation, error) {
	unlock := e.portfolios.Lock(portfolioID)
	defer unlock()

	p, err := e.repo.Get(ctx, portfolioID)
	if err != nil {
		return PortfolioValuation{}, err
	}

	v := p.Revalue(snapshot)
	if err := e.repo.Save(ctx, p); err != nil {
		return PortfolioValuation{}, fmt.Errorf("save portfolio %s: %w", portfolioID, err)
	}

	stale := 0
	for _, pv := range v.Positions {
		if _, ok := snapshot.Price(pv.Symbol); !ok {
			stale++
		}
	}
	e.log.Debug().
		Str("portfolio", portfolioID).
		Stringer("total_value", v.TotalValue).
		Int("stale", stale).
		Msg("portfolio revalued")

	err = e.journal.RecordValuation(journal.ValuationSnapshot{
		PortfolioID:        portfolioID,
		Time:               e.now(),
		CashBalance:        v.CashBalance,
		TotalValue:         v.TotalValue,
		TotalReturn:        v.TotalReturn,
		TotalReturnPercent: v.TotalReturnPercent,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("portfolio", portfolioID).Msg("journal valuation")
	}
	return v, nil
}

// GetHistory returns a page of the portfolio's transactions.
func (e *Engine) GetHistory(ctx context.Context, portfolioID string, f HistoryFilter) (Page, error) {
	if err := f.Validate(); err != nil {
		return Page{}, err
	}
	p, err := e.repo.Get(ctx, portfolioID)
	if err != nil {
		return Page{}, err
	}
	return p.History(f), nil
}

// RealizedPL returns the realized profit of symbol, or of every symbol
// when symbol is empty.
func (e *Engine) RealizedPL(ctx context.Context, portfolioID, symbol string) (decimal.Decimal, error) {
	p, err := e.repo.Get(ctx, portfolioID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.RealizedPL(symbol), nil
}

// Record converts the transaction to its journal form.
func (t Transaction) Record() journal.TransactionRecord {
	return journal.TransactionRecord{
		TransactionID: t.ID,
		PortfolioID:   t.PortfolioID,
		Seq:           t.Seq,
		Symbol:        t.Symbol,
		Side:          string(t.Side),
		Quantity:      t.Quantity,
		Price:         t.Price,
		Fee:           t.Fee,
		Total:         t.Total,
		CostBasis:     t.CostBasis,
		Time:          t.Timestamp,
	}
}
