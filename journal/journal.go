// Package journal records committed ledger activity to audit sinks.
//
// The ledger engine feeds a Journal after every committed trade and every
// revaluation. A journal is an append-only side channel: it never drives
// ledger state and a failing journal never rolls back a trade.
package journal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is the journaled form of a committed trade.
type TransactionRecord struct {
	TransactionID string
	PortfolioID   string
	Seq           int64
	Symbol        string
	Side          string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Fee           decimal.Decimal
	Total         decimal.Decimal
	CostBasis     decimal.Decimal
	Time          time.Time
}

// ValuationSnapshot is the journaled form of a mark-to-market refresh.
type ValuationSnapshot struct {
	PortfolioID        string
	Time               time.Time
	CashBalance        decimal.Decimal
	TotalValue         decimal.Decimal
	TotalReturn        decimal.Decimal
	TotalReturnPercent decimal.Decimal
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordValuation(ValuationSnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTransaction(TransactionRecord) error { return nil }
func (Nop) RecordValuation(ValuationSnapshot) error   { return nil }
func (Nop) Close() error                              { return nil }

// Multi fans every record out to all journals. Every journal is attempted;
// the returned error joins the individual failures.
type Multi []Journal

func (m Multi) RecordTransaction(r TransactionRecord) error {
	var errs []error
	for _, j := range m {
		if err := j.RecordTransaction(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordValuation(v ValuationSnapshot) error {
	var errs []error
	for _, j := range m {
		if err := j.RecordValuation(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, j := range m {
		if err := j.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
