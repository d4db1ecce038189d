package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recJournal struct {
	txs    []TransactionRecord
	vals   []ValuationSnapshot
	err    error
	closed bool
}

func (r *recJournal) RecordTransaction(t TransactionRecord) error {
	r.txs = append(r.txs, t)
	return r.err
}

func (r *recJournal) RecordValuation(v ValuationSnapshot) error {
	r.vals = append(r.vals, v)
	return r.err
}

func (r *recJournal) Close() error {
	r.closed = true
	return r.err
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	a, b := &recJournal{}, &recJournal{}
	m := Multi{a, b}

	assert.NoError(t, m.RecordTransaction(TransactionRecord{TransactionID: "T1"}))
	assert.NoError(t, m.RecordValuation(ValuationSnapshot{PortfolioID: "P1"}))
	assert.NoError(t, m.Close())

	for _, j := range []*recJournal{a, b} {
		assert.Len(t, j.txs, 1)
		assert.Len(t, j.vals, 1)
		assert.True(t, j.closed)
	}
}

func TestMultiKeepsGoingOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	a, b := &recJournal{err: boom}, &recJournal{}
	m := Multi{a, b}

	err := m.RecordTransaction(TransactionRecord{TransactionID: "T1"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.txs, 1)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	assert.NoError(t, j.RecordTransaction(TransactionRecord{}))
	assert.NoError(t, j.RecordValuation(ValuationSnapshot{}))
	assert.NoError(t, j.Close())
}
