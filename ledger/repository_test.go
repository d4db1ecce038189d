package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()
	p := newTestPortfolio("1000")
	require.NoError(t, repo.Create(ctx, p))

	// Mutating the caller's value must not leak into the repository.
	_, err := p.Execute(buy("A", "1", "10"), nil, t0)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Empty(t, got.Transactions)
	assertDec(t, "1000", got.CashBalance)

	require.NoError(t, repo.Save(ctx, p))
	got, err = repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, got.Transactions, 1)

	got.Positions["A"].Quantity = dec("99")
	again, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	assertDec(t, "1", again.Positions["A"].Quantity)
}

func TestMemoryRepositoryErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrPortfolioNotFound)

	err = repo.Save(ctx, newTestPortfolio("1"))
	assert.ErrorIs(t, err, ErrPortfolioNotFound)

	require.NoError(t, repo.Create(ctx, newTestPortfolio("1")))
	err = repo.Create(ctx, newTestPortfolio("1"))
	assert.ErrorIs(t, err, ErrPortfolioExists)
}

func TestMemoryRepositoryListByOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	mk := func(id, owner string, minute int) {
		p := NewPortfolio(id, owner, dec("1"), t0.Add(timeMinutes(minute)))
		require.NoError(t, repo.Create(ctx, p))
	}
	mk("c", "alice", 2)
	mk("a", "alice", 0)
	mk("b", "alice", 0)
	mk("z", "bob", 1)

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	list, err = repo.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, list)
}
