package ledger

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
)

// Repository stores portfolios. Get must return a portfolio the caller may
// mutate freely; nothing changes in the repository until Save.
type Repository interface {
	Create(ctx context.Context, p *Portfolio) error
	Get(ctx context.Context, id string) (*Portfolio, error)
	Save(ctx context.Context, p *Portfolio) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Portfolio, error)
}

// MemoryRepository keeps portfolios in memory. Every read and write deep
// copies, so callers never share state with the repository.
type MemoryRepository struct {
	mu         sync.RWMutex
	portfolios map[string]*Portfolio
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{portfolios: make(map[string]*Portfolio)}
}

func (r *MemoryRepository) Create(ctx context.Context, p *Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.portfolios[p.ID]; ok {
		return fmt.Errorf("%w: id %s", ErrPortfolioExists, p.ID)
	}
	r.portfolios[p.ID] = p.Clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPortfolioNotFound, id)
	}
	return p.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, p *Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.portfolios[p.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrPortfolioNotFound, p.ID)
	}
	r.portfolios[p.ID] = p.Clone()
	return nil
}

// ListByOwner returns the owner's portfolios, oldest first.
func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Portfolio
	for _, p := range r.portfolios {
		if p.OwnerID == ownerID {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *Portfolio) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
