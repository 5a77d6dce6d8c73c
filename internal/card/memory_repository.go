package card

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu    sync.RWMutex
	cards map[string]Card
}

// NewMemoryRepository builds an in-memory card store for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{cards: make(map[string]Card)}
}

func (r *memoryRepository) Create(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cards[c.ID]; exists {
		return errors.New("card exists")
	}
	for _, other := range r.cards {
		if other.Number == c.Number {
			return errors.New("card number exists")
		}
	}
	r.cards[c.ID] = c
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) Update(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[c.ID]; !ok {
		return ErrNotFound
	}
	r.cards[c.ID] = c
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, id)
	return nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = make(map[string]Card)
	return nil
}

func (r *memoryRepository) ExistsByNumber(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cards {
		if c.Number == token {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) List(_ context.Context, f Filter, page Page) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return window(r.collect(f, ""), page), nil
}

func (r *memoryRepository) ListByHolder(_ context.Context, holderID string, f Filter, page Page) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return window(r.collect(f, holderID), page), nil
}

func (r *memoryRepository) collect(f Filter, holderID string) []Card {
	var out []Card
	for _, c := range r.cards {
		if holderID != "" && c.HolderID != holderID {
			continue
		}
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID, out[j].ID) < 0
	})
	return out
}

// Transfer mutates both balances inside a single critical section so
// concurrent transfers over the same cards serialize, matching the
// row-locking guarantee of the Postgres store.
func (r *memoryRepository) Transfer(_ context.Context, fromID, toID string, amount decimal.Decimal) (Card, Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.cards[fromID]
	if !ok {
		return Card{}, Card{}, ErrNotFound
	}
	to, ok := r.cards[toID]
	if !ok {
		return Card{}, Card{}, ErrNotFound
	}
	if from.Status != StatusActive || to.Status != StatusActive {
		return Card{}, Card{}, ErrInactiveCard
	}
	if from.Balance.LessThan(amount) {
		return Card{}, Card{}, ErrInsufficientFunds
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	r.cards[fromID] = from
	r.cards[toID] = to
	return from, to, nil
}
