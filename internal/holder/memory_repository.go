package holder

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	holders map[string]Holder
	roles   map[string]bool
}

// NewMemoryRepository builds an in-memory holder store for tests and dev
// mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		holders: make(map[string]Holder),
		roles:   make(map[string]bool),
	}
}

func (r *memoryRepository) Create(_ context.Context, h Holder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.holders {
		if other.Username == h.Username {
			return ErrExists
		}
	}
	r.holders[h.ID] = h
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holders[id]
	if !ok {
		return Holder{}, ErrNotFound
	}
	return h, nil
}

func (r *memoryRepository) GetByUsername(_ context.Context, username string) (Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.holders {
		if h.Username == username {
			return h, nil
		}
	}
	return Holder{}, ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, h Holder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holders[h.ID]; !ok {
		return ErrNotFound
	}
	r.holders[h.ID] = h
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.holders, id)
	return nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holders = make(map[string]Holder)
	return nil
}

func (r *memoryRepository) List(_ context.Context, f Filter, page Page) ([]Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Holder
	for _, h := range r.holders {
		if f.Matches(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID, out[j].ID) < 0
	})
	return window(out, page), nil
}

func (r *memoryRepository) CreateRole(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roles[name] {
		return ErrRoleExists
	}
	r.roles[name] = true
	return nil
}

func (r *memoryRepository) FilterRoles(_ context.Context, names []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range names {
		if r.roles[name] {
			out = append(out, name)
		}
	}
	return out, nil
}
