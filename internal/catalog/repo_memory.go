package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early
// development.
//
// NOTE: This is not intended for production; use PostgresRepo.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Product
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, byID: make(map[int64]Product)}
}

func (r *MemoryRepo) List(ctx context.Context, includeInactive bool) ([]Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Product
	for _, p := range r.byID {
		if !p.Activo && !includeInactive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Create(ctx context.Context, p Product) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	r.byID[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) Update(ctx context.Context, p Product) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; !ok {
		return Product{}, ErrNotFound
	}
	r.byID[p.ID] = p
	return p, nil
}
