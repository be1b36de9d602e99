package solicitud

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early
// development.
//
// NOTE: This is not intended for production; use PostgresRepo.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Solicitud
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, byID: make(map[int64]Solicitud)}
}

func (r *MemoryRepo) Create(ctx context.Context, s Solicitud) (Solicitud, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.nextID
	r.nextID++
	r.byID[s.ID] = s
	return s, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (Solicitud, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return Solicitud{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64) ([]Solicitud, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Solicitud
	for _, s := range r.byID {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Solicitud, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Solicitud, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *MemoryRepo) UpdateEstado(ctx context.Context, id int64, estado Estado, notas string, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Estado = estado
	s.Notas = notas
	s.UpdatedAt = updatedAt
	r.byID[id] = s
	return nil
}

func sortByCreatedDesc(ss []Solicitud) {
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].CreatedAt.Equal(ss[j].CreatedAt) {
			return ss[i].ID > ss[j].ID
		}
		return ss[i].CreatedAt.After(ss[j].CreatedAt)
	})
}
