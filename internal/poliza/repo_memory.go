package poliza

import (
	"context"
	"sort"
	"sync"
	"time"

	"corredora-platform/internal/solicitud"
)

// MemoryRepo is a simple in-memory repository useful for tests and early
// development. It mirrors the Postgres contract: Create also flips the
// solicitud estado.
//
// NOTE: This is not intended for production; use PostgresRepo.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Poliza

	sols solicitud.Repository
}

func NewMemoryRepo(sols solicitud.Repository) *MemoryRepo {
	return &MemoryRepo{nextID: 1, byID: make(map[int64]Poliza), sols: sols}
}

func (r *MemoryRepo) Create(ctx context.Context, p Poliza) (Poliza, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sol, err := r.sols.FindByID(ctx, p.SolicitudID)
	if err != nil {
		return Poliza{}, err
	}
	if sol.Estado != solicitud.EstadoAprobada {
		return Poliza{}, ErrSolicitudNotApproved
	}
	if err := r.sols.UpdateEstado(ctx, p.SolicitudID, solicitud.EstadoPolizaEmitida, sol.Notas, time.Now().UTC()); err != nil {
		return Poliza{}, err
	}

	p.ID = r.nextID
	r.nextID++
	r.byID[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (Poliza, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return Poliza{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) FindBySolicitud(ctx context.Context, solicitudID int64) (Poliza, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.byID {
		if p.SolicitudID == solicitudID {
			return p, nil
		}
	}
	return Poliza{}, ErrNotFound
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64) ([]Poliza, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Poliza
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmitidaAt.After(out[j].EmitidaAt) })
	return out, nil
}
