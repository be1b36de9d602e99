package solicitud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"corredora-platform/internal/catalog"
	"corredora-platform/internal/notify"
	"corredora-platform/internal/users"
)

var (
	ErrNotFound     = errors.New("solicitud not found")
	ErrEmptyRequest = errors.New("solicitud requires at least one product")
	ErrForbidden    = errors.New("not allowed on this solicitud")
)

// Repository is the persistence contract for solicitudes.
type Repository interface {
	Create(ctx context.Context, s Solicitud) (Solicitud, error)
	FindByID(ctx context.Context, id int64) (Solicitud, error)
	ListByUser(ctx context.Context, userID int64) ([]Solicitud, error)
	ListAll(ctx context.Context) ([]Solicitud, error)
	UpdateEstado(ctx context.Context, id int64, estado Estado, notas string, updatedAt time.Time) error
}

// ProductFinder is the slice of the catalog needed to snapshot premiums.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (catalog.Product, error)
}

// Service implements the solicitud flow. Estado changes funnel through
// ChangeEstado so the transition table is enforced in one place.
type Service struct {
	repo     Repository
	products ProductFinder
	userRepo users.Repository
	mailer   notify.Mailer
	clock    func() time.Time
}

func NewService(repo Repository, products ProductFinder, userRepo users.Repository, mailer notify.Mailer) *Service {
	return &Service{
		repo:     repo,
		products: products,
		userRepo: userRepo,
		mailer:   mailer,
		clock:    time.Now,
	}
}

// Create opens a new solicitud in PENDIENTE with premium snapshots taken from
// the current catalog. Inactive or unknown products are rejected.
func (s *Service) Create(ctx context.Context, userID int64, productIDs []int64) (Solicitud, error) {
	if len(productIDs) == 0 {
		return Solicitud{}, ErrEmptyRequest
	}

	items := make([]Item, 0, len(productIDs))
	for _, pid := range productIDs {
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return Solicitud{}, fmt.Errorf("product %d: %w", pid, err)
		}
		if !p.Activo {
			return Solicitud{}, fmt.Errorf("product %d: %w", pid, catalog.ErrNotFound)
		}
		items = append(items, Item{
			ProductID:         p.ID,
			NombreProducto:    p.Nombre,
			PrimaMensualMinor: p.PrimaMensualMinor,
		})
	}

	now := s.clock().UTC()
	return s.repo.Create(ctx, Solicitud{
		UserID:    userID,
		Estado:    EstadoPendiente,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Solicitud, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]Solicitud, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]Solicitud, error) {
	return s.repo.ListAll(ctx)
}

// ChangeEstado applies a lifecycle transition.
//
// Authorization: CANCELADA is user-initiated and only by the owner while the
// solicitud is still PENDIENTE; every other transition is admin-only.
func (s *Service) ChangeEstado(ctx context.Context, id int64, to Estado, notas string, actorID int64, actorIsAdmin bool) (Solicitud, error) {
	sol, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Solicitud{}, err
	}

	if to == EstadoCancelada {
		if sol.UserID != actorID {
			return Solicitud{}, ErrForbidden
		}
	} else if !actorIsAdmin {
		return Solicitud{}, ErrForbidden
	}

	if !CanTransition(sol.Estado, to) {
		return Solicitud{}, ErrInvalidTransition
	}

	now := s.clock().UTC()
	if err := s.repo.UpdateEstado(ctx, id, to, notas, now); err != nil {
		return Solicitud{}, err
	}
	sol.Estado = to
	sol.Notas = notas
	sol.UpdatedAt = now

	s.notifyEstado(ctx, sol)
	return sol, nil
}

// notifyEstado sends the decision email. A send failure never fails the
// transition.
func (s *Service) notifyEstado(ctx context.Context, sol Solicitud) {
	if s.mailer == nil || s.userRepo == nil {
		return
	}

	var subject string
	switch sol.Estado {
	case EstadoAprobada:
		subject = fmt.Sprintf("Tu solicitud #%d fue aprobada", sol.ID)
	case EstadoRechazada:
		subject = fmt.Sprintf("Tu solicitud #%d fue rechazada", sol.ID)
	case EstadoPolizaEmitida:
		subject = fmt.Sprintf("Tu póliza de la solicitud #%d fue emitida", sol.ID)
	default:
		return
	}

	u, err := s.userRepo.FindByID(ctx, sol.UserID)
	if err != nil {
		return
	}

	body := fmt.Sprintf("Hola %s,\n\nTu solicitud #%d cambió de estado a %s.", u.Nombre, sol.ID, sol.Estado)
	if sol.Notas != "" {
		body += "\n\nComentario: " + sol.Notas
	}
	_ = s.mailer.Send(ctx, notify.Message{To: u.Email, Subject: subject, Body: body})
}
