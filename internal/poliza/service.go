package poliza

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corredora-platform/internal/notify"
	"corredora-platform/internal/solicitud"
	"corredora-platform/internal/users"
)

var (
	ErrNotFound              = errors.New("poliza not found")
	ErrSolicitudNotApproved  = errors.New("solicitud is not in APROBADA")
	ErrAlreadyEmitted        = errors.New("solicitud already has a poliza")
	ErrInvalidPoliza         = errors.New("invalid poliza")
)

// Repository is the persistence contract for polizas.
//
// Create must atomically persist the poliza AND move its solicitud to
// POLIZA_EMITIDA; a poliza row without the estado flip (or vice versa) must
// never be observable.
type Repository interface {
	Create(ctx context.Context, p Poliza) (Poliza, error)
	FindByID(ctx context.Context, id int64) (Poliza, error)
	FindBySolicitud(ctx context.Context, solicitudID int64) (Poliza, error)
	ListByUser(ctx context.Context, userID int64) ([]Poliza, error)
}

// Service emits and serves polizas. Emission is admin-only; the handler
// enforces the role, the service enforces the lifecycle.
type Service struct {
	repo     Repository
	sols     solicitud.Repository
	userRepo users.Repository
	mailer   notify.Mailer
	clock    func() time.Time
}

func NewService(repo Repository, sols solicitud.Repository, userRepo users.Repository, mailer notify.Mailer) *Service {
	return &Service{
		repo:     repo,
		sols:     sols,
		userRepo: userRepo,
		mailer:   mailer,
		clock:    time.Now,
	}
}

type EmitInput struct {
	SolicitudID   int64     `json:"solicitud_id"`
	NumeroPoliza  string    `json:"numero_poliza"`
	DocumentoURL  string    `json:"documento_url"`
	VigenciaDesde time.Time `json:"vigencia_desde"`
	VigenciaHasta time.Time `json:"vigencia_hasta"`
}

// Emit issues a poliza for an approved solicitud.
func (s *Service) Emit(ctx context.Context, in EmitInput) (Poliza, error) {
	if strings.TrimSpace(in.NumeroPoliza) == "" || strings.TrimSpace(in.DocumentoURL) == "" {
		return Poliza{}, ErrInvalidPoliza
	}
	if !in.VigenciaHasta.After(in.VigenciaDesde) {
		return Poliza{}, ErrInvalidPoliza
	}

	sol, err := s.sols.FindByID(ctx, in.SolicitudID)
	if err != nil {
		return Poliza{}, err
	}
	if sol.Estado != solicitud.EstadoAprobada {
		return Poliza{}, ErrSolicitudNotApproved
	}
	if _, err := s.repo.FindBySolicitud(ctx, in.SolicitudID); err == nil {
		return Poliza{}, ErrAlreadyEmitted
	} else if !errors.Is(err, ErrNotFound) {
		return Poliza{}, err
	}

	p, err := s.repo.Create(ctx, Poliza{
		SolicitudID:   in.SolicitudID,
		UserID:        sol.UserID,
		NumeroPoliza:  in.NumeroPoliza,
		DocumentoURL:  in.DocumentoURL,
		VigenciaDesde: in.VigenciaDesde,
		VigenciaHasta: in.VigenciaHasta,
		EmitidaAt:     s.clock().UTC(),
	})
	if err != nil {
		return Poliza{}, err
	}

	s.notifyEmitida(ctx, p)
	return p, nil
}

// Get returns a poliza, restricted to its owner unless the caller is admin.
func (s *Service) Get(ctx context.Context, id, actorID int64, actorIsAdmin bool) (Poliza, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Poliza{}, err
	}
	if p.UserID != actorID && !actorIsAdmin {
		return Poliza{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]Poliza, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) notifyEmitida(ctx context.Context, p Poliza) {
	if s.mailer == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return
	}
	_ = s.mailer.Send(ctx, notify.Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Tu póliza %s fue emitida", p.NumeroPoliza),
		Body: fmt.Sprintf(
			"Hola %s,\n\nTu póliza %s ya está disponible:\n\n%s\n\nVigencia: %s a %s.",
			u.Nombre,
			p.NumeroPoliza,
			p.DocumentoURL,
			p.VigenciaDesde.Format("2006-01-02"),
			p.VigenciaHasta.Format("2006-01-02"),
		),
	})
}
