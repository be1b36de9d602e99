package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service provides catalog operations.
//
// Visibility contract:
// - Regular users only ever see active products.
// - Administrators see everything and own all mutations.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Repository is the persistence contract for products.
type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]Product, error)
	FindByID(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
}

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

func (s *Service) List(ctx context.Context, includeInactive bool) ([]Product, error) {
	return s.repo.List(ctx, includeInactive)
}

// Get returns a product. Inactive products are hidden unless asAdmin is set.
func (s *Service) Get(ctx context.Context, id int64, asAdmin bool) (Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.Activo && !asAdmin {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	now := s.clock().UTC()
	p.Activo = true
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if p.ID <= 0 {
		return Product{}, ErrInvalidProduct
	}
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	existing, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, p)
}

// Deactivate hides a product from regular users without deleting it; existing
// solicitudes keep their premium snapshot.
func (s *Service) Deactivate(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.Activo = false
	p.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, p)
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Nombre) == "" {
		return ErrInvalidProduct
	}
	if strings.TrimSpace(p.Categoria) == "" {
		return ErrInvalidProduct
	}
	if strings.TrimSpace(p.Aseguradora) == "" {
		return ErrInvalidProduct
	}
	if p.PrimaMensualMinor <= 0 {
		return ErrInvalidProduct
	}
	return nil
}
