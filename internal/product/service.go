package product

import (
	"context"
	"errors"
	"strings"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/MikeMC777/storefront-api/internal/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo  Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewService(repo Repository, clk clock.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, clock: clk, log: log.Named("product.service")}
}

// ParseID normalizes id and rejects anything that is not a UUID.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperr.InvalidID("id", id)
	}
	return u.String(), nil
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	p, err := newFromRequest(req)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("category", string(p.Category)),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	key, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("product", key)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	q, err := f.Normalize()
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := applyUpdate(*cur, req)
	if err != nil {
		return nil, err
	}

	next.UpdatedAt = s.clock.Now()
	if next.UpdatedAt.Before(next.CreatedAt) {
		next.UpdatedAt = next.CreatedAt
	}
	if err := s.repo.Update(ctx, next); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("product", next.ID)
		}
		return nil, err
	}
	s.log.Debug("product updated", zap.String("product_id", next.ID))
	return next, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	key, err := ParseID(id)
	if err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("product", key)
	}
	s.log.Info("product deleted", zap.String("product_id", key))
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
