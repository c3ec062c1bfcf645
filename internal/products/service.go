package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amontes/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
	"github.com/amontes/storefront-backend/pkg/pagination"
	"github.com/amontes/storefront-backend/pkg/redis"
)

const slugCacheTTL = 5 * time.Minute

// Service exposes catalog read operations for the storefront.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListProducts(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams captures the browse endpoint inputs.
type ListParams struct {
	Query  string
	Limit  int
	Cursor string
}

// ListResult is one page of catalog listings.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, params listQuery) ([]models.Product, *pagination.Cursor, error)
}

// Cache holds hot catalog reads. A nil cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type service struct {
	repo  repository
	cache Cache
}

// NewService builds the catalog service.
func NewService(repo repository, cache Cache) (Service, error) {
	if repo == nil {
		return nil, errors.New("product repository required")
	}
	return &service{repo: repo, cache: cache}, nil
}

// GetByID returns the raw product row. Callers treat gorm.ErrRecordNotFound
// as an unknown product.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	key := redis.Key("product", "slug", slug)
	if cached, ok := s.cachedDTO(ctx, key); ok {
		return cached, nil
	}

	row, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	dto := NewProductDTO(row)
	s.storeDTO(ctx, key, dto)
	return dto, nil
}

// cachedDTO returns a cached projection when present. Cache failures are
// treated as misses.
func (s *service) cachedDTO(ctx context.Context, key string) (*ProductDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var dto ProductDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil, false
	}
	return &dto, true
}

func (s *service) storeDTO(ctx context.Context, key string, dto *ProductDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(dto)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, payload, slugCacheTTL)
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		search: params.Query,
		limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, len(rows))
	for i := range rows {
		items[i] = *NewProductDTO(&rows[i])
	}

	result := &ListResult{Products: items}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
