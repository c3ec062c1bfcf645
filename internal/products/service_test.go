package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amontes/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
	"github.com/amontes/storefront-backend/pkg/pagination"
)

func TestServiceGetBySlug(t *testing.T) {
	t.Parallel()

	row := &models.Product{
		ID:         uuid.New(),
		Name:       "Polo Shirt",
		Slug:       "polo-shirt",
		Image:      "/images/polo-shirt.jpg",
		PriceCents: 2599,
		Stock:      4,
		IsActive:   true,
	}
	svc := newCatalogService(t, &stubRepo{rows: []*models.Product{row}})

	dto, err := svc.GetBySlug(context.Background(), "polo-shirt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Price != "25.99" {
		t.Fatalf("unexpected price: %s", dto.Price)
	}
	if !dto.InStock {
		t.Fatal("expected in stock")
	}
}

func TestServiceGetBySlugNotFound(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, &stubRepo{})

	_, err := svc.GetBySlug(context.Background(), "missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceGetBySlugUsesCache(t *testing.T) {
	t.Parallel()

	row := &models.Product{
		ID:         uuid.New(),
		Name:       "Polo Shirt",
		Slug:       "polo-shirt",
		Image:      "/images/polo-shirt.jpg",
		PriceCents: 2599,
		Stock:      4,
		IsActive:   true,
	}
	repo := &countingRepo{stubRepo: stubRepo{rows: []*models.Product{row}}}
	cache := &stubCache{data: map[string]string{}}
	svc, err := NewService(repo, cache)
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	for i := 0; i < 2; i++ {
		dto, err := svc.GetBySlug(context.Background(), "polo-shirt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dto.Price != "25.99" {
			t.Fatalf("unexpected price: %s", dto.Price)
		}
	}
	if repo.slugLookups != 1 {
		t.Fatalf("expected one repo lookup, got %d", repo.slugLookups)
	}
	if len(cache.data) != 1 {
		t.Fatalf("expected one cached entry, got %d", len(cache.data))
	}
}

func TestServiceGetBySlugSurvivesCacheFailure(t *testing.T) {
	t.Parallel()

	row := &models.Product{ID: uuid.New(), Name: "Tee", Slug: "tee", PriceCents: 1999, Stock: 1, IsActive: true}
	svc, err := NewService(&stubRepo{rows: []*models.Product{row}}, &stubCache{fail: true})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	dto, err := svc.GetBySlug(context.Background(), "tee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Price != "19.99" {
		t.Fatalf("unexpected price: %s", dto.Price)
	}
}

func TestServiceListProductsRejectsBadCursor(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, &stubRepo{})

	_, err := svc.ListProducts(context.Background(), ListParams{Cursor: "not-base64!"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceListProductsEncodesNextCursor(t *testing.T) {
	t.Parallel()

	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	row := &models.Product{ID: uuid.New(), Name: "Tee", Slug: "tee", PriceCents: 1999}
	svc := newCatalogService(t, &stubRepo{rows: []*models.Product{row}, next: next})

	result, err := svc.ListProducts(context.Background(), ListParams{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("unexpected products: %+v", result.Products)
	}
	if result.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	parsed, err := pagination.ParseCursor(result.NextCursor)
	if err != nil || parsed.ID != next.ID {
		t.Fatalf("cursor roundtrip failed: %v", err)
	}
}

func newCatalogService(t *testing.T, repo repository) Service {
	t.Helper()

	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

type stubRepo struct {
	rows []*models.Product
	next *pagination.Cursor
}

type countingRepo struct {
	stubRepo
	slugLookups int
}

func (c *countingRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	c.slugLookups++
	return c.stubRepo.FindBySlug(ctx, slug)
}

type stubCache struct {
	data map[string]string
	fail bool
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	if s.fail {
		return "", errors.New("redis unavailable")
	}
	v, ok := s.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.fail {
		return errors.New("redis unavailable")
	}
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, row := range s.rows {
		if row.Slug == slug {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, params listQuery) ([]models.Product, *pagination.Cursor, error) {
	out := make([]models.Product, len(s.rows))
	for i, row := range s.rows {
		out[i] = *row
	}
	return out, s.next, nil
}
