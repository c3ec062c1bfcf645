package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	product "github.com/amontes/storefront-backend/internal/products"
	"github.com/amontes/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
)

type stubProductService struct {
	dto    *product.ProductDTO
	list   *product.ListResult
	err    error
	lastQ  product.ListParams
	lastID string
}

func (s *stubProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, s.err
}

func (s *stubProductService) GetBySlug(ctx context.Context, slug string) (*product.ProductDTO, error) {
	s.lastID = slug
	if s.err != nil {
		return nil, s.err
	}
	return s.dto, nil
}

func (s *stubProductService) ListProducts(ctx context.Context, params product.ListParams) (*product.ListResult, error) {
	s.lastQ = params
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func TestProductsListSuccess(t *testing.T) {
	svc := &stubProductService{list: &product.ListResult{Products: []product.ProductDTO{{Name: "Polo Shirt", Price: "25.00"}}}}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=polo&limit=5", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastQ.Query != "polo" || svc.lastQ.Limit != 5 {
		t.Fatalf("unexpected params: %+v", svc.lastQ)
	}

	var envelope struct {
		Data product.ListResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Products) != 1 || envelope.Data.Products[0].Price != "25.00" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestProductsListRejectsBadLimit(t *testing.T) {
	handler := ProductsList(&stubProductService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=9999", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductBySlugNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")}
	handler := ProductBySlug(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
