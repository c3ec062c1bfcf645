package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amontes/storefront-backend/api/middleware"
	cartsvc "github.com/amontes/storefront-backend/internal/cart"
	"github.com/amontes/storefront-backend/pkg/types"
)

type stubCartService struct {
	view         *cartsvc.CartView
	err          error
	result       types.ActionResult
	lastOwner    cartsvc.Owner
	lastInput    cartsvc.AddItemInput
	lastQty      int
	lastProduct  uuid.UUID
	lastMutation string
}

func (s *stubCartService) AddItem(ctx context.Context, owner cartsvc.Owner, input cartsvc.AddItemInput) types.ActionResult {
	s.lastMutation = "add"
	s.lastOwner = owner
	s.lastInput = input
	return s.result
}

func (s *stubCartService) DecrementItem(ctx context.Context, owner cartsvc.Owner, productID uuid.UUID) types.ActionResult {
	s.lastMutation = "decrement"
	s.lastOwner = owner
	s.lastProduct = productID
	return s.result
}

func (s *stubCartService) SetItemQuantity(ctx context.Context, owner cartsvc.Owner, productID uuid.UUID, quantity int) types.ActionResult {
	s.lastMutation = "set"
	s.lastOwner = owner
	s.lastProduct = productID
	s.lastQty = quantity
	return s.result
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cartsvc.Owner, productID uuid.UUID) types.ActionResult {
	s.lastMutation = "remove"
	s.lastOwner = owner
	s.lastProduct = productID
	return s.result
}

func (s *stubCartService) GetCart(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartView, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func withSession(req *http.Request, sessionCartID string) *http.Request {
	return req.WithContext(middleware.WithSessionCartID(req.Context(), sessionCartID))
}

func TestCartFetchSuccess(t *testing.T) {
	view := &cartsvc.CartView{
		ID:            uuid.NewString(),
		SessionCartID: "sess-1",
		Items:         []cartsvc.LineView{},
		ItemsPrice:    "0.00",
		ShippingPrice: "10.00",
		TaxPrice:      "0.00",
		TotalPrice:    "10.00",
	}
	handler := CartFetch(&stubCartService{view: view}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != view.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartFetchAbsentCartIsNull(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data *cartsvc.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data != nil {
		t.Fatalf("expected null data, got %+v", envelope.Data)
	}
}

func TestCartFetchMissingSession(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	svc := &stubCartService{result: types.ActionResult{Success: true, Message: "1 item of Polo Shirt added to cart"}}
	handler := CartAddItem(svc, nil)

	productID := uuid.New()
	body := fmt.Sprintf(`{"productId":%q,"name":"Polo Shirt","slug":"polo-shirt","image":"/images/polo.jpg","price":"25.00","qty":1}`, productID)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastMutation != "add" || svc.lastInput.ProductID != productID {
		t.Fatalf("unexpected call: %s %+v", svc.lastMutation, svc.lastInput)
	}
	if svc.lastOwner.SessionCartID != "sess-1" {
		t.Fatalf("unexpected owner: %+v", svc.lastOwner)
	}

	var envelope struct {
		Data types.ActionResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Success {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestCartAddItemFailureStaysHTTP200(t *testing.T) {
	svc := &stubCartService{result: types.ActionResult{Success: false, Message: "Only 3 items available in stock"}}
	handler := CartAddItem(svc, nil)

	body := fmt.Sprintf(`{"productId":%q,"name":"Polo Shirt","slug":"polo-shirt","image":"/images/polo.jpg","price":"25.00","qty":5}`, uuid.New())
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data types.ActionResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Success || envelope.Data.Message != "Only 3 items available in stock" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestCartAddItemRejectsBadBody(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"qty":0}`)), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSetQuantity(t *testing.T) {
	svc := &stubCartService{result: types.ActionResult{Success: true, Message: "Polo Shirt quantity updated to 3"}}
	handler := CartSetQuantity(svc, nil)

	productID := uuid.New()
	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+productID.String(), strings.NewReader(`{"qty":3}`)), "sess-1")
	req = withURLParam(req, "productId", productID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastMutation != "set" || svc.lastProduct != productID || svc.lastQty != 3 {
		t.Fatalf("unexpected call: %s %s %d", svc.lastMutation, svc.lastProduct, svc.lastQty)
	}
}

func TestCartDecrementItem(t *testing.T) {
	svc := &stubCartService{result: types.ActionResult{Success: true, Message: "Polo Shirt quantity decreased"}}
	handler := CartDecrementItem(svc, nil)

	productID := uuid.New()
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/"+productID.String()+"/decrement", nil), "sess-1")
	req = withURLParam(req, "productId", productID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastMutation != "decrement" || svc.lastProduct != productID {
		t.Fatalf("unexpected call: %s %s", svc.lastMutation, svc.lastProduct)
	}
}

func TestCartRemoveItemRejectsBadProductID(t *testing.T) {
	handler := CartRemoveItem(&stubCartService{}, nil)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", nil), "sess-1")
	req = withURLParam(req, "productId", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
