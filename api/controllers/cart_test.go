package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartsvc "github.com/lumera-labs/marketplace-backend/internal/carts"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
	"github.com/lumera-labs/marketplace-backend/pkg/types"
)

type stubCartService struct {
	cart cartsvc.CartDTO
	err  error

	setCartID    uuid.UUID
	setProductID uuid.UUID
	setQuantity  int
}

func (s *stubCartService) CreateCart(context.Context, *uuid.UUID) (cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) GetCart(_ context.Context, cartID uuid.UUID) (cartsvc.CartDTO, error) {
	if s.err != nil {
		return cartsvc.CartDTO{}, s.err
	}
	if cartID != s.cart.ID {
		return cartsvc.CartDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return s.cart, nil
}

func (s *stubCartService) AddItem(_ context.Context, cartID uuid.UUID, _ *uuid.UUID, input cartsvc.AddItemInput) (cartsvc.CartDTO, error) {
	s.setCartID = cartID
	s.setProductID = input.ProductID
	s.setQuantity = input.Quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, cartID, productID uuid.UUID) (cartsvc.CartDTO, error) {
	s.setCartID = cartID
	s.setProductID = productID
	return s.cart, s.err
}

func (s *stubCartService) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) (cartsvc.CartDTO, error) {
	s.setCartID = cartID
	s.setProductID = productID
	s.setQuantity = quantity
	return s.cart, s.err
}

func (s *stubCartService) ClearCart(context.Context, uuid.UUID) (cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func withURLParams(req *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	if err := json.Unmarshal(raw, data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestCreateCartReturns201(t *testing.T) {
	svc := &stubCartService{cart: cartsvc.CartDTO{ID: uuid.New()}}
	rec := httptest.NewRecorder()

	CreateCart(svc, nil)(rec, httptest.NewRequest("POST", "/api/cart", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got cartsvc.CartDTO
	decodeEnvelope(t, rec, &got)
	if got.ID != svc.cart.ID {
		t.Fatalf("cart id = %s, want %s", got.ID, svc.cart.ID)
	}
}

func TestGetCartUnknownIDReturns404(t *testing.T) {
	svc := &stubCartService{cart: cartsvc.CartDTO{ID: uuid.New()}}
	req := withURLParams(httptest.NewRequest("GET", "/api/cart/x", nil), "cartId", uuid.New().String())
	rec := httptest.NewRecorder()

	GetCart(svc, nil)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Error.Code != "NOT_FOUND" {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestAddCartItemDefaultsQuantity(t *testing.T) {
	cartID := uuid.New()
	productID := uuid.New()
	svc := &stubCartService{cart: cartsvc.CartDTO{ID: cartID}}

	req := withURLParams(
		httptest.NewRequest("POST", "/api/cart/x/items?product_id="+productID.String(), nil),
		"cartId", cartID.String(),
	)
	rec := httptest.NewRecorder()
	AddCartItem(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.setCartID != cartID || svc.setProductID != productID {
		t.Fatalf("service called with cart %s product %s", svc.setCartID, svc.setProductID)
	}
	if svc.setQuantity != 1 {
		t.Fatalf("quantity = %d, want default 1", svc.setQuantity)
	}
}

func TestAddCartItemRequiresProductID(t *testing.T) {
	svc := &stubCartService{}
	req := withURLParams(httptest.NewRequest("POST", "/api/cart/x/items", nil), "cartId", uuid.New().String())
	rec := httptest.NewRecorder()

	AddCartItem(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSetCartItemQuantityAcceptsZero(t *testing.T) {
	cartID := uuid.New()
	productID := uuid.New()
	svc := &stubCartService{cart: cartsvc.CartDTO{ID: cartID}, setQuantity: -1}

	req := withURLParams(
		httptest.NewRequest("PUT", "/api/cart/x/items/y", strings.NewReader(`{"quantity":0}`)),
		"cartId", cartID.String(),
		"productId", productID.String(),
	)
	rec := httptest.NewRecorder()
	SetCartItemQuantity(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.setQuantity != 0 {
		t.Fatalf("quantity = %d, want 0", svc.setQuantity)
	}
	if svc.setProductID != productID {
		t.Fatalf("product = %s, want %s", svc.setProductID, productID)
	}
}

func TestSetCartItemQuantityRejectsNegative(t *testing.T) {
	svc := &stubCartService{}
	req := withURLParams(
		httptest.NewRequest("PUT", "/api/cart/x/items/y", strings.NewReader(`{"quantity":-2}`)),
		"cartId", uuid.New().String(),
		"productId", uuid.New().String(),
	)
	rec := httptest.NewRecorder()

	SetCartItemQuantity(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
