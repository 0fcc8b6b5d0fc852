package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the server cart.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the server's authoritative cart representation. The SDK never
// derives totals locally.
type Cart struct {
	ID    string          `json:"id"`
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartStore maintains exactly one active cart per Storage. Every mutation is
// a round trip whose response wholesale replaces local state; mutations are
// serialized, so at most one request is in flight at a time and a rapid
// double-click cannot race two adds.
type CartStore struct {
	client *Client

	mu   sync.Mutex
	cart *Cart

	// atomicSetQuantity is flipped off when the server rejects the PUT
	// quantity endpoint, switching to the legacy remove-then-add path.
	atomicSetQuantity bool
}

// NewCartStore builds a store over the given client. The cart starts null
// until EnsureCart succeeds.
func NewCartStore(c *Client) *CartStore {
	return &CartStore{client: c, atomicSetQuantity: true}
}

// Cart returns the current cart snapshot, or nil while the store is not yet
// ready. Callers must treat nil as "loading", not as an error.
func (s *CartStore) Cart() *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return nil
	}
	snapshot := *s.cart
	snapshot.Items = append([]CartItem(nil), s.cart.Items...)
	return &snapshot
}

// ItemCount is the sum of line quantities, for badge display. Zero while the
// cart is not ready.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	count := 0
	for _, item := range s.cart.Items {
		count += item.Quantity
	}
	return count
}

// EnsureCart loads the persisted cart or creates one. A stale persisted id
// is a recoverable condition: the fetch failure falls back to creating a
// fresh cart and persisting its new id. Only a failure of that fallback
// leaves the cart null, and even that is logged rather than returned —
// callers observe readiness through Cart().
func (s *CartStore) EnsureCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart != nil {
		return nil
	}

	if id, ok := s.client.storage.Get(KeyCartID); ok && id != "" {
		var cart Cart
		if err := s.client.do(ctx, http.MethodGet, "/api/cart/"+id, nil, nil, &cart); err == nil {
			s.cart = &cart
			return nil
		}
		// Stored id no longer resolves; fall through to recovery create.
	}

	var cart Cart
	if err := s.client.do(ctx, http.MethodPost, "/api/cart", nil, nil, &cart); err != nil {
		s.client.logError(ctx, "cart create failed, cart stays unready", err)
		s.cart = nil
		return err
	}
	s.cart = &cart
	s.client.storage.Set(KeyCartID, cart.ID)
	return nil
}

// AddItem adds quantity of a product to the cart. Without a ready cart this
// is a silent guard: no request, no error.
func (s *CartStore) AddItem(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil
	}
	if quantity <= 0 {
		quantity = 1
	}

	query := url.Values{}
	query.Set("product_id", productID)
	query.Set("quantity", strconv.Itoa(quantity))

	var cart Cart
	err := s.client.do(ctx, http.MethodPost, "/api/cart/"+s.cart.ID+"/items", query, nil, &cart)
	if err != nil {
		s.client.logError(ctx, "cart add failed", err)
		return err
	}
	s.cart = &cart
	return nil
}

// RemoveItem deletes a line. Silent guard without a ready cart.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, productID)
}

func (s *CartStore) removeLocked(ctx context.Context, productID string) error {
	if s.cart == nil {
		return nil
	}
	var cart Cart
	err := s.client.do(ctx, http.MethodDelete, "/api/cart/"+s.cart.ID+"/items/"+productID, nil, nil, &cart)
	if err != nil {
		s.client.logError(ctx, "cart remove failed", err)
		return err
	}
	s.cart = &cart
	return nil
}

// routeAbsent reports whether an error means the server has no PUT quantity
// route at all, as opposed to a cart or product that does not exist. A server
// that knows the route answers resource misses with a coded NOT_FOUND
// envelope; a server without the route answers 405, or a bare 404 whose body
// carries no error code.
func routeAbsent(apiErr *APIError) bool {
	if apiErr.StatusCode == http.StatusMethodNotAllowed {
		return true
	}
	return apiErr.StatusCode == http.StatusNotFound && apiErr.Code == ""
}

// SetQuantity replaces a line's quantity. Zero is equivalent to RemoveItem.
// The atomic PUT endpoint is preferred; against older servers without it the
// store falls back to remove-then-add, which is not atomic: a failure
// between the two calls leaves the line absent.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil
	}
	if quantity == 0 {
		return s.removeLocked(ctx, productID)
	}

	if s.atomicSetQuantity {
		var cart Cart
		err := s.client.do(ctx, http.MethodPut, "/api/cart/"+s.cart.ID+"/items/"+productID, nil,
			map[string]int{"quantity": quantity}, &cart)
		if err == nil {
			s.cart = &cart
			return nil
		}
		apiErr, ok := err.(*APIError)
		if !ok || !routeAbsent(apiErr) {
			s.client.logError(ctx, "cart set quantity failed", err)
			return err
		}
		s.atomicSetQuantity = false
	}

	if err := s.removeLocked(ctx, productID); err != nil {
		return err
	}

	query := url.Values{}
	query.Set("product_id", productID)
	query.Set("quantity", strconv.Itoa(quantity))
	var cart Cart
	err := s.client.do(ctx, http.MethodPost, "/api/cart/"+s.cart.ID+"/items", query, nil, &cart)
	if err != nil {
		s.client.logError(ctx, "cart re-add after remove failed", err)
		return err
	}
	s.cart = &cart
	return nil
}
