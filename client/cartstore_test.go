package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory cart server with the same routes and envelope
// as the real API. Handlers can be overridden per-test to inject failures.
type fakeBackend struct {
	mu          sync.Mutex
	nextID      int
	carts       map[string]*Cart
	createN     int
	putN        int
	addFails    bool
	noPutItem   bool
	noPutRoute  bool
	putMissOnce bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{carts: map[string]*Cart{}}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.createN++
		b.nextID++
		cart := &Cart{ID: fmt.Sprintf("cart-%d", b.nextID), Items: []CartItem{}}
		b.carts[cart.ID] = cart
		writeData(w, http.StatusCreated, cart)
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		rest := strings.TrimPrefix(r.URL.Path, "/api/cart/")
		parts := strings.Split(rest, "/")
		cart, ok := b.carts[parts[0]]
		if !ok {
			writeErr(w, http.StatusNotFound, "NOT_FOUND", "cart not found")
			return
		}

		switch {
		case len(parts) == 1 && r.Method == http.MethodGet:
			writeData(w, http.StatusOK, cart)
		case len(parts) == 2 && parts[1] == "items" && r.Method == http.MethodPost:
			if b.addFails {
				writeErr(w, http.StatusInternalServerError, "INTERNAL", "boom")
				return
			}
			productID := r.URL.Query().Get("product_id")
			qty, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
			b.addLocked(cart, productID, qty)
			writeData(w, http.StatusOK, cart)
		case len(parts) == 3 && parts[1] == "items" && r.Method == http.MethodPut:
			b.putN++
			if b.noPutItem {
				writeErr(w, http.StatusMethodNotAllowed, "VALIDATION_ERROR", "unsupported")
				return
			}
			if b.noPutRoute {
				http.NotFound(w, r)
				return
			}
			if b.putMissOnce {
				b.putMissOnce = false
				writeErr(w, http.StatusNotFound, "NOT_FOUND", "product not in cart")
				return
			}
			var payload struct {
				Quantity int `json:"quantity"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			b.setLocked(cart, parts[2], payload.Quantity)
			writeData(w, http.StatusOK, cart)
		case len(parts) == 3 && parts[1] == "items" && r.Method == http.MethodDelete:
			b.setLocked(cart, parts[2], 0)
			writeData(w, http.StatusOK, cart)
		default:
			writeErr(w, http.StatusNotFound, "NOT_FOUND", "no route")
		}
	})
	return mux
}

func (b *fakeBackend) addLocked(cart *Cart, productID string, qty int) {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			b.recomputeLocked(cart)
			return
		}
	}
	cart.Items = append(cart.Items, CartItem{
		ProductID: productID,
		Name:      "Product " + productID,
		Price:     decimal.NewFromInt(10),
		Quantity:  qty,
	})
	b.recomputeLocked(cart)
}

func (b *fakeBackend) setLocked(cart *Cart, productID string, qty int) {
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID == productID {
			if qty > 0 {
				item.Quantity = qty
				kept = append(kept, item)
			}
			continue
		}
		kept = append(kept, item)
	}
	cart.Items = kept
	b.recomputeLocked(cart)
}

func (b *fakeBackend) recomputeLocked(cart *Cart) {
	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart.Total = total
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}

func newTestClient(t *testing.T, server *httptest.Server, store Storage, interceptors ...ResponseInterceptor) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:      server.URL,
		HTTPClient:   server.Client(),
		Storage:      store,
		Interceptors: interceptors,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestEnsureCartPersistsExactlyOneID(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := NewMemoryStorage()
	cartStore := NewCartStore(newTestClient(t, server, store))

	if err := cartStore.EnsureCart(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.EnsureCart(context.Background()); err != nil {
		t.Fatalf("ensure again: %v", err)
	}

	if backend.createN != 1 {
		t.Fatalf("create requests = %d, want 1", backend.createN)
	}
	id, ok := store.Get(KeyCartID)
	if !ok || id != cartStore.Cart().ID {
		t.Fatalf("persisted id = %q, cart id = %q", id, cartStore.Cart().ID)
	}
}

func TestEnsureCartRecoversFromStaleID(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := NewMemoryStorage()
	store.Set(KeyCartID, "cart-gone")

	cartStore := NewCartStore(newTestClient(t, server, store))
	if err := cartStore.EnsureCart(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	id, _ := store.Get(KeyCartID)
	if id == "cart-gone" || id == "" {
		t.Fatalf("stale id was not replaced, got %q", id)
	}
	if cartStore.Cart() == nil {
		t.Fatal("cart should be ready after recovery")
	}
}

func TestEnsureCartFallbackFailureLeavesCartNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusInternalServerError, "INTERNAL", "down")
	}))
	defer server.Close()

	store := NewMemoryStorage()
	cartStore := NewCartStore(newTestClient(t, server, store))

	if err := cartStore.EnsureCart(context.Background()); err == nil {
		t.Fatal("expected error when server is down")
	}
	if cartStore.Cart() != nil {
		t.Fatal("cart must stay null when the fallback create fails")
	}
	if cartStore.ItemCount() != 0 {
		t.Fatal("item count must be zero while cart is not ready")
	}
}

func TestMutationsBeforeReadyAreSilentGuards(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))

	if err := cartStore.AddItem(context.Background(), "p1", 2); err != nil {
		t.Fatalf("add before ready must be a no-op, got %v", err)
	}
	if err := cartStore.RemoveItem(context.Background(), "p1"); err != nil {
		t.Fatalf("remove before ready must be a no-op, got %v", err)
	}
	if backend.createN != 0 {
		t.Fatalf("no requests expected, create count = %d", backend.createN)
	}
}

func TestMutationReplacesStateWithServerResponse(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := cartStore.Cart()
	want := backend.carts[got.ID]
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", got.Items)
	}
	if !got.Total.Equal(want.Total) {
		t.Fatalf("total = %s, server total = %s", got.Total, want.Total)
	}
	if cartStore.ItemCount() != 2 {
		t.Fatalf("item count = %d, want 2", cartStore.ItemCount())
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cartStore.SetQuantity(ctx, "p1", 0); err != nil {
		t.Fatalf("set zero: %v", err)
	}

	if n := len(cartStore.Cart().Items); n != 0 {
		t.Fatalf("items = %d, want 0", n)
	}
	if !cartStore.Cart().Total.IsZero() {
		t.Fatalf("total = %s, want 0", cartStore.Cart().Total)
	}
}

func TestSetQuantityUsesAtomicEndpoint(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cartStore.SetQuantity(ctx, "p1", 5); err != nil {
		t.Fatalf("set: %v", err)
	}

	if qty := cartStore.Cart().Items[0].Quantity; qty != 5 {
		t.Fatalf("quantity = %d, want 5", qty)
	}
	if !cartStore.atomicSetQuantity {
		t.Fatal("atomic endpoint should still be preferred")
	}
}

func TestSetQuantityFallsBackOnLegacyServer(t *testing.T) {
	backend := newFakeBackend()
	backend.noPutItem = true
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cartStore.SetQuantity(ctx, "p1", 4); err != nil {
		t.Fatalf("set: %v", err)
	}

	if qty := cartStore.Cart().Items[0].Quantity; qty != 4 {
		t.Fatalf("quantity = %d, want 4", qty)
	}
	if cartStore.atomicSetQuantity {
		t.Fatal("store should have switched to the legacy path")
	}
}

// A coded NOT_FOUND from the atomic endpoint is a resource miss, not a
// missing route: the error surfaces and later calls keep using PUT.
func TestSetQuantityResourceNotFoundDoesNotDisableAtomicPath(t *testing.T) {
	backend := newFakeBackend()
	backend.putMissOnce = true
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := cartStore.SetQuantity(ctx, "p1", 3)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want coded 404", err)
	}
	if !cartStore.atomicSetQuantity {
		t.Fatal("resource miss must not disable the atomic path")
	}

	if err := cartStore.SetQuantity(ctx, "p1", 3); err != nil {
		t.Fatalf("set after miss: %v", err)
	}
	if backend.putN != 2 {
		t.Fatalf("put requests = %d, want 2", backend.putN)
	}
	if qty := cartStore.Cart().Items[0].Quantity; qty != 3 {
		t.Fatalf("quantity = %d, want 3", qty)
	}
}

// A server without the route answers a bare 404 with no error envelope; that
// is what switches the store to the legacy path.
func TestSetQuantityBare404SwitchesToLegacyPath(t *testing.T) {
	backend := newFakeBackend()
	backend.noPutRoute = true
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cartStore.SetQuantity(ctx, "p1", 4); err != nil {
		t.Fatalf("set: %v", err)
	}

	if cartStore.atomicSetQuantity {
		t.Fatal("bare 404 should have switched to the legacy path")
	}
	if qty := cartStore.Cart().Items[0].Quantity; qty != 4 {
		t.Fatalf("quantity = %d, want 4", qty)
	}
}

// The legacy two-call path is not atomic: an add failure right after the
// remove leaves the line absent. The test documents the hazard.
func TestLegacySetQuantityHazardLeavesItemAbsent(t *testing.T) {
	backend := newFakeBackend()
	backend.noPutItem = true
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	cartStore := NewCartStore(newTestClient(t, server, NewMemoryStorage()))
	ctx := context.Background()
	if err := cartStore.EnsureCart(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := cartStore.AddItem(ctx, "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	backend.addFails = true
	if err := cartStore.SetQuantity(ctx, "p1", 6); err == nil {
		t.Fatal("expected the re-add to fail")
	}

	for _, item := range cartStore.Cart().Items {
		if item.ProductID == "p1" {
			t.Fatal("item should be absent after the failed re-add")
		}
	}
}
