package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrNotAuthenticated is returned when a wishlist operation runs without a
// persisted access token. Callers surface it as a login prompt.
var ErrNotAuthenticated = fmt.Errorf("sign in to use the wishlist")

// WishlistItem is one entry of the server wishlist.
type WishlistItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// Wishlist mirrors the authenticated user's server-side wishlist. Local
// state is replaced wholesale by a refetch after every mutation, never
// patched.
type Wishlist struct {
	client *Client

	mu    sync.Mutex
	items []WishlistItem
}

func NewWishlist(c *Client) *Wishlist {
	return &Wishlist{client: c}
}

// Items returns the local snapshot.
func (w *Wishlist) Items() []WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WishlistItem(nil), w.items...)
}

// Contains reports local membership of a product id.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.containsLocked(productID)
}

func (w *Wishlist) containsLocked(productID string) bool {
	for _, item := range w.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Refresh replaces the local wishlist with the server's.
func (w *Wishlist) Refresh(ctx context.Context) error {
	if !w.client.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshLocked(ctx)
}

func (w *Wishlist) refreshLocked(ctx context.Context) error {
	var items []WishlistItem
	if err := w.client.do(ctx, http.MethodGet, "/api/wishlist", nil, nil, &items); err != nil {
		return err
	}
	w.items = items
	return nil
}

// Toggle flips the product's membership and refetches the list. Returns the
// membership after the flip.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	if !w.client.IsAuthenticated() {
		return false, ErrNotAuthenticated
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var result struct {
		ProductID  string `json:"product_id"`
		Wishlisted bool   `json:"wishlisted"`
	}
	err := w.client.do(ctx, http.MethodPost, "/api/wishlist", nil,
		map[string]string{"product_id": productID}, &result)
	if err != nil {
		return false, err
	}
	if err := w.refreshLocked(ctx); err != nil {
		return result.Wishlisted, err
	}
	return result.Wishlisted, nil
}

// Remove deletes the product from the wishlist and refetches.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	if !w.client.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.client.do(ctx, http.MethodDelete, "/api/wishlist/"+productID, nil, nil, nil); err != nil {
		return err
	}
	return w.refreshLocked(ctx)
}
