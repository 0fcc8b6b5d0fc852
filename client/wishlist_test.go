package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeWishlist toggles membership server-side like the real API.
type fakeWishlist struct {
	mu      sync.Mutex
	members map[string]bool
}

func (f *fakeWishlist) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet:
			items := []WishlistItem{}
			for id := range f.members {
				items = append(items, WishlistItem{ProductID: id, Name: "Product " + id})
			}
			writeData(w, http.StatusOK, items)
		case r.Method == http.MethodPost:
			var payload struct {
				ProductID string `json:"product_id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			now := !f.members[payload.ProductID]
			if now {
				f.members[payload.ProductID] = true
			} else {
				delete(f.members, payload.ProductID)
			}
			writeData(w, http.StatusOK, map[string]any{
				"product_id": payload.ProductID,
				"wishlisted": now,
			})
		case r.Method == http.MethodDelete:
			id := strings.TrimPrefix(r.URL.Path, "/api/wishlist/")
			delete(f.members, id)
			writeData(w, http.StatusOK, map[string]string{"status": "removed"})
		default:
			writeErr(w, http.StatusNotFound, "NOT_FOUND", "no route")
		}
	})
}

func TestWishlistToggleTwiceRestoresMembership(t *testing.T) {
	backend := &fakeWishlist{members: map[string]bool{}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := NewMemoryStorage()
	store.Set(KeyAccessToken, "token")
	wishlist := NewWishlist(newTestClient(t, server, store))
	ctx := context.Background()

	on, err := wishlist.Toggle(ctx, "p1")
	if err != nil || !on {
		t.Fatalf("first toggle = %v, %v", on, err)
	}
	if !wishlist.Contains("p1") {
		t.Fatal("local state should contain p1 after first toggle")
	}

	off, err := wishlist.Toggle(ctx, "p1")
	if err != nil || off {
		t.Fatalf("second toggle = %v, %v", off, err)
	}
	if wishlist.Contains("p1") {
		t.Fatal("membership should be restored after two toggles")
	}
	if len(backend.members) != 0 {
		t.Fatalf("server members = %v, want empty", backend.members)
	}
}

func TestWishlistNetTogglesMatchServer(t *testing.T) {
	backend := &fakeWishlist{members: map[string]bool{}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := NewMemoryStorage()
	store.Set(KeyAccessToken, "token")
	wishlist := NewWishlist(newTestClient(t, server, store))
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p1", "p3"} {
		if _, err := wishlist.Toggle(ctx, id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}

	// Net result: p2 and p3 in, p1 toggled out.
	items := wishlist.Items()
	if len(items) != 2 {
		t.Fatalf("local items = %d, want 2", len(items))
	}
	if len(backend.members) != 2 || !backend.members["p2"] || !backend.members["p3"] {
		t.Fatalf("server members = %v", backend.members)
	}
}

func TestWishlistRequiresAuthentication(t *testing.T) {
	backend := &fakeWishlist{members: map[string]bool{}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	wishlist := NewWishlist(newTestClient(t, server, NewMemoryStorage()))

	if _, err := wishlist.Toggle(context.Background(), "p1"); err != ErrNotAuthenticated {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if err := wishlist.Refresh(context.Background()); err != ErrNotAuthenticated {
		t.Fatalf("refresh err = %v, want ErrNotAuthenticated", err)
	}
}

func TestWishlistRemoveRefetches(t *testing.T) {
	backend := &fakeWishlist{members: map[string]bool{"p1": true, "p2": true}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := NewMemoryStorage()
	store.Set(KeyAccessToken, "token")
	wishlist := NewWishlist(newTestClient(t, server, store))
	ctx := context.Background()

	if err := wishlist.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := wishlist.Remove(ctx, "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if wishlist.Contains("p1") {
		t.Fatal("p1 should be gone locally")
	}
	if !wishlist.Contains("p2") {
		t.Fatal("p2 should remain")
	}
}
