package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	authsvc "github.com/lumera-labs/marketplace-backend/internal/auth"
	cartsvc "github.com/lumera-labs/marketplace-backend/internal/carts"
	checkoutsvc "github.com/lumera-labs/marketplace-backend/internal/checkout"
	couponsvc "github.com/lumera-labs/marketplace-backend/internal/coupons"
	ordersvc "github.com/lumera-labs/marketplace-backend/internal/orders"
	productsvc "github.com/lumera-labs/marketplace-backend/internal/products"
	reviewsvc "github.com/lumera-labs/marketplace-backend/internal/reviews"
	sellersvc "github.com/lumera-labs/marketplace-backend/internal/sellers"
	statsvc "github.com/lumera-labs/marketplace-backend/internal/stats"
	usersvc "github.com/lumera-labs/marketplace-backend/internal/users"
	wishlistsvc "github.com/lumera-labs/marketplace-backend/internal/wishlist"
	pkgauth "github.com/lumera-labs/marketplace-backend/pkg/auth"
	"github.com/lumera-labs/marketplace-backend/pkg/config"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	"github.com/lumera-labs/marketplace-backend/pkg/metrics"
)

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubCarts struct{}

func (stubCarts) CreateCart(context.Context, *uuid.UUID) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{ID: uuid.New()}, nil
}
func (stubCarts) GetCart(context.Context, uuid.UUID) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCarts) AddItem(context.Context, uuid.UUID, *uuid.UUID, cartsvc.AddItemInput) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCarts) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCarts) SetItemQuantity(context.Context, uuid.UUID, uuid.UUID, int) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCarts) ClearCart(context.Context, uuid.UUID) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}

type stubWishlist struct{}

func (stubWishlist) Toggle(context.Context, uuid.UUID, uuid.UUID) (wishlistsvc.ToggleResultDTO, error) {
	return wishlistsvc.ToggleResultDTO{}, nil
}
func (stubWishlist) Remove(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubWishlist) List(context.Context, uuid.UUID) ([]wishlistsvc.ItemDTO, error) {
	return nil, nil
}
func (stubWishlist) Contains(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

type stubUsers struct{}

func (stubUsers) GetProfile(context.Context, uuid.UUID) (usersvc.UserDTO, error) {
	return usersvc.UserDTO{}, nil
}
func (stubUsers) UpdateProfile(context.Context, uuid.UUID, usersvc.UpdateProfileInput) (usersvc.UserDTO, error) {
	return usersvc.UserDTO{}, nil
}
func (stubUsers) ListUsers(context.Context) ([]usersvc.UserDTO, error) { return nil, nil }
func (stubUsers) SetUserActive(context.Context, uuid.UUID, uuid.UUID, bool) (usersvc.UserDTO, error) {
	return usersvc.UserDTO{}, nil
}

type stubProducts struct{}

func (stubProducts) GetProduct(context.Context, uuid.UUID) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubProducts) ListProducts(context.Context, *uuid.UUID, productsvc.ListFilters) (productsvc.ProductPageDTO, error) {
	return productsvc.ProductPageDTO{}, nil
}
func (stubProducts) Categories(context.Context) ([]string, error)                { return nil, nil }
func (stubProducts) Brands(context.Context) ([]string, error)                    { return nil, nil }
func (stubProducts) RecentSearches(context.Context, uuid.UUID) ([]string, error) { return nil, nil }
func (stubProducts) PlatformSearches(context.Context) ([]string, error)          { return nil, nil }
func (stubProducts) CreateProduct(context.Context, uuid.UUID, productsvc.CreateProductInput) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubProducts) UpdateProduct(context.Context, uuid.UUID, bool, uuid.UUID, productsvc.UpdateProductInput) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubProducts) DeleteProduct(context.Context, uuid.UUID, bool, uuid.UUID) error { return nil }

type stubAuth struct{}

func (stubAuth) Register(context.Context, authsvc.RegisterInput) (authsvc.AuthResultDTO, error) {
	return authsvc.AuthResultDTO{}, nil
}
func (stubAuth) Login(context.Context, authsvc.LoginInput) (authsvc.AuthResultDTO, error) {
	return authsvc.AuthResultDTO{}, nil
}
func (stubAuth) Refresh(context.Context, authsvc.RefreshInput) (authsvc.AuthResultDTO, error) {
	return authsvc.AuthResultDTO{}, nil
}
func (stubAuth) Logout(context.Context, string) error { return nil }

type stubCheckout struct{}

func (stubCheckout) CreateSession(context.Context, *uuid.UUID, checkoutsvc.CreateSessionInput) (checkoutsvc.SessionDTO, error) {
	return checkoutsvc.SessionDTO{}, nil
}
func (stubCheckout) SessionStatus(context.Context, string) (checkoutsvc.StatusDTO, error) {
	return checkoutsvc.StatusDTO{}, nil
}
func (stubCheckout) HandleSessionCompleted(context.Context, string) error { return nil }

type stubOrders struct{}

func (stubOrders) GetOrder(context.Context, uuid.UUID, bool, uuid.UUID) (ordersvc.OrderDTO, error) {
	return ordersvc.OrderDTO{}, nil
}
func (stubOrders) ListOrders(context.Context, uuid.UUID) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}
func (stubOrders) ListOrdersBySession(context.Context, string) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}
func (stubOrders) ListAllOrders(context.Context) ([]ordersvc.OrderDTO, error) { return nil, nil }
func (stubOrders) ListSellerOrders(context.Context, uuid.UUID) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}
func (stubOrders) UpdateOrder(context.Context, uuid.UUID, ordersvc.UpdateOrderInput) (ordersvc.OrderDTO, error) {
	return ordersvc.OrderDTO{}, nil
}

type stubReviews struct{}

func (stubReviews) CreateReview(context.Context, uuid.UUID, uuid.UUID, reviewsvc.CreateReviewInput) (reviewsvc.ReviewDTO, error) {
	return reviewsvc.ReviewDTO{}, nil
}
func (stubReviews) ListProductReviews(context.Context, uuid.UUID) ([]reviewsvc.ReviewDTO, error) {
	return nil, nil
}
func (stubReviews) DeleteReview(context.Context, uuid.UUID, bool, uuid.UUID) error { return nil }

type stubSellers struct{}

func (stubSellers) Apply(context.Context, uuid.UUID, sellersvc.ApplyInput) (sellersvc.ProfileDTO, error) {
	return sellersvc.ProfileDTO{}, nil
}
func (stubSellers) GetProfile(context.Context, uuid.UUID) (sellersvc.ProfileDTO, error) {
	return sellersvc.ProfileDTO{}, nil
}
func (stubSellers) ListApplications(context.Context, *enums.SellerStatus) ([]sellersvc.ProfileDTO, error) {
	return nil, nil
}
func (stubSellers) Review(context.Context, uuid.UUID, sellersvc.ReviewInput) (sellersvc.ProfileDTO, error) {
	return sellersvc.ProfileDTO{}, nil
}
func (stubSellers) Stats(context.Context, uuid.UUID) (sellersvc.StatsDTO, error) {
	return sellersvc.StatsDTO{}, nil
}

type stubCoupons struct{}

func (stubCoupons) CreateCoupon(context.Context, couponsvc.CreateCouponInput) (couponsvc.CouponDTO, error) {
	return couponsvc.CouponDTO{}, nil
}
func (stubCoupons) ListCoupons(context.Context) ([]couponsvc.CouponDTO, error) { return nil, nil }
func (stubCoupons) DeleteCoupon(context.Context, uuid.UUID) error              { return nil }
func (stubCoupons) Validate(context.Context, string, decimal.Decimal) (couponsvc.ValidationResult, error) {
	return couponsvc.ValidationResult{}, nil
}
func (stubCoupons) Redeem(context.Context, string) error { return nil }

type stubStats struct{}

func (stubStats) SalesStats(context.Context) (statsvc.SalesStatsDTO, error) {
	return statsvc.SalesStatsDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "marketplace-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:   testConfig(),
		Sessions: stubSessions{},
		Metrics:  metrics.NewHTTPMetrics(),
		Auth:     stubAuth{},
		Users:    stubUsers{},
		Products: stubProducts{},
		Carts:    stubCarts{},
		Checkout: stubCheckout{},
		Orders:   stubOrders{},
		Wishlist: stubWishlist{},
		Reviews:  stubReviews{},
		Sellers:  stubSellers{},
		Coupons:  stubCoupons{},
		Stats:    stubStats{},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestCartRoutesAreAnonymous(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/cart", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestWishlistRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/wishlist", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWishlistAcceptsBearerToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/wishlist", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestWishlistLegacyRoutesAreRegistered(t *testing.T) {
	router := newTestRouter(t)
	token := mintToken(t, enums.UserRoleCustomer)

	addReq := httptest.NewRequest("POST", "/api/wishlist/add/"+uuid.NewString(), nil)
	addReq.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, addReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}

	removeReq := httptest.NewRequest("DELETE", "/api/wishlist/remove/"+uuid.NewString(), nil)
	removeReq.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, removeReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSellerRoutesRejectCustomers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/seller/stats", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSellerApplyOpenToCustomers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/seller/apply", strings.NewReader(`{"business_name":"Crate Records"}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthAndMetricsExposed(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("live status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}
