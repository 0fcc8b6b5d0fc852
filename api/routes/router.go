package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumera-labs/marketplace-backend/api/controllers"
	"github.com/lumera-labs/marketplace-backend/api/middleware"
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
	"github.com/lumera-labs/marketplace-backend/pkg/auth/session"
	"github.com/lumera-labs/marketplace-backend/pkg/config"
	"github.com/lumera-labs/marketplace-backend/pkg/logger"
	"github.com/lumera-labs/marketplace-backend/pkg/metrics"
)

// StripeWebhookClient exposes the webhook signing secret.
type StripeWebhookClient interface {
	SigningSecret() string
}

// WebhookGuard deduplicates webhook deliveries.
type WebhookGuard interface {
	CheckAndMarkWebhookEvent(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ClearWebhookEvent(ctx context.Context, eventID string) error
}

// RateLimitStore backs the auth rate limit counters.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics

	// Readiness pingers keyed by dependency name.
	Pingers map[string]controllers.Pinger

	RateLimits   RateLimitStore
	StripeClient StripeWebhookClient
	WebhookGuard WebhookGuard

	Auth     authsvc.Service
	Users    usersvc.Service
	Products productsvc.Service
	Carts    cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Wishlist wishlistsvc.Service
	Reviews  reviewsvc.Service
	Sellers  sellersvc.Service
	Coupons  couponsvc.Service
	Stats    statsvc.Service
}

// NewRouter wires the full marketplace HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(d.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Pingers))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/stripe", controllers.StripeWebhook(d.Checkout, d.StripeClient, d.WebhookGuard, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.RateLimits, logg)).
			Post("/register", controllers.Register(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimits, logg)).
			Post("/login", controllers.Login(d.Auth, logg))
		r.Post("/refresh", controllers.RefreshToken(d.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
			Post("/logout", controllers.Logout(d.Auth, logg))
	})

	// Public storefront. Carts are capability-keyed by their uuid, so cart
	// routes stay open; OptionalAuth attributes mutations when a token is
	// present.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg))

		r.Route("/api/cart", func(r chi.Router) {
			r.Post("/", controllers.CreateCart(d.Carts, logg))
			r.Get("/{cartId}", controllers.GetCart(d.Carts, logg))
			r.Post("/{cartId}/items", controllers.AddCartItem(d.Carts, logg))
			r.Put("/{cartId}/items/{productId}", controllers.SetCartItemQuantity(d.Carts, logg))
			r.Delete("/{cartId}/items/{productId}", controllers.RemoveCartItem(d.Carts, logg))
		})

		r.Route("/api/checkout", func(r chi.Router) {
			r.Post("/session", controllers.CreateCheckoutSession(d.Checkout, logg))
			r.Get("/status/{sessionId}", controllers.CheckoutStatus(d.Checkout, logg))
		})

		r.Get("/api/products", controllers.ListProducts(d.Products, logg))
		r.Get("/api/products/{productId}", controllers.GetProduct(d.Products, logg))
		r.Get("/api/products/{productId}/reviews", controllers.ListProductReviews(d.Reviews, logg))
		r.Get("/api/categories", controllers.ListCategories(d.Products, logg))
		r.Get("/api/brands", controllers.ListBrands(d.Products, logg))

		// Guest order confirmation via ?session_id; authenticated history
		// otherwise.
		r.Get("/api/orders", controllers.ListOrders(d.Orders, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Get("/api/users/me", controllers.GetMe(d.Users, logg))
		r.Put("/api/users/me", controllers.UpdateMe(d.Users, logg))
		r.Get("/api/search/recent", controllers.RecentSearches(d.Products, logg))

		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", controllers.GetWishlist(d.Wishlist, logg))
			r.Post("/", controllers.ToggleWishlist(d.Wishlist, logg))
			r.Delete("/{productId}", controllers.RemoveWishlistItem(d.Wishlist, logg))

			// path-parameter aliases kept for older storefront builds
			r.Post("/add/{productId}", controllers.AddWishlistItem(d.Wishlist, logg))
			r.Delete("/remove/{productId}", controllers.RemoveWishlistItem(d.Wishlist, logg))
		})

		r.Post("/api/reviews", controllers.CreateReview(d.Reviews, logg))
		r.Delete("/api/reviews/{reviewId}", controllers.DeleteReview(d.Reviews, logg))

		r.Get("/api/orders/{orderId}", controllers.GetOrder(d.Orders, logg))

		r.Route("/api/seller", func(r chi.Router) {
			// Any signed-in customer may apply; the rest needs the role.
			r.Post("/apply", controllers.ApplySeller(d.Sellers, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, "seller", "admin"))
				r.Get("/profile", controllers.GetSellerProfile(d.Sellers, logg))
				r.Get("/stats", controllers.SellerStats(d.Sellers, logg))
				r.Get("/orders", controllers.SellerOrders(d.Orders, logg))
				r.Post("/products", controllers.SellerCreateProduct(d.Products, logg))
				r.Put("/products/{productId}", controllers.SellerUpdateProduct(d.Products, logg))
				r.Delete("/products/{productId}", controllers.SellerDeleteProduct(d.Products, logg))
			})
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, "admin"))
			r.Get("/users", controllers.AdminListUsers(d.Users, logg))
			r.Put("/users/{userId}/status", controllers.AdminSetUserActive(d.Users, logg))
			r.Get("/sellers", controllers.AdminListSellerApplications(d.Sellers, logg))
			r.Put("/sellers/{profileId}/review", controllers.AdminReviewSellerApplication(d.Sellers, logg))
			r.Get("/orders", controllers.AdminListOrders(d.Orders, logg))
			r.Put("/orders/{orderId}", controllers.AdminUpdateOrder(d.Orders, logg))
			r.Get("/coupons", controllers.AdminListCoupons(d.Coupons, logg))
			r.Post("/coupons", controllers.AdminCreateCoupon(d.Coupons, logg))
			r.Delete("/coupons/{couponId}", controllers.AdminDeleteCoupon(d.Coupons, logg))
			r.Get("/stats", controllers.AdminStats(d.Stats, logg))
			r.Get("/analytics/search", controllers.AdminSearchAnalytics(d.Products, logg))
		})
	})

	return r
}
