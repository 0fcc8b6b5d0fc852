package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumera-labs/marketplace-backend/api/controllers"
	"github.com/lumera-labs/marketplace-backend/api/routes"
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
	"github.com/lumera-labs/marketplace-backend/pkg/db"
	"github.com/lumera-labs/marketplace-backend/pkg/logger"
	"github.com/lumera-labs/marketplace-backend/pkg/metrics"
	"github.com/lumera-labs/marketplace-backend/pkg/migrate"
	"github.com/lumera-labs/marketplace-backend/pkg/redis"
	pkgstripe "github.com/lumera-labs/marketplace-backend/pkg/stripe"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := usersvc.NewRepository(gdb)
	productRepo := productsvc.NewRepository(gdb)
	cartRepo := cartsvc.NewRepository(gdb)
	orderRepo := ordersvc.NewRepository(gdb)
	couponRepo := couponsvc.NewRepository(gdb)
	reviewRepo := reviewsvc.NewRepository(gdb)
	sellerRepo := sellersvc.NewRepository(gdb)
	wishlistRepo := wishlistsvc.NewRepository(gdb)
	checkoutRepo := checkoutsvc.NewRepository(gdb)
	statsRepo := statsvc.NewRepository(gdb)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo: userRepo,
		Sessions: sessionManager,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		fatal(logg, "auth service", err)
	}
	userService, err := usersvc.NewService(usersvc.ServiceParams{Repo: userRepo})
	if err != nil {
		fatal(logg, "user service", err)
	}
	productService, err := productsvc.NewService(productsvc.ServiceParams{
		Repo:              productRepo,
		Searches:          redisClient,
		RecentSearchLimit: cfg.Search.RecentSearchLimit,
	})
	if err != nil {
		fatal(logg, "product service", err)
	}
	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
	})
	if err != nil {
		fatal(logg, "cart service", err)
	}
	couponService, err := couponsvc.NewService(couponsvc.ServiceParams{Repo: couponRepo})
	if err != nil {
		fatal(logg, "coupon service", err)
	}
	orderService, err := ordersvc.NewService(ordersvc.ServiceParams{Repo: orderRepo})
	if err != nil {
		fatal(logg, "order service", err)
	}
	reviewService, err := reviewsvc.NewService(reviewsvc.ServiceParams{
		Repo:        reviewRepo,
		ProductRepo: productRepo,
	})
	if err != nil {
		fatal(logg, "review service", err)
	}
	sellerService, err := sellersvc.NewService(sellersvc.ServiceParams{
		Repo:                     sellerRepo,
		Roles:                    userRepo,
		DefaultCommissionPercent: cfg.Marketplace.CommissionRatePercent,
	})
	if err != nil {
		fatal(logg, "seller service", err)
	}
	wishlistService, err := wishlistsvc.NewService(wishlistsvc.ServiceParams{
		Repo:        wishlistRepo,
		ProductRepo: productRepo,
	})
	if err != nil {
		fatal(logg, "wishlist service", err)
	}
	statsService, err := statsvc.NewService(statsvc.ServiceParams{Repo: statsRepo})
	if err != nil {
		fatal(logg, "stats service", err)
	}

	checkoutProvider, err := checkoutsvc.NewStripeProvider(stripeClient)
	if err != nil {
		fatal(logg, "checkout provider", err)
	}
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Provider:  checkoutProvider,
		Repo:      checkoutRepo,
		OrderRepo: orderRepo,
		Carts:     cartService,
		Coupons:   couponService,
		Catalog:   productRepo,
		Sales:     sellerRepo,
		Config:    cfg.Checkout,
		Logger:    logg,
	})
	if err != nil {
		fatal(logg, "checkout service", err)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessionManager,
		Metrics:  metrics.NewHTTPMetrics(),
		Pingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		RateLimits:   redisClient,
		StripeClient: stripeClient,
		WebhookGuard: redisClient,
		Auth:         authService,
		Users:        userService,
		Products:     productService,
		Carts:        cartService,
		Checkout:     checkoutService,
		Orders:       orderService,
		Wishlist:     wishlistService,
		Reviews:      reviewService,
		Sellers:      sellerService,
		Coupons:      couponService,
		Stats:        statsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func fatal(logg *logger.Logger, what string, err error) {
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
