package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/internal/carts"
	"github.com/lumera-labs/marketplace-backend/internal/coupons"
	"github.com/lumera-labs/marketplace-backend/internal/orders"
	"github.com/lumera-labs/marketplace-backend/pkg/config"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
	"github.com/lumera-labs/marketplace-backend/pkg/logger"
)

// CartStore is the slice of the cart service checkout needs.
type CartStore interface {
	GetCart(ctx context.Context, cartID uuid.UUID) (carts.CartDTO, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) (carts.CartDTO, error)
}

// CouponStore is the slice of the coupon service checkout needs.
type CouponStore interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (coupons.ValidationResult, error)
	Redeem(ctx context.Context, code string) error
}

// Catalog is the slice of the product repository checkout needs: resolving
// seller attribution at order time and decrementing stock after a sale.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	AdjustInventory(ctx context.Context, productID uuid.UUID, sold int) error
}

// SaleRecorder accumulates seller revenue and commission after a sale.
type SaleRecorder interface {
	RecordSale(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Provider  Provider
	Repo      *Repository
	OrderRepo *orders.Repository
	Carts     CartStore
	Coupons   CouponStore
	Catalog   Catalog
	Sales     SaleRecorder
	Config    config.CheckoutConfig
	Logger    *logger.Logger
}

// Service drives the hosted-checkout lifecycle: opening sessions, reporting
// their status to pollers, and finalizing paid orders exactly once.
type Service interface {
	CreateSession(ctx context.Context, userID *uuid.UUID, input CreateSessionInput) (SessionDTO, error)
	SessionStatus(ctx context.Context, sessionID string) (StatusDTO, error)
	HandleSessionCompleted(ctx context.Context, sessionID string) error
}

type service struct {
	provider  Provider
	repo      *Repository
	orderRepo *orders.Repository
	carts     CartStore
	coupons   CouponStore
	catalog   Catalog
	sales     SaleRecorder
	cfg       config.CheckoutConfig
	logg      *logger.Logger
}

// NewService builds the checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout provider is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout repo is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	return &service{
		provider:  params.Provider,
		repo:      params.Repo,
		orderRepo: params.OrderRepo,
		carts:     params.Carts,
		coupons:   params.Coupons,
		catalog:   params.Catalog,
		sales:     params.Sales,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// CreateSession snapshots the cart into a pending order and opens a hosted
// payment session. The returned session id is the client's polling handle.
func (s *service) CreateSession(ctx context.Context, userID *uuid.UUID, input CreateSessionInput) (SessionDTO, error) {
	if input.CartID == uuid.Nil {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	origin := strings.TrimRight(input.origin(), "/")
	if origin == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "origin is required")
	}

	cart, err := s.carts.GetCart(ctx, input.CartID)
	if err != nil {
		return SessionDTO{}, err
	}
	if len(cart.Items) == 0 {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	amount := cart.Total
	discount := decimal.Zero
	var couponCode *string
	if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
		if s.coupons == nil {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "coupons are not supported")
		}
		result, err := s.coupons.Validate(ctx, *input.CouponCode, cart.Total)
		if err != nil {
			return SessionDTO{}, err
		}
		discount = result.DiscountAmount
		amount = result.FinalAmount
		couponCode = &result.Code
	}

	cartRef := cart.ID.String()
	order := models.Order{
		UserID:         userID,
		SessionID:      &cartRef,
		Total:          amount,
		DiscountAmount: discount,
		CouponCode:     couponCode,
		Status:         enums.OrderStatusPending,
		Items:          s.orderItemsFromCart(ctx, cart),
	}
	if err := s.orderRepo.Create(ctx, &order); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	session, err := s.provider.CreateSession(ctx, ProviderSessionParams{
		Currency:   s.currency(),
		LineItems:  s.lineItems(cart, discount, amount),
		SuccessURL: origin + s.successPath() + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + s.cancelPath(),
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"cart_id":  cartRef,
		},
	})
	if err != nil {
		return SessionDTO{}, err
	}

	order.PaymentSessionID = &session.ID
	if err := s.orderRepo.Update(ctx, &order); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind order session")
	}

	txn := models.PaymentTransaction{
		SessionID:      session.ID,
		OrderID:        &order.ID,
		UserID:         userID,
		Amount:         amount,
		Currency:       s.currency(),
		Status:         enums.SessionStatusOpen,
		PaymentStatus:  enums.PaymentStatusUnpaid,
		CouponCode:     couponCode,
		DiscountAmount: discount,
	}
	if err := s.repo.CreateTransaction(ctx, &txn); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment transaction")
	}

	return SessionDTO{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// SessionStatus reports the current session state. Completed paid sessions
// are finalized on first observation; later calls return the stored state
// without touching the provider again.
func (s *service) SessionStatus(ctx context.Context, sessionID string) (StatusDTO, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return StatusDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	txn, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "checkout session not found")
		}
		return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}

	// Terminal states are never re-queried.
	if txn.Status != enums.SessionStatusOpen {
		return s.statusDTO(txn), nil
	}

	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return StatusDTO{}, err
	}

	txn.Status = session.Status
	txn.PaymentStatus = session.PaymentStatus
	if err := s.repo.UpdateTransaction(ctx, txn); err != nil {
		return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment transaction")
	}

	if session.Status == enums.SessionStatusComplete && session.PaymentStatus == enums.PaymentStatusPaid {
		if err := s.finalize(ctx, txn); err != nil {
			return StatusDTO{}, err
		}
	}
	return s.statusDTO(txn), nil
}

// HandleSessionCompleted finalizes a paid session reported by a provider
// webhook. Unknown sessions are ignored so replayed events stay harmless.
func (s *service) HandleSessionCompleted(ctx context.Context, sessionID string) error {
	txn, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}
	if txn.Status != enums.SessionStatusOpen {
		return nil
	}

	txn.Status = enums.SessionStatusComplete
	txn.PaymentStatus = enums.PaymentStatusPaid
	if err := s.repo.UpdateTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment transaction")
	}
	return s.finalize(ctx, txn)
}

// finalize promotes the order, burns the coupon, adjusts inventory, records
// seller revenue, and empties the cart. Each side effect is best-effort
// after the order promotion; a failure is logged rather than surfaced so the
// paying customer never sees an error for goods already paid.
func (s *service) finalize(ctx context.Context, txn *models.PaymentTransaction) error {
	if txn.OrderID == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction has no order")
	}
	if err := s.orderRepo.MarkPaid(ctx, *txn.OrderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote order")
	}

	order, err := s.orderRepo.FindByID(ctx, *txn.OrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if txn.CouponCode != nil && s.coupons != nil {
		if err := s.coupons.Redeem(ctx, *txn.CouponCode); err != nil {
			s.logError(ctx, "redeem coupon", err)
		}
	}

	for _, item := range order.Items {
		if s.catalog != nil {
			if err := s.catalog.AdjustInventory(ctx, item.ProductID, item.Quantity); err != nil {
				s.logError(ctx, "adjust inventory", err)
			}
		}
		if s.sales != nil && item.SellerID != nil {
			lineAmount := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if err := s.sales.RecordSale(ctx, *item.SellerID, lineAmount); err != nil {
				s.logError(ctx, "record seller sale", err)
			}
		}
	}

	if order.SessionID != nil {
		if cartID, err := uuid.Parse(*order.SessionID); err == nil {
			if _, err := s.carts.ClearCart(ctx, cartID); err != nil {
				s.logError(ctx, "clear cart", err)
			}
		}
	}
	return nil
}

func (s *service) statusDTO(txn *models.PaymentTransaction) StatusDTO {
	return StatusDTO{
		SessionID:      txn.SessionID,
		Status:         txn.Status,
		PaymentStatus:  txn.PaymentStatus,
		OrderID:        txn.OrderID,
		Amount:         txn.Amount,
		DiscountAmount: txn.DiscountAmount,
		AmountTotal:    toCents(txn.Amount),
		Currency:       txn.Currency,
	}
}

// lineItems forwards the cart lines to the provider. When a discount was
// applied the session carries a single adjusted line, since providers reject
// negative line amounts.
func (s *service) lineItems(cart carts.CartDTO, discount, finalAmount decimal.Decimal) []ProviderLineItem {
	if discount.IsPositive() {
		return []ProviderLineItem{{
			Name:            "Order total (discount applied)",
			UnitAmountCents: toCents(finalAmount),
			Quantity:        1,
		}}
	}
	items := make([]ProviderLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, ProviderLineItem{
			Name:            item.Name,
			UnitAmountCents: toCents(item.Price),
			Quantity:        int64(item.Quantity),
		})
	}
	return items
}

func (s *service) currency() string {
	if s.cfg.Currency == "" {
		return "usd"
	}
	return s.cfg.Currency
}

func (s *service) successPath() string {
	if s.cfg.SuccessPath == "" {
		return "/checkout/success"
	}
	return s.cfg.SuccessPath
}

func (s *service) cancelPath() string {
	if s.cfg.CancelPath == "" {
		return "/checkout/cancel"
	}
	return s.cfg.CancelPath
}

func (s *service) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}

// orderItemsFromCart freezes the cart lines into order items, resolving each
// product's seller so paid orders can be attributed later.
func (s *service) orderItemsFromCart(ctx context.Context, cart carts.CartDTO) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		row := models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
		if s.catalog != nil {
			if product, err := s.catalog.FindByID(ctx, item.ProductID); err == nil {
				row.SellerID = product.SellerID
			}
		}
		items = append(items, row)
	}
	return items
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
