package carts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/internal/products"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	CartRepo    *Repository
	ProductRepo *products.Repository
}

// Service exposes business rules for cart management. Carts are anonymous
// until a signed-in user performs a mutation, at which point the cart is
// attached to them.
type Service interface {
	CreateCart(ctx context.Context, userID *uuid.UUID) (CartDTO, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (CartDTO, error)
	AddItem(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID, input AddItemInput) (CartDTO, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (CartDTO, error)
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (CartDTO, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) (CartDTO, error)
}

type service struct {
	cartRepo    *Repository
	productRepo *products.Repository
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
	}, nil
}

// CreateCart inserts an empty cart, optionally bound to a user.
func (s *service) CreateCart(ctx context.Context, userID *uuid.UUID) (CartDTO, error) {
	cart := models.Cart{UserID: userID}
	if err := s.cartRepo.Create(ctx, &cart); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return s.loadCart(ctx, cart.ID)
}

// GetCart returns the cart with all lines and the server-computed total.
func (s *service) GetCart(ctx context.Context, cartID uuid.UUID) (CartDTO, error) {
	if cartID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	return s.loadCart(ctx, cartID)
}

// AddItem validates the product and adds quantity to the cart line. The unit
// price is captured from the catalog at add time. When a signed-in user
// touches an anonymous cart, the cart is attached to them.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID, input AddItemInput) (CartDTO, error) {
	if cartID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if input.ProductID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cart, err := s.findCart(ctx, cartID)
	if err != nil {
		return CartDTO{}, err
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	if err := s.cartRepo.UpsertItem(ctx, cart.ID, product.ID, input.Quantity, product.Price); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}

	if userID != nil && *userID != uuid.Nil && cart.UserID == nil {
		if err := s.cartRepo.AttachUser(ctx, cart.ID, *userID); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach cart user")
		}
	}
	return s.loadCart(ctx, cart.ID)
}

// RemoveItem deletes the product line from the cart. Removing a product that
// is not in the cart is a no-op, matching idempotent delete semantics.
func (s *service) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (CartDTO, error) {
	if cartID == uuid.Nil || productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart id and product id are required")
	}
	if _, err := s.findCart(ctx, cartID); err != nil {
		return CartDTO{}, err
	}
	if err := s.cartRepo.RemoveItem(ctx, cartID, productID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.loadCart(ctx, cartID)
}

// SetItemQuantity atomically replaces the line quantity. Zero removes the
// line. A positive quantity for a product not yet in the cart inserts it.
func (s *service) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (CartDTO, error) {
	if cartID == uuid.Nil || productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart id and product id are required")
	}
	if quantity < 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if _, err := s.findCart(ctx, cartID); err != nil {
		return CartDTO{}, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cartID, productID, quantity, product.Price); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set cart item quantity")
	}
	return s.loadCart(ctx, cartID)
}

// ClearCart empties the cart after a completed checkout.
func (s *service) ClearCart(ctx context.Context, cartID uuid.UUID) (CartDTO, error) {
	if cartID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if _, err := s.findCart(ctx, cartID); err != nil {
		return CartDTO{}, err
	}
	if err := s.cartRepo.Clear(ctx, cartID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return s.loadCart(ctx, cartID)
}

func (s *service) findCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) loadCart(ctx context.Context, cartID uuid.UUID) (CartDTO, error) {
	cart, err := s.findCart(ctx, cartID)
	if err != nil {
		return CartDTO{}, err
	}

	names := make(map[uuid.UUID]string, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart product")
		}
		names[item.ProductID] = product.Name
	}
	return toCartDTO(*cart, names), nil
}
