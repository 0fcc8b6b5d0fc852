package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes order history and fulfillment rules.
type Service interface {
	GetOrder(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListOrdersBySession(ctx context.Context, sessionRef string) ([]OrderDTO, error)
	ListAllOrders(ctx context.Context) ([]OrderDTO, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]OrderDTO, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// GetOrder returns one order; non-admin actors may only read their own.
func (s *service) GetOrder(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (OrderDTO, error) {
	if orderID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isAdmin && (order.UserID == nil || *order.UserID != actorID) {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return toDTO(*order), nil
}

// ListOrders returns the user's order history.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toDTOs(rows), nil
}

// ListOrdersBySession returns orders created from an anonymous cart session.
func (s *service) ListOrdersBySession(ctx context.Context, sessionRef string) ([]OrderDTO, error) {
	if sessionRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	rows, err := s.repo.ListBySessionRef(ctx, sessionRef)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list session orders")
	}
	return toDTOs(rows), nil
}

// ListAllOrders returns every order. Admin surface.
func (s *service) ListAllOrders(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list all orders")
	}
	return toDTOs(rows), nil
}

// ListSellerOrders returns orders containing the seller's products.
func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]OrderDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return toDTOs(rows), nil
}

// UpdateOrder applies fulfillment mutations (status, tracking number).
func (s *service) UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		order.Status = *input.Status
	}
	if input.TrackingNumber != nil {
		order.TrackingNumber = input.TrackingNumber
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return toDTO(*order), nil
}

func toDTOs(rows []models.Order) []OrderDTO {
	items := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return items
}
