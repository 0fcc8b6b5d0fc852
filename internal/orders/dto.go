package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	"github.com/lumera-labs/marketplace-backend/pkg/types"
)

// OrderItemDTO is an immutable snapshot of a purchased line.
type OrderItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	SellerID    *uuid.UUID      `json:"seller_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderDTO is the order projection returned to clients.
type OrderDTO struct {
	ID               uuid.UUID         `json:"id"`
	UserID           *uuid.UUID        `json:"user_id,omitempty"`
	Items            []OrderItemDTO    `json:"items"`
	Total            decimal.Decimal   `json:"total"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	CouponCode       *string           `json:"coupon_code,omitempty"`
	Status           enums.OrderStatus `json:"status"`
	PaymentSessionID *string           `json:"payment_session_id,omitempty"`
	ShippingAddress  *types.Address    `json:"shipping_address,omitempty"`
	TrackingNumber   *string           `json:"tracking_number,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// UpdateOrderInput carries admin/seller mutations of fulfillment state.
type UpdateOrderInput struct {
	Status         *enums.OrderStatus `json:"status,omitempty"`
	TrackingNumber *string            `json:"tracking_number,omitempty"`
}

func toDTO(m models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			SellerID:    item.SellerID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return OrderDTO{
		ID:               m.ID,
		UserID:           m.UserID,
		Items:            items,
		Total:            m.Total,
		DiscountAmount:   m.DiscountAmount,
		CouponCode:       m.CouponCode,
		Status:           m.Status,
		PaymentSessionID: m.PaymentSessionID,
		ShippingAddress:  m.ShippingAddress,
		TrackingNumber:   m.TrackingNumber,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
