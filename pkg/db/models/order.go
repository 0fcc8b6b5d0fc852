package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	"github.com/lumera-labs/marketplace-backend/pkg/types"
)

// Order is the snapshot of a cart at checkout time.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID           *uuid.UUID        `gorm:"column:user_id;type:uuid;index"`
	SessionID        *string           `gorm:"column:session_id;index"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total            decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	DiscountAmount   decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	CouponCode       *string           `gorm:"column:coupon_code"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'pending';index"`
	PaymentSessionID *string           `gorm:"column:payment_session_id;index"`
	ShippingAddress  *types.Address    `gorm:"column:shipping_address;serializer:json"`
	TrackingNumber   *string           `gorm:"column:tracking_number"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a product line frozen into an order.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SellerID    *uuid.UUID      `gorm:"column:seller_id;type:uuid;index"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (oi *OrderItem) BeforeCreate(*gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}
