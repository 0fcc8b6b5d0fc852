package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// PaymentTransaction mirrors one provider checkout session end to end.
type PaymentTransaction struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SessionID      string              `gorm:"column:session_id;not null;uniqueIndex"`
	OrderID        *uuid.UUID          `gorm:"column:order_id;type:uuid;index"`
	UserID         *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency       string              `gorm:"column:currency;not null;default:'usd'"`
	Status         enums.SessionStatus `gorm:"column:status;not null;default:'open'"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid'"`
	CouponCode     *string             `gorm:"column:coupon_code"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (p *PaymentTransaction) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
