package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// Coupon is an admin-managed discount code.
type Coupon struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code           string           `gorm:"column:code;not null;uniqueIndex"`
	Type           enums.CouponType `gorm:"column:type;not null"`
	Value          decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	MinOrderAmount *decimal.Decimal `gorm:"column:min_order_amount;type:numeric(12,2)"`
	MaxDiscount    *decimal.Decimal `gorm:"column:max_discount;type:numeric(12,2)"`
	UsageLimit     *int             `gorm:"column:usage_limit"`
	UsedCount      int              `gorm:"column:used_count;not null;default:0"`
	ExpiresAt      *time.Time       `gorm:"column:expires_at"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
