package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// CouponDTO is the admin-facing coupon projection.
type CouponDTO struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Type           enums.CouponType `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit     *int             `json:"usage_limit,omitempty"`
	UsedCount      int              `json:"used_count"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
}

// CreateCouponInput captures admin-provided coupon fields.
type CreateCouponInput struct {
	Code           string           `json:"code" validate:"required"`
	Type           enums.CouponType `json:"type" validate:"required"`
	Value          decimal.Decimal  `json:"value" validate:"required"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit     *int             `json:"usage_limit,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// ValidationResult reports the discount a coupon yields for an order amount.
type ValidationResult struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

func toDTO(m models.Coupon) CouponDTO {
	return CouponDTO{
		ID:             m.ID,
		Code:           m.Code,
		Type:           m.Type,
		Value:          m.Value,
		MinOrderAmount: m.MinOrderAmount,
		MaxDiscount:    m.MaxDiscount,
		UsageLimit:     m.UsageLimit,
		UsedCount:      m.UsedCount,
		ExpiresAt:      m.ExpiresAt,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
}
