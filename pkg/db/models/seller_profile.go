package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	"github.com/lumera-labs/marketplace-backend/pkg/types"
)

// SellerProfile is the business identity behind a seller account. Created as a
// pending application at registration and activated by admin approval.
type SellerProfile struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID              uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName        string             `gorm:"column:business_name;not null"`
	BusinessDescription *string            `gorm:"column:business_description"`
	BusinessEmail       *string            `gorm:"column:business_email"`
	BusinessPhone       *string            `gorm:"column:business_phone"`
	BusinessAddress     *types.Address     `gorm:"column:business_address;serializer:json"`
	TaxID               *string            `gorm:"column:tax_id"`
	Website             *string            `gorm:"column:website"`
	Status              enums.SellerStatus `gorm:"column:status;not null;default:'pending';index"`
	CommissionRate      decimal.Decimal    `gorm:"column:commission_rate;type:numeric(5,2);not null;default:10"`
	TotalSales          decimal.Decimal    `gorm:"column:total_sales;type:numeric(14,2);not null;default:0"`
	TotalCommission     decimal.Decimal    `gorm:"column:total_commission;type:numeric(14,2);not null;default:0"`
	IsVerified          bool               `gorm:"column:is_verified;not null;default:false"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (s *SellerProfile) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
