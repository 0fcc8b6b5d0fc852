package sellers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	"github.com/lumera-labs/marketplace-backend/pkg/types"
)

// ProfileDTO is the public shape of a seller profile.
type ProfileDTO struct {
	ID                  uuid.UUID          `json:"id"`
	UserID              uuid.UUID          `json:"user_id"`
	BusinessName        string             `json:"business_name"`
	BusinessDescription *string            `json:"business_description,omitempty"`
	BusinessEmail       *string            `json:"business_email,omitempty"`
	BusinessPhone       *string            `json:"business_phone,omitempty"`
	BusinessAddress     *types.Address     `json:"business_address,omitempty"`
	Website             *string            `json:"website,omitempty"`
	Status              enums.SellerStatus `json:"status"`
	CommissionRate      decimal.Decimal    `json:"commission_rate"`
	IsVerified          bool               `json:"is_verified"`
	CreatedAt           time.Time          `json:"created_at"`
}

// StatsDTO summarizes a seller's lifetime performance.
type StatsDTO struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	ProductCount    int64           `json:"product_count"`
}

// ApplyInput is the payload for a seller application.
type ApplyInput struct {
	BusinessName        string         `json:"business_name" validate:"required,max=200"`
	BusinessDescription *string        `json:"business_description,omitempty"`
	BusinessEmail       *string        `json:"business_email,omitempty" validate:"omitempty,email"`
	BusinessPhone       *string        `json:"business_phone,omitempty"`
	BusinessAddress     *types.Address `json:"business_address,omitempty"`
	TaxID               *string        `json:"tax_id,omitempty"`
	Website             *string        `json:"website,omitempty" validate:"omitempty,url"`
}

// ReviewInput is the admin decision on a pending application.
type ReviewInput struct {
	Approve bool `json:"approve"`
}

func toDTO(profile models.SellerProfile) ProfileDTO {
	return ProfileDTO{
		ID:                  profile.ID,
		UserID:              profile.UserID,
		BusinessName:        profile.BusinessName,
		BusinessDescription: profile.BusinessDescription,
		BusinessEmail:       profile.BusinessEmail,
		BusinessPhone:       profile.BusinessPhone,
		BusinessAddress:     profile.BusinessAddress,
		Website:             profile.Website,
		Status:              profile.Status,
		CommissionRate:      profile.CommissionRate,
		IsVerified:          profile.IsVerified,
		CreatedAt:           profile.CreatedAt,
	}
}
