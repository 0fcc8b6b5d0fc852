package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is a wishlist entry joined with its product snapshot.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     *string         `json:"image,omitempty"`
	IsActive  bool            `json:"is_active"`
	AddedAt   time.Time       `json:"added_at"`
}

// ToggleResultDTO reports the state of a product after a toggle.
type ToggleResultDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Wishlisted bool      `json:"wishlisted"`
}
