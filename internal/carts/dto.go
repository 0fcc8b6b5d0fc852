package carts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
)

// CartItemDTO is one line of the cart as returned to clients. Price is the
// unit price captured when the line was created.
type CartItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// CartDTO is the full cart view. Total is always computed server-side.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Items     []CartItemDTO   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ItemCount returns the sum of line quantities.
func (c CartDTO) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// AddItemInput is the payload for adding a product to a cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

// SetQuantityInput is the payload for the atomic quantity update.
type SetQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func toCartDTO(cart models.Cart, names map[uuid.UUID]string) CartDTO {
	items := make([]CartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemDTO{
			ProductID: item.ProductID,
			Name:      names[item.ProductID],
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return CartDTO{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		Total:     cart.Total,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}
