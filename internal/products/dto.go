package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
)

// ProductDTO is the catalog projection returned to clients.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     *uuid.UUID      `json:"seller_id,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	Images       []string        `json:"images"`
	Tags         []string        `json:"tags"`
	Inventory    int             `json:"inventory"`
	Rating       float64         `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductPageDTO is a cursor-paginated catalog slice.
type ProductPageDTO struct {
	Items      []ProductDTO `json:"items"`
	Total      int64        `json:"total"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ListFilters narrows catalog queries.
type ListFilters struct {
	Search   string
	Category string
	Brand    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SellerID *uuid.UUID
	Sort     string
	Limit    int
	Cursor   string
}

// CreateProductInput captures seller-provided catalog fields.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Brand       string          `json:"brand" validate:"required"`
	Images      []string        `json:"images"`
	Tags        []string        `json:"tags"`
	Inventory   int             `json:"inventory" validate:"gte=0"`
}

// UpdateProductInput applies partial catalog updates.
type UpdateProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Inventory   *int             `json:"inventory,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func toDTO(m models.Product) ProductDTO {
	images := m.Images
	if images == nil {
		images = []string{}
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductDTO{
		ID:           m.ID,
		SellerID:     m.SellerID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		Category:     m.Category,
		Brand:        m.Brand,
		Images:       images,
		Tags:         tags,
		Inventory:    m.Inventory,
		Rating:       m.Rating,
		ReviewsCount: m.ReviewsCount,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
