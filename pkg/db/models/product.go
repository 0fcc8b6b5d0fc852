package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry owned by a seller.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SellerID     *uuid.UUID      `gorm:"column:seller_id;type:uuid;index"`
	Name         string          `gorm:"column:name;not null;index"`
	Description  string          `gorm:"column:description;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Category     string          `gorm:"column:category;not null;index"`
	Brand        string          `gorm:"column:brand;not null;index"`
	Images       []string        `gorm:"column:images;serializer:json"`
	Tags         []string        `gorm:"column:tags;serializer:json"`
	Inventory    int             `gorm:"column:inventory;not null;default:0"`
	Rating       float64         `gorm:"column:rating;not null;default:0"`
	ReviewsCount int             `gorm:"column:reviews_count;not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
