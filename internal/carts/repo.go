package carts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
)

// Repository encapsulates cart persistence. All mutations recompute the
// denormalized total inside the caller-supplied transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an empty cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// FindByID loads a cart with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&cart, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AttachUser binds an anonymous cart to a user after login.
func (r *Repository) AttachUser(ctx context.Context, cartID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("user_id", userID).
		Error
}

// FindItem loads a single cart line if present.
func (r *Repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "cart_id = ? AND product_id = ?", cartID, productID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem adds quantity to an existing line or inserts a new one, then
// refreshes the cart total.
func (r *Repository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		err := tx.First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
		switch {
		case err == nil:
			item.Quantity += quantity
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			item = models.CartItem{
				CartID:    cartID,
				ProductID: productID,
				Quantity:  quantity,
				Price:     unitPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return refreshTotal(tx, cartID)
	})
}

// SetItemQuantity replaces the line quantity atomically. Quantity zero
// removes the line. The cart total is refreshed in the same transaction.
func (r *Repository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quantity == 0 {
			if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).
				Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return refreshTotal(tx, cartID)
		}

		var item models.CartItem
		err := tx.First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
		switch {
		case err == nil:
			item.Quantity = quantity
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			item = models.CartItem{
				CartID:    cartID,
				ProductID: productID,
				Quantity:  quantity,
				Price:     unitPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return refreshTotal(tx, cartID)
	})
}

// RemoveItem deletes the line and refreshes the total.
func (r *Repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return refreshTotal(tx, cartID)
	})
}

// Clear removes every line from the cart and zeroes the total.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return refreshTotal(tx, cartID)
	})
}

func refreshTotal(tx *gorm.DB, cartID uuid.UUID) error {
	var rows []models.CartItem
	if err := tx.Find(&rows, "cart_id = ?", cartID).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Price.Mul(decimal.NewFromInt(int64(row.Quantity))))
	}
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total", total).Error
}
