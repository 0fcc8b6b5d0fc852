package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// Repository encapsulates seller profile persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a seller repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a seller profile row.
func (r *Repository) Create(ctx context.Context, profile *models.SellerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByID loads a profile by its id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID loads the profile belonging to a user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns profiles, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, status *enums.SellerStatus) ([]models.SellerProfile, error) {
	query := r.db.WithContext(ctx).Model(&models.SellerProfile{}).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.SellerProfile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the mutated profile row.
func (r *Repository) Update(ctx context.Context, profile *models.SellerProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// RecordSale accumulates revenue and the platform commission for the seller
// identified by user id. A single UPDATE keeps concurrent sales additive.
func (r *Repository) RecordSale(ctx context.Context, sellerUserID uuid.UUID, amount decimal.Decimal) error {
	oneHundred := decimal.NewFromInt(100)
	return r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("user_id = ?", sellerUserID).
		Updates(map[string]any{
			"total_sales":      gorm.Expr("total_sales + ?", amount),
			"total_commission": gorm.Expr("total_commission + (? * commission_rate / ?)", amount, oneHundred),
		}).Error
}

// CountProducts returns the number of active listings owned by the seller.
func (r *Repository) CountProducts(ctx context.Context, sellerUserID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ? AND is_active = ?", sellerUserID, true).
		Count(&count).Error
	return count, err
}
