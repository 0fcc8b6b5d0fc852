package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/pagination"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a single product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns active products matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) (ProductPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(filters.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filters.Limit)

	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(filters.Cursor))
	if err != nil {
		return ProductPageDTO{}, err
	}

	query := r.filteredQuery(ctx, filters)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return ProductPageDTO{}, err
	}

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	switch filters.Sort {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "rating":
		query = query.Order("rating DESC")
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return ProductPageDTO{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}

	return ProductPageDTO{
		Items:      items,
		Total:      total,
		NextCursor: nextCursor,
	}, nil
}

func (r *Repository) filteredQuery(ctx context.Context, filters ListFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)

	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", filters.MaxPrice)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", filters.SellerID)
	}
	return query
}

// Categories returns the distinct categories of active products.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).
		Error
	return categories, err
}

// Brands returns the distinct brands of active products.
func (r *Repository) Brands(ctx context.Context) ([]string, error) {
	var brands []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct("brand").
		Order("brand ASC").
		Pluck("brand", &brands).
		Error
	return brands, err
}

// Create inserts a new catalog row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists the mutated product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// RefreshReviewStats recomputes the cached rating aggregate from approved reviews.
func (r *Repository) RefreshReviewStats(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products SET
  rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = ? AND is_approved), 0),
  reviews_count = (SELECT COUNT(*) FROM reviews WHERE product_id = ? AND is_approved)
WHERE id = ?`, productID, productID, productID).Error
}

// AdjustInventory decrements stock by the sold quantity, clamping at zero.
func (r *Repository) AdjustInventory(ctx context.Context, productID uuid.UUID, sold int) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products SET inventory = CASE WHEN inventory - ? < 0 THEN 0 ELSE inventory - ? END WHERE id = ?`, sold, sold, productID).Error
}
