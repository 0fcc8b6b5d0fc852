package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

const (
	// globalSearchScope collects terms across all shoppers for admin
	// analytics. It can never collide with a uuid-keyed user scope.
	globalSearchScope = "global"
	globalSearchLimit = 50
)

// SearchRecorder persists per-user recent search terms.
type SearchRecorder interface {
	PushRecentSearch(ctx context.Context, userID, term string, limit int64) error
	RecentSearches(ctx context.Context, userID string, limit int64) ([]string, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo              *Repository
	Searches          SearchRecorder
	RecentSearchLimit int
}

// Service exposes catalog business rules.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (ProductDTO, error)
	ListProducts(ctx context.Context, actorID *uuid.UUID, filters ListFilters) (ProductPageDTO, error)
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
	RecentSearches(ctx context.Context, userID uuid.UUID) ([]string, error)
	PlatformSearches(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (ProductDTO, error)
	UpdateProduct(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID, input UpdateProductInput) (ProductDTO, error)
	DeleteProduct(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID) error
}

type service struct {
	repo        *Repository
	searches    SearchRecorder
	searchLimit int64
}

// NewService builds the catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	limit := params.RecentSearchLimit
	if limit <= 0 {
		limit = 10
	}
	return &service{
		repo:        params.Repo,
		searches:    params.Searches,
		searchLimit: int64(limit),
	}, nil
}

// GetProduct returns one catalog entry.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toDTO(*product), nil
}

// ListProducts returns a filtered catalog page. Search terms from
// authenticated users are recorded for the recent-search shelf; a recording
// failure never fails the listing.
func (s *service) ListProducts(ctx context.Context, actorID *uuid.UUID, filters ListFilters) (ProductPageDTO, error) {
	page, err := s.repo.List(ctx, filters)
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	term := strings.TrimSpace(filters.Search)
	if term != "" && s.searches != nil {
		// Platform-wide shelf feeds the admin search analytics view.
		_ = s.searches.PushRecentSearch(ctx, globalSearchScope, term, globalSearchLimit)
		if actorID != nil && *actorID != uuid.Nil {
			_ = s.searches.PushRecentSearch(ctx, actorID.String(), term, s.searchLimit)
		}
	}
	return page, nil
}

// PlatformSearches returns the most recent search terms across all shoppers.
func (s *service) PlatformSearches(ctx context.Context) ([]string, error) {
	if s.searches == nil {
		return []string{}, nil
	}
	terms, err := s.searches.RecentSearches(ctx, globalSearchScope, globalSearchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform searches")
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

// Categories lists the distinct active categories.
func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

// Brands lists the distinct active brands.
func (s *service) Brands(ctx context.Context) ([]string, error) {
	brands, err := s.repo.Brands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	return brands, nil
}

// RecentSearches returns the user's recent search terms, newest first.
func (s *service) RecentSearches(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if s.searches == nil {
		return []string{}, nil
	}
	terms, err := s.searches.RecentSearches(ctx, userID.String(), s.searchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent searches")
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

// CreateProduct inserts a catalog entry owned by the seller.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (ProductDTO, error) {
	if sellerID == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if input.Price.IsNegative() {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := newProductModel(sellerID, input)
	if err := s.repo.Create(ctx, &product); err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toDTO(product), nil
}

// UpdateProduct applies a partial update. Sellers may only touch their own rows.
func (s *service) UpdateProduct(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID, input UpdateProductInput) (ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !isAdmin && (product.SellerID == nil || *product.SellerID != actorID) {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}

	applyUpdate(product, input)
	if product.Price.IsNegative() {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toDTO(*product), nil
}

// DeleteProduct removes a catalog entry. Sellers may only delete their own rows.
func (s *service) DeleteProduct(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !isAdmin && (product.SellerID == nil || *product.SellerID != actorID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}
