package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/internal/products"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo        *Repository
	ProductRepo *products.Repository
}

// Service exposes wishlist operations. Toggle is the primary mutation: the
// entry flips between present and absent, and the response reports which
// side it landed on.
type Service interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResultDTO, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type service struct {
	repo        *Repository
	productRepo *products.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: params.Repo, productRepo: params.ProductRepo}, nil
}

// Toggle adds the product when absent and removes it when present.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResultDTO, error) {
	removed, err := s.repo.Remove(ctx, userID, productID)
	if err != nil {
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist")
	}
	if removed {
		return ToggleResultDTO{ProductID: productID, Wishlisted: false}, nil
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return ToggleResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return ToggleResultDTO{ProductID: productID, Wishlisted: true}, nil
}

// Remove deletes the entry if present. Removing an absent entry succeeds.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.repo.Remove(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

// List returns the user's wishlist with product snapshots, newest first.
// Entries whose product has been deleted are skipped.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	items, productsByID, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			continue
		}
		dto := ItemDTO{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			IsActive:  product.IsActive,
			AddedAt:   item.CreatedAt,
		}
		if len(product.Images) > 0 {
			image := product.Images[0]
			dto.Image = &image
		}
		out = append(out, dto)
	}
	return out, nil
}

// Contains reports whether the product is on the user's wishlist.
func (s *service) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wishlist")
	}
	return exists, nil
}
