package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/internal/products"
	"github.com/lumera-labs/marketplace-backend/pkg/db"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	Repo        *Repository
	ProductRepo *products.Repository
}

// Service exposes review operations. Every mutation refreshes the product's
// aggregated rating so listings never show stale stats.
type Service interface {
	CreateReview(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (ReviewDTO, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	DeleteReview(ctx context.Context, actorID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error
}

type service struct {
	repo        *Repository
	productRepo *products.Repository
}

// NewService builds a review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: params.Repo, productRepo: params.ProductRepo}, nil
}

// CreateReview posts a review. One review per user per product.
func (s *service) CreateReview(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	review := models.Review{
		ProductID:  product.ID,
		UserID:     userID,
		Rating:     input.Rating,
		Comment:    comment,
		IsApproved: true,
	}
	if err := s.repo.Create(ctx, &review); err != nil {
		if db.IsUniqueViolation(err, "") {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product already reviewed")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	if err := s.productRepo.RefreshReviewStats(ctx, product.ID); err != nil {
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh review stats")
	}

	return ReviewDTO{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}, nil
}

// ListProductReviews returns approved reviews for a product, newest first.
func (s *service) ListProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	rows, names, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ReviewDTO{
			ID:        row.ID,
			ProductID: row.ProductID,
			UserID:    row.UserID,
			UserName:  names[row.UserID],
			Rating:    row.Rating,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// DeleteReview removes a review. Only the author or an admin may delete.
func (s *service) DeleteReview(ctx context.Context, actorID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review.UserID != actorID && !isAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another user's review")
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	if err := s.productRepo.RefreshReviewStats(ctx, review.ProductID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh review stats")
	}
	return nil
}
