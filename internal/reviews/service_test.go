package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/internal/products"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

func setupReviewTest(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Review{}, &models.User{}))

	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(db),
		ProductRepo: products.NewRepository(db),
	})
	require.NoError(t, err)
	return svc, db
}

func seedReviewProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()

	product := models.Product{
		Name:        "Headphones",
		Description: "Closed-back",
		Price:       decimal.RequireFromString("89.00"),
		Category:    "audio",
		Brand:       "Acme",
		Inventory:   3,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedReviewUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Email:        name + "@example.com",
		PasswordHash: "x",
		Name:         name,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCreateReviewRefreshesProductStats(t *testing.T) {
	svc, db := setupReviewTest(t)
	ctx := context.Background()
	product := seedReviewProduct(t, db)
	alice := seedReviewUser(t, db, "alice")
	bob := seedReviewUser(t, db, "bob")

	_, err := svc.CreateReview(ctx, alice.ID, product.ID, CreateReviewInput{Rating: 5, Comment: "Great sound"})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, bob.ID, product.ID, CreateReviewInput{Rating: 3, Comment: "Decent"})
	require.NoError(t, err)

	var refreshed models.Product
	require.NoError(t, db.First(&refreshed, "id = ?", product.ID).Error)
	assert.Equal(t, 2, refreshed.ReviewsCount)
	assert.InDelta(t, 4.0, refreshed.Rating, 0.001)
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	svc, db := setupReviewTest(t)
	ctx := context.Background()
	product := seedReviewProduct(t, db)
	user := seedReviewUser(t, db, "carol")

	_, err := svc.CreateReview(ctx, user.ID, product.ID, CreateReviewInput{Rating: 4, Comment: "Good"})
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, user.ID, product.ID, CreateReviewInput{Rating: 2, Comment: "Changed my mind"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateReviewValidatesInput(t *testing.T) {
	svc, db := setupReviewTest(t)
	ctx := context.Background()
	product := seedReviewProduct(t, db)
	user := seedReviewUser(t, db, "dave")

	_, err := svc.CreateReview(ctx, user.ID, product.ID, CreateReviewInput{Rating: 6, Comment: "Too good"})
	require.Error(t, err)

	_, err = svc.CreateReview(ctx, user.ID, product.ID, CreateReviewInput{Rating: 3, Comment: "   "})
	require.Error(t, err)

	_, err = svc.CreateReview(ctx, user.ID, uuid.New(), CreateReviewInput{Rating: 3, Comment: "Where is it"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListProductReviewsIncludesAuthorNames(t *testing.T) {
	svc, db := setupReviewTest(t)
	ctx := context.Background()
	product := seedReviewProduct(t, db)
	user := seedReviewUser(t, db, "erin")

	_, err := svc.CreateReview(ctx, user.ID, product.ID, CreateReviewInput{Rating: 5, Comment: "Love it"})
	require.NoError(t, err)

	listed, err := svc.ListProductReviews(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "erin", listed[0].UserName)
	assert.Equal(t, 5, listed[0].Rating)
}

func TestDeleteReviewOwnership(t *testing.T) {
	svc, db := setupReviewTest(t)
	ctx := context.Background()
	product := seedReviewProduct(t, db)
	author := seedReviewUser(t, db, "frank")
	stranger := seedReviewUser(t, db, "grace")

	created, err := svc.CreateReview(ctx, author.ID, product.ID, CreateReviewInput{Rating: 1, Comment: "Broke in a week"})
	require.NoError(t, err)

	err = svc.DeleteReview(ctx, stranger.ID, false, created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	// Admins bypass ownership.
	require.NoError(t, svc.DeleteReview(ctx, stranger.ID, true, created.ID))

	var refreshed models.Product
	require.NoError(t, db.First(&refreshed, "id = ?", product.ID).Error)
	assert.Equal(t, 0, refreshed.ReviewsCount)
}
