package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID *uuid.UUID, sellerID *uuid.UUID, total string) models.Order {
	t.Helper()

	order := models.Order{
		UserID: userID,
		Total:  decimal.RequireFromString(total),
		Status: enums.OrderStatusPending,
		Items: []models.OrderItem{
			{
				ProductID:   uuid.New(),
				SellerID:    sellerID,
				ProductName: "Item",
				Quantity:    1,
				Price:       decimal.RequireFromString(total),
			},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestRepositoryListByUser(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	other := uuid.New()
	seedOrder(t, db, &userID, nil, "10.00")
	seedOrder(t, db, &userID, nil, "20.00")
	seedOrder(t, db, &other, nil, "30.00")

	rows, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		require.NotNil(t, row.UserID)
		assert.Equal(t, userID, *row.UserID)
		assert.Len(t, row.Items, 1)
	}
}

func TestRepositoryListBySeller(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	seedOrder(t, db, nil, &sellerID, "10.00")
	seedOrder(t, db, nil, nil, "20.00")

	rows, err := repo.ListBySeller(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Items[0].SellerID)
	assert.Equal(t, sellerID, *rows[0].Items[0].SellerID)
}

func TestRepositoryMarkPaidOnlyPromotesPending(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, nil, nil, "10.00")
	require.NoError(t, repo.MarkPaid(ctx, order.ID))

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, reloaded.Status)

	// A shipped order is never demoted back to paid.
	reloaded.Status = enums.OrderStatusShipped
	require.NoError(t, repo.Update(ctx, reloaded))
	require.NoError(t, repo.MarkPaid(ctx, order.ID))

	reloaded, err = repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, reloaded.Status)
}

func TestRepositoryFindByPaymentSession(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, nil, nil, "10.00")
	sessionID := "cs_test_123"
	order.PaymentSessionID = &sessionID
	require.NoError(t, repo.Update(ctx, &order))

	found, err := repo.FindByPaymentSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByPaymentSession(ctx, "cs_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
