package stats

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

func setupStatsTest(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}))

	svc, err := NewService(ServiceParams{Repo: NewRepository(db), TopProductLimit: 3})
	require.NoError(t, err)
	return svc, db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, total string, items ...models.OrderItem) {
	t.Helper()

	order := models.Order{
		Total:  decimal.RequireFromString(total),
		Status: status,
		Items:  items,
	}
	require.NoError(t, db.Create(&order).Error)
}

func TestSalesStatsAggregates(t *testing.T) {
	svc, db := setupStatsTest(t)
	ctx := context.Background()

	vinyl := uuid.New()
	poster := uuid.New()

	seedOrder(t, db, enums.OrderStatusPaid, "60.00",
		models.OrderItem{ProductID: vinyl, ProductName: "Vinyl", Quantity: 2, Price: decimal.RequireFromString("20.00")},
		models.OrderItem{ProductID: poster, ProductName: "Poster", Quantity: 1, Price: decimal.RequireFromString("20.00")},
	)
	seedOrder(t, db, enums.OrderStatusDelivered, "40.00",
		models.OrderItem{ProductID: vinyl, ProductName: "Vinyl", Quantity: 2, Price: decimal.RequireFromString("20.00")},
	)
	// Pending and cancelled orders never count as revenue.
	seedOrder(t, db, enums.OrderStatusPending, "99.00")
	seedOrder(t, db, enums.OrderStatusCancelled, "80.00")

	require.NoError(t, db.Create(&models.User{Email: "a@example.com", PasswordHash: "x", Name: "A"}).Error)
	require.NoError(t, db.Create(&models.User{Email: "b@example.com", PasswordHash: "x", Name: "B"}).Error)

	stats, err := svc.SalesStats(ctx)
	require.NoError(t, err)

	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("100.00")), "revenue %s", stats.TotalRevenue)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.OrdersByStatus["pending"])
	assert.Equal(t, int64(1), stats.OrdersByStatus["paid"])
	assert.Equal(t, int64(2), stats.TotalUsers)

	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, vinyl, stats.TopProducts[0].ProductID)
	assert.Equal(t, int64(4), stats.TopProducts[0].UnitsSold)
	assert.True(t, stats.TopProducts[0].Revenue.Equal(decimal.RequireFromString("80.00")))
}

func TestSalesStatsEmptyDatabase(t *testing.T) {
	svc, _ := setupStatsTest(t)

	stats, err := svc.SalesStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Zero(t, stats.TotalOrders)
	assert.Empty(t, stats.TopProducts)
}
