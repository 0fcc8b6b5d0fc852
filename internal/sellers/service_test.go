package sellers

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
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

type stubRoles struct {
	promoted map[uuid.UUID]enums.UserRole
}

func (s *stubRoles) SetRole(_ context.Context, userID uuid.UUID, role enums.UserRole) error {
	if s.promoted == nil {
		s.promoted = map[uuid.UUID]enums.UserRole{}
	}
	s.promoted[userID] = role
	return nil
}

func setupSellerTest(t *testing.T) (Service, *Repository, *stubRoles, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SellerProfile{}, &models.Product{}))

	repo := NewRepository(db)
	roles := &stubRoles{}
	svc, err := NewService(ServiceParams{Repo: repo, Roles: roles, DefaultCommissionPercent: 10})
	require.NoError(t, err)
	return svc, repo, roles, db
}

func TestApplyCreatesPendingProfile(t *testing.T) {
	svc, _, _, _ := setupSellerTest(t)
	ctx := context.Background()
	userID := uuid.New()

	profile, err := svc.Apply(ctx, userID, ApplyInput{BusinessName: "  Acme Records  "})
	require.NoError(t, err)
	assert.Equal(t, "Acme Records", profile.BusinessName)
	assert.Equal(t, enums.SellerStatusPending, profile.Status)
	assert.True(t, profile.CommissionRate.Equal(decimal.NewFromInt(10)))

	// A second application by the same user conflicts.
	_, err = svc.Apply(ctx, userID, ApplyInput{BusinessName: "Acme Again"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestReviewApprovalPromotesApplicant(t *testing.T) {
	svc, _, roles, _ := setupSellerTest(t)
	ctx := context.Background()
	userID := uuid.New()

	profile, err := svc.Apply(ctx, userID, ApplyInput{BusinessName: "Acme Records"})
	require.NoError(t, err)

	decided, err := svc.Review(ctx, profile.ID, ReviewInput{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, enums.SellerStatusApproved, decided.Status)
	assert.True(t, decided.IsVerified)
	assert.Equal(t, enums.UserRoleSeller, roles.promoted[userID])

	// Decisions are final.
	_, err = svc.Review(ctx, profile.ID, ReviewInput{Approve: false})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestReviewRejectionLeavesRoleAlone(t *testing.T) {
	svc, _, roles, _ := setupSellerTest(t)
	ctx := context.Background()
	userID := uuid.New()

	profile, err := svc.Apply(ctx, userID, ApplyInput{BusinessName: "Shady Goods"})
	require.NoError(t, err)

	decided, err := svc.Review(ctx, profile.ID, ReviewInput{Approve: false})
	require.NoError(t, err)
	assert.Equal(t, enums.SellerStatusRejected, decided.Status)
	assert.False(t, decided.IsVerified)
	assert.Empty(t, roles.promoted)
}

func TestRecordSaleAccumulatesCommission(t *testing.T) {
	svc, repo, _, db := setupSellerTest(t)
	ctx := context.Background()
	userID := uuid.New()

	profile, err := svc.Apply(ctx, userID, ApplyInput{BusinessName: "Acme Records"})
	require.NoError(t, err)
	_, err = svc.Review(ctx, profile.ID, ReviewInput{Approve: true})
	require.NoError(t, err)

	require.NoError(t, repo.RecordSale(ctx, userID, decimal.RequireFromString("100.00")))
	require.NoError(t, repo.RecordSale(ctx, userID, decimal.RequireFromString("50.00")))

	require.NoError(t, db.Create(&models.Product{
		Name: "LP", Description: "LP", Price: decimal.RequireFromString("25.00"),
		Category: "music", Brand: "Acme", Inventory: 1, IsActive: true, SellerID: &userID,
	}).Error)

	stats, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stats.TotalSales.Equal(decimal.RequireFromString("150.00")), "total sales %s", stats.TotalSales)
	assert.True(t, stats.TotalCommission.Equal(decimal.RequireFromString("15.00")), "commission %s", stats.TotalCommission)
	assert.True(t, stats.NetRevenue.Equal(decimal.RequireFromString("135.00")))
	assert.Equal(t, int64(1), stats.ProductCount)
}

func TestStatsMissingProfile(t *testing.T) {
	svc, _, _, _ := setupSellerTest(t)

	_, err := svc.Stats(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
