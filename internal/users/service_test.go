package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

func setupUserTest(t *testing.T) (Service, *Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)
	return svc, repo, db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestUpdateProfilePartialFields(t *testing.T) {
	svc, _, db := setupUserTest(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice@example.com")

	name := "Alice A."
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	empty := "   "
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &empty})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	_, repo, db := setupUserTest(t)
	ctx := context.Background()
	seedUser(t, db, "bob@example.com")

	found, err := repo.FindByEmail(ctx, "  BOB@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", found.Email)
}

func TestSetUserActiveGuardsSelf(t *testing.T) {
	svc, _, db := setupUserTest(t)
	ctx := context.Background()
	admin := seedUser(t, db, "admin@example.com")
	victim := seedUser(t, db, "victim@example.com")

	_, err := svc.SetUserActive(ctx, admin.ID, admin.ID, false)
	require.Error(t, err)

	updated, err := svc.SetUserActive(ctx, admin.ID, victim.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	restored, err := svc.SetUserActive(ctx, admin.ID, victim.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
}

func TestSetRolePromotes(t *testing.T) {
	_, repo, db := setupUserTest(t)
	ctx := context.Background()
	user := seedUser(t, db, "seller@example.com")

	require.NoError(t, repo.SetRole(ctx, user.ID, enums.UserRoleSeller))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleSeller, found.Role)
}
