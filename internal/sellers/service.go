package sellers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

// RoleSetter promotes a user to a new role once their application clears.
type RoleSetter interface {
	SetRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) error
}

// ServiceParams groups dependencies for the seller service.
type ServiceParams struct {
	Repo *Repository
	// Roles promotes approved applicants; optional in contexts that never
	// review applications.
	Roles RoleSetter
	// DefaultCommissionPercent applies to new applications.
	DefaultCommissionPercent int
}

// Service manages the seller application lifecycle and seller-facing stats.
type Service interface {
	Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (ProfileDTO, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	ListApplications(ctx context.Context, status *enums.SellerStatus) ([]ProfileDTO, error)
	Review(ctx context.Context, profileID uuid.UUID, input ReviewInput) (ProfileDTO, error)
	Stats(ctx context.Context, userID uuid.UUID) (StatsDTO, error)
}

type service struct {
	repo       *Repository
	roles      RoleSetter
	commission decimal.Decimal
}

// NewService builds a seller service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller repo is required")
	}
	commission := params.DefaultCommissionPercent
	if commission <= 0 || commission >= 100 {
		commission = 10
	}
	return &service{
		repo:       params.Repo,
		roles:      params.Roles,
		commission: decimal.NewFromInt(int64(commission)),
	}, nil
}

// Apply files a seller application. One profile per user.
func (s *service) Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (ProfileDTO, error) {
	name := strings.TrimSpace(input.BusinessName)
	if name == "" {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	}

	profile := models.SellerProfile{
		UserID:              userID,
		BusinessName:        name,
		BusinessDescription: input.BusinessDescription,
		BusinessEmail:       input.BusinessEmail,
		BusinessPhone:       input.BusinessPhone,
		BusinessAddress:     input.BusinessAddress,
		TaxID:               input.TaxID,
		Website:             input.Website,
		Status:              enums.SellerStatusPending,
		CommissionRate:      s.commission,
	}
	if err := s.repo.Create(ctx, &profile); err != nil {
		if db.IsUniqueViolation(err, "") {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "seller application already exists")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller profile")
	}
	return toDTO(profile), nil
}

// GetProfile returns the seller profile for a user.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller profile not found")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return toDTO(*profile), nil
}

// ListApplications returns profiles for admin review, newest first.
func (s *service) ListApplications(ctx context.Context, status *enums.SellerStatus) ([]ProfileDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller status filter")
	}
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller profiles")
	}
	out := make([]ProfileDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Review decides a pending application. Approval promotes the applicant to
// the seller role; either decision is final.
func (s *service) Review(ctx context.Context, profileID uuid.UUID, input ReviewInput) (ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller profile not found")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	if profile.Status != enums.SellerStatusPending {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "application already decided")
	}

	if input.Approve {
		profile.Status = enums.SellerStatusApproved
		profile.IsVerified = true
	} else {
		profile.Status = enums.SellerStatusRejected
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller profile")
	}

	if input.Approve && s.roles != nil {
		if err := s.roles.SetRole(ctx, profile.UserID, enums.UserRoleSeller); err != nil {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote applicant")
		}
	}
	return toDTO(*profile), nil
}

// Stats summarizes the seller's lifetime sales, commission, and catalog size.
func (s *service) Stats(ctx context.Context, userID uuid.UUID) (StatsDTO, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller profile not found")
		}
		return StatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	count, err := s.repo.CountProducts(ctx, userID)
	if err != nil {
		return StatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count seller products")
	}
	return StatsDTO{
		TotalSales:      profile.TotalSales,
		TotalCommission: profile.TotalCommission,
		NetRevenue:      profile.TotalSales.Sub(profile.TotalCommission),
		ProductCount:    count,
	}, nil
}
