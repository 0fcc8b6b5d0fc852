package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// ServiceParams groups dependencies for the coupon service.
type ServiceParams struct {
	Repo *Repository
	Now  func() time.Time
}

// Service exposes coupon management and redemption rules.
type Service interface {
	CreateCoupon(ctx context.Context, input CreateCouponInput) (CouponDTO, error)
	ListCoupons(ctx context.Context) ([]CouponDTO, error)
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (ValidationResult, error)
	Redeem(ctx context.Context, code string) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds a coupon service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

// CreateCoupon inserts a coupon; codes are stored uppercase.
func (s *service) CreateCoupon(ctx context.Context, input CreateCouponInput) (CouponDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return CouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !input.Type.IsValid() {
		return CouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon type")
	}
	if input.Value.IsNegative() || input.Value.IsZero() {
		return CouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if input.Type == enums.CouponTypePercentage && input.Value.GreaterThan(oneHundred) {
		return CouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "percentage value cannot exceed 100")
	}

	coupon := models.Coupon{
		Code:           code,
		Type:           input.Type,
		Value:          input.Value,
		MinOrderAmount: input.MinOrderAmount,
		MaxDiscount:    input.MaxDiscount,
		UsageLimit:     input.UsageLimit,
		ExpiresAt:      input.ExpiresAt,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, &coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return CouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon code already exists")
		}
		return CouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return toDTO(coupon), nil
}

// ListCoupons returns every coupon for the admin console.
func (s *service) ListCoupons(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	items := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return items, nil
}

// DeleteCoupon removes the coupon row.
func (s *service) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}

// Validate checks eligibility and computes the discount for the order amount.
func (s *service) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (ValidationResult, error) {
	coupon, err := s.eligibleCoupon(ctx, code, orderAmount)
	if err != nil {
		return ValidationResult{}, err
	}

	discount := s.discountFor(coupon, orderAmount)
	return ValidationResult{
		Code:           coupon.Code,
		DiscountAmount: discount,
		FinalAmount:    orderAmount.Sub(discount),
	}, nil
}

// Redeem counts a successful use of the coupon.
func (s *service) Redeem(ctx context.Context, code string) error {
	coupon, err := s.findCoupon(ctx, code)
	if err != nil {
		return err
	}
	if err := s.repo.IncrementUsage(ctx, coupon.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
	}
	return nil
}

func (s *service) findCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}

func (s *service) eligibleCoupon(ctx context.Context, code string, orderAmount decimal.Decimal) (*models.Coupon, error) {
	coupon, err := s.findCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is no longer active")
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon usage limit reached")
	}
	if coupon.MinOrderAmount != nil && orderAmount.LessThan(*coupon.MinOrderAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount below coupon minimum")
	}
	return coupon, nil
}

func (s *service) discountFor(coupon *models.Coupon, orderAmount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.Type {
	case enums.CouponTypePercentage:
		discount = orderAmount.Mul(coupon.Value).Div(oneHundred).Round(2)
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
	case enums.CouponTypeFixed:
		discount = coupon.Value
	}
	if discount.GreaterThan(orderAmount) {
		discount = orderAmount
	}
	return discount
}
