package stats

import (
	"context"

	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

const defaultTopProducts = 5

// ServiceParams groups dependencies for the stats service.
type ServiceParams struct {
	Repo *Repository
	// TopProductLimit caps the best-sellers table; defaults to 5.
	TopProductLimit int
}

// Service assembles the admin sales dashboard.
type Service interface {
	SalesStats(ctx context.Context) (SalesStatsDTO, error)
}

type service struct {
	repo     *Repository
	topLimit int
}

// NewService builds a stats service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stats repo is required")
	}
	limit := params.TopProductLimit
	if limit <= 0 {
		limit = defaultTopProducts
	}
	return &service{repo: params.Repo, topLimit: limit}, nil
}

// SalesStats gathers platform-wide revenue, order, and catalog aggregates.
func (s *service) SalesStats(ctx context.Context) (SalesStatsDTO, error) {
	revenue, err := s.repo.TotalRevenue(ctx)
	if err != nil {
		return SalesStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "total revenue")
	}
	byStatus, err := s.repo.OrdersByStatus(ctx)
	if err != nil {
		return SalesStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "orders by status")
	}
	var totalOrders int64
	for _, count := range byStatus {
		totalOrders += count
	}
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return SalesStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	top, err := s.repo.TopProducts(ctx, s.topLimit)
	if err != nil {
		return SalesStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	return SalesStatsDTO{
		TotalRevenue:   revenue,
		OrdersByStatus: byStatus,
		TotalOrders:    totalOrders,
		TotalUsers:     users,
		TopProducts:    top,
	}, nil
}
