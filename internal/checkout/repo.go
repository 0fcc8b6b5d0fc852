package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
)

// Repository encapsulates payment transaction persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a checkout repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTransaction inserts the payment transaction row for a new session.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindBySessionID loads the transaction for a checkout session.
func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.WithContext(ctx).First(&txn, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateTransaction persists the mutated transaction row.
func (r *Repository) UpdateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}
