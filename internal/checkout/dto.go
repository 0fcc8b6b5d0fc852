package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// CreateSessionInput is the payload for opening a hosted checkout session.
type CreateSessionInput struct {
	CartID     uuid.UUID `json:"cart_id" validate:"required"`
	CouponCode *string   `json:"coupon_code,omitempty"`
	// Origin is the storefront base URL the success/cancel paths are
	// appended to, e.g. https://shop.example.com. OriginURL is the older
	// field name for the same value; Origin wins when both are sent.
	Origin    string `json:"origin" validate:"omitempty,url"`
	OriginURL string `json:"origin_url" validate:"omitempty,url"`
}

func (in CreateSessionInput) origin() string {
	if v := strings.TrimSpace(in.Origin); v != "" {
		return v
	}
	return strings.TrimSpace(in.OriginURL)
}

// SessionDTO is returned after a session is opened; the client redirects to
// CheckoutURL and later polls by SessionID.
type SessionDTO struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// StatusDTO is the poller contract: session status plus payment state.
// AmountTotal is in minor currency units, matching what the provider quotes.
type StatusDTO struct {
	SessionID      string              `json:"session_id"`
	Status         enums.SessionStatus `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	OrderID        *uuid.UUID          `json:"order_id,omitempty"`
	Amount         decimal.Decimal     `json:"amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	AmountTotal    int64               `json:"amount_total"`
	Currency       string              `json:"currency"`
}
