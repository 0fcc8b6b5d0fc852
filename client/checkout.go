package client

import (
	"context"
	"fmt"
	"net/http"
)

// CheckoutSession is the handle returned when a hosted checkout opens: the
// URL to redirect the shopper to, and the session id to poll afterwards.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckoutSession opens a hosted checkout for the persisted cart.
// Origin is the storefront base URL the provider redirects back to.
func (c *Client) CreateCheckoutSession(ctx context.Context, origin string, couponCode *string) (CheckoutSession, error) {
	cartID, ok := c.storage.Get(KeyCartID)
	if !ok || cartID == "" {
		return CheckoutSession{}, fmt.Errorf("no cart to check out")
	}

	body := map[string]any{
		"cart_id": cartID,
		"origin":  origin,
	}
	if couponCode != nil && *couponCode != "" {
		body["coupon_code"] = *couponCode
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/api/checkout/session", nil, body, &session); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}
