package client

import (
	"context"
	"net/http"
	"time"
)

// PollState is a payment poll outcome. Every state except PollProcessing is
// terminal; the poller never re-enters polling once terminal.
type PollState string

const (
	PollProcessing PollState = "processing"
	PollSuccess    PollState = "success"
	PollExpired    PollState = "expired"
	PollTimeout    PollState = "timeout"
	PollError      PollState = "error"
)

// CheckoutStatus is the server's view of a checkout session.
type CheckoutStatus struct {
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

// PollResult is the terminal outcome of one Poll call.
type PollResult struct {
	State    PollState
	Attempts int
	// Message is the user-facing explanation for non-success outcomes.
	Message string
	// Status is the last response observed, zero-valued on transport error.
	Status CheckoutStatus
}

// PollerConfig bounds and paces the poll loop.
type PollerConfig struct {
	// MaxAttempts caps status requests; defaults to 5.
	MaxAttempts int
	// Delay between attempts; defaults to 2s.
	Delay time.Duration
	// Sleep waits between attempts; injectable so tests run without real
	// timers. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Poller resolves a checkout session to a terminal payment outcome.
// Attempts are strictly sequential: each waits for the prior response before
// the next delay is scheduled, and context cancellation stops scheduling.
type Poller struct {
	client *Client
	cfg    PollerConfig
}

func NewPoller(c *Client, cfg PollerConfig) *Poller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &Poller{client: c, cfg: cfg}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poll drives the status loop for one session until a terminal state.
//
// paid → success (and the persisted cart id is cleared: the cart is
// consumed); session expired → expired; attempt budget exhausted while still
// pending → timeout; any transport failure → error, not retried.
func (p *Poller) Poll(ctx context.Context, sessionID string) PollResult {
	if sessionID == "" {
		return PollResult{State: PollError, Message: "no checkout session to poll"}
	}

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		var status CheckoutStatus
		err := p.client.do(ctx, http.MethodGet, "/api/checkout/status/"+sessionID, nil, nil, &status)
		attempts := attempt + 1
		if err != nil {
			p.client.logError(ctx, "checkout status request failed", err)
			return PollResult{
				State:    PollError,
				Attempts: attempts,
				Message:  "could not confirm payment status, please contact support",
			}
		}

		switch {
		case status.PaymentStatus == "paid":
			p.client.storage.Delete(KeyCartID)
			return PollResult{State: PollSuccess, Attempts: attempts, Status: status}
		case status.Status == "expired":
			return PollResult{
				State:    PollExpired,
				Attempts: attempts,
				Message:  "checkout session expired, please retry your purchase",
				Status:   status,
			}
		}

		if attempts >= p.cfg.MaxAttempts {
			return PollResult{
				State:    PollTimeout,
				Attempts: attempts,
				Message:  "payment still processing, check your email for confirmation",
				Status:   status,
			}
		}
		if err := p.cfg.Sleep(ctx, p.cfg.Delay); err != nil {
			return PollResult{State: PollError, Attempts: attempts, Message: "polling cancelled"}
		}
	}

	// Unreachable: the loop always terminates via a return above.
	return PollResult{State: PollTimeout, Attempts: p.cfg.MaxAttempts}
}
