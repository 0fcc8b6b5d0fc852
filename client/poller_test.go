package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type scriptedStatus struct {
	calls    int64
	statuses []CheckoutStatus
	fail     bool
}

func (s *scriptedStatus) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&s.calls, 1)
		if s.fail {
			writeErr(w, http.StatusBadGateway, "DEPENDENCY_ERROR", "provider down")
			return
		}
		idx := int(n) - 1
		if idx >= len(s.statuses) {
			idx = len(s.statuses) - 1
		}
		writeData(w, http.StatusOK, s.statuses[idx])
	})
}

func noSleep(context.Context, time.Duration) error { return nil }

func pending() CheckoutStatus {
	return CheckoutStatus{Status: "open", PaymentStatus: "unpaid"}
}

func TestPollSucceedsAndClearsCartID(t *testing.T) {
	script := &scriptedStatus{statuses: []CheckoutStatus{
		pending(), pending(), pending(),
		{Status: "complete", PaymentStatus: "paid", AmountTotal: 4500, Currency: "usd"},
	}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	store := NewMemoryStorage()
	store.Set(KeyCartID, "cart-1")
	poller := NewPoller(newTestClient(t, server, store), PollerConfig{MaxAttempts: 5, Sleep: noSleep})

	result := poller.Poll(context.Background(), "cs_test")

	if result.State != PollSuccess {
		t.Fatalf("state = %s, message %q", result.State, result.Message)
	}
	if result.Attempts != 4 {
		t.Fatalf("attempts = %d, want 4", result.Attempts)
	}
	if result.Status.AmountTotal != 4500 {
		t.Fatalf("amount = %d", result.Status.AmountTotal)
	}
	if _, ok := store.Get(KeyCartID); ok {
		t.Fatal("cart id must be cleared on success")
	}
}

func TestPollTimesOutAfterExactlyMaxAttempts(t *testing.T) {
	script := &scriptedStatus{statuses: []CheckoutStatus{pending()}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	poller := NewPoller(newTestClient(t, server, NewMemoryStorage()),
		PollerConfig{MaxAttempts: 5, Sleep: noSleep})

	result := poller.Poll(context.Background(), "cs_test")

	if result.State != PollTimeout {
		t.Fatalf("state = %s", result.State)
	}
	if result.Attempts != 5 {
		t.Fatalf("attempts = %d, want 5", result.Attempts)
	}
	if got := atomic.LoadInt64(&script.calls); got != 5 {
		t.Fatalf("status requests = %d, want exactly 5", got)
	}
}

func TestPollExpiredIsTerminal(t *testing.T) {
	script := &scriptedStatus{statuses: []CheckoutStatus{
		{Status: "expired", PaymentStatus: "unpaid"},
	}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	poller := NewPoller(newTestClient(t, server, NewMemoryStorage()),
		PollerConfig{MaxAttempts: 5, Sleep: noSleep})

	result := poller.Poll(context.Background(), "cs_test")

	if result.State != PollExpired {
		t.Fatalf("state = %s", result.State)
	}
	if got := atomic.LoadInt64(&script.calls); got != 1 {
		t.Fatalf("status requests = %d, want 1", got)
	}
	if result.Message == "" {
		t.Fatal("expired outcome needs a user-facing message")
	}
}

func TestPollTransportFailureIsTerminalError(t *testing.T) {
	script := &scriptedStatus{fail: true}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	poller := NewPoller(newTestClient(t, server, NewMemoryStorage()),
		PollerConfig{MaxAttempts: 5, Sleep: noSleep})

	result := poller.Poll(context.Background(), "cs_test")

	if result.State != PollError {
		t.Fatalf("state = %s", result.State)
	}
	if got := atomic.LoadInt64(&script.calls); got != 1 {
		t.Fatalf("status requests = %d, want 1 (failures are not retried)", got)
	}
}

func TestPollEmptySessionIsImmediateError(t *testing.T) {
	script := &scriptedStatus{statuses: []CheckoutStatus{pending()}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	poller := NewPoller(newTestClient(t, server, NewMemoryStorage()),
		PollerConfig{MaxAttempts: 5, Sleep: noSleep})

	result := poller.Poll(context.Background(), "")

	if result.State != PollError || result.Attempts != 0 {
		t.Fatalf("state = %s attempts = %d", result.State, result.Attempts)
	}
	if got := atomic.LoadInt64(&script.calls); got != 0 {
		t.Fatalf("status requests = %d, want none", got)
	}
}

func TestPollCancellationStopsScheduling(t *testing.T) {
	script := &scriptedStatus{statuses: []CheckoutStatus{pending()}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sleep := func(sleepCtx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx.Err()
	}
	poller := NewPoller(newTestClient(t, server, NewMemoryStorage()),
		PollerConfig{MaxAttempts: 5, Sleep: sleep})

	result := poller.Poll(ctx, "cs_test")

	if result.State != PollError {
		t.Fatalf("state = %s", result.State)
	}
	if got := atomic.LoadInt64(&script.calls); got != 1 {
		t.Fatalf("status requests = %d, want 1 (nothing scheduled after cancel)", got)
	}
}

func TestPollDefaultsApplied(t *testing.T) {
	poller := NewPoller(nil, PollerConfig{})
	if poller.cfg.MaxAttempts != 5 {
		t.Fatalf("default max attempts = %d, want 5", poller.cfg.MaxAttempts)
	}
	if poller.cfg.Delay != 2*time.Second {
		t.Fatalf("default delay = %s, want 2s", poller.cfg.Delay)
	}
}
