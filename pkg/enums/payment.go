package enums

import "fmt"

// PaymentStatus mirrors the payment provider's payment_status field.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	return p == PaymentStatusUnpaid || p == PaymentStatusPaid
}

// SessionStatus mirrors the provider's checkout-session lifecycle field.
type SessionStatus string

const (
	SessionStatusOpen     SessionStatus = "open"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusExpired  SessionStatus = "expired"
)

// String implements fmt.Stringer.
func (s SessionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SessionStatus.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusOpen, SessionStatusComplete, SessionStatusExpired:
		return true
	}
	return false
}

// ParseSessionStatus converts raw input into a SessionStatus.
func ParseSessionStatus(value string) (SessionStatus, error) {
	switch SessionStatus(value) {
	case SessionStatusOpen, SessionStatusComplete, SessionStatusExpired:
		return SessionStatus(value), nil
	}
	return "", fmt.Errorf("invalid session status %q", value)
}
