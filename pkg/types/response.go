package types

// SuccessEnvelope wraps every 2xx storefront response. The client SDK
// decodes the Data field only, so handlers never write bare payloads.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the coded error body. Code comes from pkg/errors so the SDK
// and the storefront can branch on it (NOT_FOUND, UNAUTHORIZED, ...)
// without parsing Message, which is free-form and user-facing.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
