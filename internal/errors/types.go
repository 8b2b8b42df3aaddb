package errors

// APIError represents a normalized error, either produced locally for an HTTP
// response or mapped from a vendor failure.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	Type       string
	// Details is surfaced as the "details" field of the response envelope.
	Details string
	// RetryAfter carries a vendor Retry-After hint in seconds, 0 when absent.
	RetryAfter int
}

// Envelope mirrors the response body every failed request returns.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
