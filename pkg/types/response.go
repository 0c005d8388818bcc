package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the error body. Retryable tells the storefront whether repeating the
// same request (with the same Idempotency-Key) can succeed.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
