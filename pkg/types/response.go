// Package types holds the wire envelopes shared by every directory API
// response.
package types

// SuccessEnvelope wraps successful payloads under a single data key, so
// store lists, map payloads, and token pairs all share one shape.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the machine-readable body of a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under a single error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
