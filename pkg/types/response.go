package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ActionResult is the outcome shape cart mutations hand back to the UI layer.
// The message is user-facing on both success and failure.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
