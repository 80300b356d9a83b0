package model

// ErrorResponse is the JSON body of every API error. Code is a stable,
// machine-readable reason such as "busy" or "limit_exceeded".
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
