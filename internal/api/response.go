// Package api defines shared HTTP response types.
package api

// ErrorResponse is the JSON body returned on any request failure.
// It carries a short user-facing message, never an internal error dump.
type ErrorResponse struct {
	Error string `json:"error"`
}
