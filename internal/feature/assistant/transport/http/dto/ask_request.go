// Package dto defines data transfer objects for the assistant HTTP API.
package dto

// AskRequest is the request body for POST /ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskResponse carries the assistant's natural-language answer.
type AskResponse struct {
	Answer string `json:"answer"`
}
