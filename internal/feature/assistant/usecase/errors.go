package usecase

import "errors"

var (
	// ErrEmptyQuestion is returned when the submitted question is blank.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrAssistantUnavailable is returned when the LLM backend is not configured
	// or cannot be reached. Surfaced to the user as a short message, never a stack trace.
	ErrAssistantUnavailable = errors.New("assistant is currently unavailable")
)
