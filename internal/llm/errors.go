package llm

import "errors"

var (
	// ErrNotInitialized is returned when a backend is used before Init.
	ErrNotInitialized = errors.New("llm client not initialized")

	// ErrEmptyResponse marks a call that succeeded at the transport level
	// but produced no text. Callers must be able to tell this apart from
	// a provider failure.
	ErrEmptyResponse = errors.New("llm returned an empty response")
)
