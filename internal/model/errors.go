package model

import "errors"

// Error taxonomy shared by collaborators, strategies and the dispatcher.
// Errors are wrapped with both the sentinel and the cause, so callers
// should match with errors.Is.
var (
	// ErrTransport marks a network or API failure from a search or scoring call.
	ErrTransport = errors.New("transport error")

	// ErrSchema marks a scoring response that does not match the declared shape.
	ErrSchema = errors.New("schema error")

	// ErrNoEntities is returned when research is asked to fan out over nothing.
	ErrNoEntities = errors.New("no entities to research")

	// ErrPanic marks an entity task whose strategy panicked.
	ErrPanic = errors.New("strategy panicked")
)
