package ledger

import "errors"

var (
	// ErrInvalidInput reports a request with the wrong cardinality of names
	// or results. Raised before any storage write.
	ErrInvalidInput = errors.New("invalid input")

	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
)
