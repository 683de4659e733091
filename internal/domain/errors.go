package domain

import "errors"

// Sentinel errors for the public operation surface. Callers match these
// with errors.Is; messages carry the offending field via %w wrapping.
var (
	// ErrMissingField is returned when a required input field is empty.
	ErrMissingField = errors.New("required field is empty")

	// ErrDocumentExists is returned when ingesting a doc id that is
	// already present in the canonical store.
	ErrDocumentExists = errors.New("doc id already exists")

	// ErrInvalidTopK is returned for a non-positive top-k.
	ErrInvalidTopK = errors.New("top_k must be positive")

	// ErrSummaryTarget is returned when a summary request names both or
	// neither of session id and doc id.
	ErrSummaryTarget = errors.New("specify exactly one of session id or doc id")

	// ErrNotFound is returned when a requested document or session does
	// not exist.
	ErrNotFound = errors.New("target not found")

	// ErrNotImplemented marks documented extension points that have no
	// implementation yet.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidConfig is returned by config validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)
