package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSegment is returned when a drawn line does not have exactly two points.
	ErrMalformedSegment = errors.New("malformed segment")

	// ErrVertexMismatch is returned in strict mode when the end of the first
	// segment does not coincide with the start of the second.
	ErrVertexMismatch = errors.New("segments do not share a vertex")

	ErrUnknownMode = errors.New("unknown measurement mode")
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrCacheMiss is returned by cache adapters when a key does not exist.
	ErrCacheMiss = errors.New("cache miss")
)

func unknown(err error, value string) error {
	return fmt.Errorf("%w: %q", err, value)
}
