package flowshop

import "errors"

var (
	// ErrValidation marks malformed instances and sequences that are not
	// a permutation of the instance's job set.
	ErrValidation = errors.New("validation error")

	// ErrRange marks out-of-bounds position or machine indices.
	ErrRange = errors.New("index out of range")
)
