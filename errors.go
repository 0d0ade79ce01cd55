package dac

import "errors"

// Sentinel errors returned by this package: no custom error types,
// checked with errors.Is by callers.
var (
	// ErrOutOfRange is returned by At when k is not in [0, Len()).
	ErrOutOfRange = errors.New("dac: index out of range")

	// ErrInvalidInput is returned by Build when the value sequence is
	// empty or BuildOptions fails validation.
	ErrInvalidInput = errors.New("dac: invalid input")
)
