package matrix

import "errors"

var (
	// ErrSingular is returned when a system has no unique solution.
	ErrSingular = errors.New("matrix is singular")

	ErrShape           = errors.New("matrix: dimension mismatch")
	ErrIndexOutOfRange = errors.New("matrix: index out of range")
	ErrUnknownBackend  = errors.New("matrix: unknown backend")
)
