package matrix

import (
	"fmt"
	"strings"
)

// Provider constructs zero-initialized algebra objects and solves linear
// systems. Every equation and solver takes one explicitly.
type Provider interface {
	Name() string

	RealMatrix(n int) *RealMatrix
	ComplexMatrix(n int) *ComplexMatrix
	RealVector(n int) *RealVector
	ComplexVector(n int) *ComplexVector

	// SolveReal solves a x = b. It returns ErrSingular when a has no
	// unique solution.
	SolveReal(a *RealMatrix, b *RealVector) (*RealVector, error)
	SolveComplex(a *ComplexMatrix, b *ComplexVector) (*ComplexVector, error)
	Inverse(a *RealMatrix) (*RealMatrix, error)
}

const (
	BackendSparse = "sparse"
	BackendDense  = "dense"
)

// NewProvider returns the provider registered under backend.
func NewProvider(backend string) (Provider, error) {
	switch strings.ToLower(backend) {
	case BackendSparse, "":
		return NewSparseProvider(), nil
	case BackendDense:
		return NewDenseProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

type factory struct{}

func (factory) RealMatrix(n int) *RealMatrix       { return NewRealMatrix(n, n) }
func (factory) ComplexMatrix(n int) *ComplexMatrix { return NewComplexMatrix(n, n) }
func (factory) RealVector(n int) *RealVector       { return NewRealVector(n) }
func (factory) ComplexVector(n int) *ComplexVector { return NewComplexVector(n) }

func checkSystem(rows, cols, rhs int) error {
	if rows != cols || rows != rhs {
		return fmt.Errorf("%w: %dx%d system with rhs of %d", ErrShape, rows, cols, rhs)
	}
	if rows == 0 {
		return fmt.Errorf("%w: empty system", ErrShape)
	}
	return nil
}
