package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// SparseProvider solves with the Markowitz-ordered sparse LU from
// github.com/edp1096/sparse. A fresh 1-based sparse matrix is built for
// every solve; callers own only the dense views.
type SparseProvider struct {
	factory
}

func NewSparseProvider() *SparseProvider {
	return &SparseProvider{}
}

func (p *SparseProvider) Name() string { return BackendSparse }

func newSparseConfig(isComplex bool) *sparse.Configuration {
	return &sparse.Configuration{
		Real:                    true,
		Complex:                 isComplex,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}
}

func (p *SparseProvider) SolveReal(a *RealMatrix, b *RealVector) (*RealVector, error) {
	size, c := a.Dims()
	if err := checkSystem(size, c, b.Len()); err != nil {
		return nil, err
	}

	m, err := sparse.Create(int64(size), newSparseConfig(false))
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}
	defer m.Destroy()

	loadReal(m, a)

	if err := m.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	rhs := make([]float64, size+1)
	for i := 1; i <= size; i++ {
		rhs[i] = b.At(i - 1)
	}

	solution, err := m.Solve(rhs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	x := NewRealVector(size)
	for i := 1; i <= size; i++ {
		x.Set(i-1, solution[i])
	}
	if !x.IsFinite() {
		return nil, ErrSingular
	}
	return x, nil
}

func (p *SparseProvider) SolveComplex(a *ComplexMatrix, b *ComplexVector) (*ComplexVector, error) {
	size, c := a.Dims()
	if err := checkSystem(size, c, b.Len()); err != nil {
		return nil, err
	}

	m, err := sparse.Create(int64(size), newSparseConfig(true))
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}
	defer m.Destroy()

	for i := 1; i <= size; i++ {
		for j := 1; j <= size; j++ {
			v := a.At(i-1, j-1)
			if v == 0 && i != j {
				continue
			}
			element := m.GetElement(int64(i), int64(j))
			element.Real += real(v)
			element.Imag += imag(v)
		}
	}

	if err := m.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	// Interleaved [re, im] pairs, 1-based.
	rhs := make([]float64, (size+1)*2)
	for i := 1; i <= size; i++ {
		v := b.At(i - 1)
		rhs[2*i] = real(v)
		rhs[2*i+1] = imag(v)
	}

	solution, _, err := m.SolveComplex(rhs, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	x := NewComplexVector(size)
	for i := 1; i <= size; i++ {
		x.Set(i-1, complex(solution[2*i], solution[2*i+1]))
	}
	if !x.IsFinite() {
		return nil, ErrSingular
	}
	return x, nil
}

// Inverse solves against each unit column on a single factorization.
func (p *SparseProvider) Inverse(a *RealMatrix) (*RealMatrix, error) {
	size, c := a.Dims()
	if err := checkSystem(size, c, size); err != nil {
		return nil, err
	}

	m, err := sparse.Create(int64(size), newSparseConfig(false))
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}
	defer m.Destroy()

	loadReal(m, a)
	if err := m.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	inv := NewRealMatrix(size, size)
	rhs := make([]float64, size+1)
	for col := 1; col <= size; col++ {
		clear(rhs)
		rhs[col] = 1
		solution, err := m.Solve(rhs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		for row := 1; row <= size; row++ {
			inv.Set(row-1, col-1, solution[row])
		}
	}
	if !finite(inv.Dense().RawMatrix().Data) {
		return nil, ErrSingular
	}
	return inv, nil
}

// loadReal creates elements for the nonzero entries of a and its diagonal.
func loadReal(m *sparse.Matrix, a *RealMatrix) {
	size, _ := a.Dims()
	for i := 1; i <= size; i++ {
		for j := 1; j <= size; j++ {
			v := a.At(i-1, j-1)
			if v == 0 && i != j {
				continue
			}
			m.GetElement(int64(i), int64(j)).Real += v
		}
	}
}
