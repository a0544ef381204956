package matrix

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseProvider solves with gonum's LU factorization. Complex systems are
// solved through their 2n real block form [[Ar, -Ai], [Ai, Ar]].
type DenseProvider struct {
	factory
}

func NewDenseProvider() *DenseProvider {
	return &DenseProvider{}
}

func (p *DenseProvider) Name() string { return BackendDense }

func (p *DenseProvider) SolveReal(a *RealMatrix, b *RealVector) (*RealVector, error) {
	r, c := a.Dims()
	if err := checkSystem(r, c, b.Len()); err != nil {
		return nil, err
	}

	x, err := luSolve(a.Dense(), b.Vec())
	if err != nil {
		return nil, err
	}
	return &RealVector{v: x}, nil
}

func (p *DenseProvider) SolveComplex(a *ComplexMatrix, b *ComplexVector) (*ComplexVector, error) {
	n, c := a.Dims()
	if err := checkSystem(n, c, b.Len()); err != nil {
		return nil, err
	}

	block := mat.NewDense(2*n, 2*n, nil)
	rhs := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			block.Set(i, j, real(v))
			block.Set(i, j+n, -imag(v))
			block.Set(i+n, j, imag(v))
			block.Set(i+n, j+n, real(v))
		}
		rhs.SetVec(i, real(b.At(i)))
		rhs.SetVec(i+n, imag(b.At(i)))
	}

	x, err := luSolve(block, rhs)
	if err != nil {
		return nil, err
	}

	out := NewComplexVector(n)
	for i := 0; i < n; i++ {
		out.data[i] = complex(x.AtVec(i), x.AtVec(i+n))
	}
	return out, nil
}

func (p *DenseProvider) Inverse(a *RealMatrix) (*RealMatrix, error) {
	return a.Inverse()
}

func luSolve(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	var lu mat.LU
	lu.Factorize(a)

	x := mat.NewVecDense(b.Len(), nil)
	if err := lu.SolveVecTo(x, false, b); err != nil && !isUsableCondition(err) {
		return nil, ErrSingular
	}
	if !finite(x.RawVector().Data) {
		return nil, ErrSingular
	}
	return x, nil
}

// isUsableCondition accepts ill-conditioned but finite results. Newton
// iterates far from the solution produce such systems routinely.
func isUsableCondition(err error) bool {
	var cond mat.Condition
	if !errors.As(err, &cond) {
		return false
	}
	c := float64(cond)
	return !math.IsInf(c, 0) && !math.IsNaN(c)
}
