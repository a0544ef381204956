package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers() []Provider {
	return []Provider{NewDenseProvider(), NewSparseProvider()}
}

func TestRealMatrixAccumulates(t *testing.T) {
	m := NewRealMatrix(2, 2)
	m.Add(0, 1, 1.5)
	m.Add(0, 1, 2.5)
	assert.Equal(t, 4.0, m.At(0, 1))
	assert.Equal(t, 0.0, m.At(1, 0))

	c := m.Clone()
	c.Add(0, 1, 1)
	assert.Equal(t, 4.0, m.At(0, 1), "clone must not alias")
	assert.Equal(t, 5.0, c.At(0, 1))
	assert.Equal(t, 5.0, c.Max())
}

func TestRealMatrixArithmetic(t *testing.T) {
	a := NewRealMatrix(2, 2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	a.Set(1, 0, 3)
	a.Set(1, 1, 4)

	sum := a.Plus(a.Scale(2))
	assert.Equal(t, 12.0, sum.At(1, 1))

	prod := a.Times(a)
	assert.Equal(t, 7.0, prod.At(0, 0))
	assert.Equal(t, 22.0, prod.At(1, 1))

	v := RealVectorFrom([]float64{1, 1})
	assert.Equal(t, []float64{3, 7}, a.MulVec(v).Raw())
}

func TestRealVectorHelpers(t *testing.T) {
	v := RealVectorFrom([]float64{1, -4, 2})
	assert.Equal(t, 2.0, v.Max())
	assert.Equal(t, 4.0, v.MaxAbs())

	w := NewRealVector(3)
	w.CopyFrom(v)
	v.Clear()
	assert.Equal(t, []float64{1, -4, 2}, w.Raw())
	assert.Equal(t, []float64{0, 0, 0}, v.Raw())
	assert.Equal(t, []float64{2, -8, 4}, w.Plus(w).Raw())
	assert.Equal(t, []float64{0, 0, 0}, w.Minus(w).Raw())
}

func TestComplexMaxByMagnitude(t *testing.T) {
	v := NewComplexVector(3)
	v.Set(0, complex(3, 0))
	v.Set(1, complex(0, -4))
	v.Set(2, complex(1, 1))
	assert.Equal(t, complex(0, -4), v.Max())

	m := NewComplexMatrix(2, 2)
	m.Add(1, 1, complex(0, 2))
	m.Add(1, 1, complex(1, 0))
	assert.Equal(t, complex(1, 2), m.Max())
}

func TestComplexFromRealAndScale(t *testing.T) {
	r := NewRealMatrix(2, 2)
	r.Set(0, 0, 2)
	c := ComplexFromReal(r).Plus(NewComplexMatrix(2, 2).Scale(3i))
	assert.Equal(t, complex(2, 0), c.At(0, 0))

	g := NewComplexMatrix(2, 2)
	g.Set(1, 1, complex(0, 1e-6))
	a := c.Plus(g.Scale(complex(1000, 0)))
	assert.InDelta(t, 1e-3, imag(a.At(1, 1)), 1e-15)
}

func TestComplexMatrixShapePanics(t *testing.T) {
	assert.PanicsWithValue(t, ErrShape, func() {
		NewComplexMatrix(2, 2).Plus(NewComplexMatrix(3, 3))
	})
	assert.PanicsWithValue(t, ErrIndexOutOfRange, func() {
		NewComplexMatrix(2, 2).At(2, 0)
	})
}

func TestSolveReal(t *testing.T) {
	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			// 10 V source across two 1k resistors.
			a := p.RealMatrix(3)
			a.Add(0, 0, 1e-3)
			a.Add(0, 1, -1e-3)
			a.Add(1, 0, -1e-3)
			a.Add(1, 1, 2e-3)
			a.Add(0, 2, 1)
			a.Add(2, 0, 1)
			b := p.RealVector(3)
			b.Set(2, 10)

			x, err := p.SolveReal(a, b)
			require.NoError(t, err)
			assert.InDelta(t, 10.0, x.At(0), 1e-9)
			assert.InDelta(t, 5.0, x.At(1), 1e-9)
			assert.InDelta(t, -5e-3, x.At(2), 1e-12)
		})
	}
}

func TestSolveComplex(t *testing.T) {
	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			a := p.ComplexMatrix(2)
			a.Set(0, 0, complex(1, 1))
			a.Set(0, 1, complex(0, -1))
			a.Set(1, 0, complex(2, 0))
			a.Set(1, 1, complex(1, 0))
			want := []complex128{complex(1, 2), complex(-1, 0.5)}
			b := a.MulVec(&ComplexVector{data: want})

			x, err := p.SolveComplex(a, b)
			require.NoError(t, err)
			for i, w := range want {
				assert.InDelta(t, real(w), real(x.At(i)), 1e-12)
				assert.InDelta(t, imag(w), imag(x.At(i)), 1e-12)
			}
		})
	}
}

func TestSolveSingular(t *testing.T) {
	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			a := p.RealMatrix(2)
			a.Set(0, 0, 1)
			a.Set(0, 1, 1)
			a.Set(1, 0, 1)
			a.Set(1, 1, 1)
			_, err := p.SolveReal(a, p.RealVector(2))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSingular), "got %v", err)
		})
	}
}

func TestInverse(t *testing.T) {
	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			a := p.RealMatrix(2)
			a.Set(0, 0, 4)
			a.Set(0, 1, 7)
			a.Set(1, 0, 2)
			a.Set(1, 1, 6)
			inv, err := p.Inverse(a)
			require.NoError(t, err)
			id := a.Times(inv)
			assert.InDelta(t, 1.0, id.At(0, 0), 1e-12)
			assert.InDelta(t, 0.0, id.At(0, 1), 1e-12)
			assert.InDelta(t, 0.0, id.At(1, 0), 1e-12)
			assert.InDelta(t, 1.0, id.At(1, 1), 1e-12)
		})
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("DENSE")
	require.NoError(t, err)
	assert.Equal(t, BackendDense, p.Name())

	p, err = NewProvider("")
	require.NoError(t, err)
	assert.Equal(t, BackendSparse, p.Name())

	_, err = NewProvider("cholesky")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestFormatSystem(t *testing.T) {
	a := NewRealMatrix(2, 2)
	a.Set(0, 0, 1e-3)
	a.Set(1, 1, 1)
	b := RealVectorFrom([]float64{0, 5})
	out := FormatSystem(a, b)
	assert.Contains(t, out, "Equation 0:  +0.001*x0 = 0")
	assert.Contains(t, out, "Equation 1:  +1*x1 = 5")
}

func TestSolveLadder(t *testing.T) {
	const n = 300

	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			// Resistor ladder, tridiagonal.
			a := p.RealMatrix(n)
			c := p.ComplexMatrix(n)
			want := make([]float64, n)
			wantC := make([]complex128, n)
			for i := 0; i < n; i++ {
				a.Set(i, i, 2)
				c.Set(i, i, complex(2, 1))
				if i > 0 {
					a.Set(i, i-1, -1)
					a.Set(i-1, i, -1)
					c.Set(i, i-1, -1)
					c.Set(i-1, i, -1)
				}
				want[i] = float64(i%7) - 3
				wantC[i] = complex(want[i], 1)
			}

			x, err := p.SolveReal(a, a.MulVec(RealVectorFrom(want)))
			require.NoError(t, err)
			for i, w := range want {
				assert.InDelta(t, w, x.At(i), 1e-6, "x[%d]", i)
			}

			xc, err := p.SolveComplex(c, c.MulVec(&ComplexVector{data: wantC}))
			require.NoError(t, err)
			for i, w := range wantC {
				assert.InDelta(t, real(w), real(xc.At(i)), 1e-9, "x[%d]", i)
				assert.InDelta(t, imag(w), imag(xc.At(i)), 1e-9, "x[%d]", i)
			}

			inv, err := p.Inverse(a)
			require.NoError(t, err)
			id := a.Times(inv)
			for _, i := range []int{0, n / 2, n - 1} {
				assert.InDelta(t, 1.0, id.At(i, i), 1e-6)
			}
			assert.InDelta(t, 0.0, id.At(0, n-1), 1e-6)
		})
	}
}
