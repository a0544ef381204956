package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RealMatrix is a dense, zero-initialized real matrix. 0-based indexing.
type RealMatrix struct {
	d *mat.Dense
}

// NewRealMatrix returns a zero rows x cols matrix.
func NewRealMatrix(rows, cols int) *RealMatrix {
	return &RealMatrix{d: mat.NewDense(rows, cols, nil)}
}

func (m *RealMatrix) Dims() (int, int) { return m.d.Dims() }

func (m *RealMatrix) At(i, j int) float64 { return m.d.At(i, j) }

func (m *RealMatrix) Set(i, j int, value float64) { m.d.Set(i, j, value) }

// Add accumulates value into (i, j).
func (m *RealMatrix) Add(i, j int, value float64) {
	m.d.Set(i, j, m.d.At(i, j)+value)
}

func (m *RealMatrix) Clone() *RealMatrix {
	return &RealMatrix{d: mat.DenseCopyOf(m.d)}
}

func (m *RealMatrix) Plus(other *RealMatrix) *RealMatrix {
	r, c := m.d.Dims()
	out := mat.NewDense(r, c, nil)
	out.Add(m.d, other.d)
	return &RealMatrix{d: out}
}

func (m *RealMatrix) Times(other *RealMatrix) *RealMatrix {
	r, _ := m.d.Dims()
	_, c := other.d.Dims()
	out := mat.NewDense(r, c, nil)
	out.Mul(m.d, other.d)
	return &RealMatrix{d: out}
}

func (m *RealMatrix) Scale(f float64) *RealMatrix {
	r, c := m.d.Dims()
	out := mat.NewDense(r, c, nil)
	out.Scale(f, m.d)
	return &RealMatrix{d: out}
}

func (m *RealMatrix) MulVec(v *RealVector) *RealVector {
	r, _ := m.d.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(m.d, v.v)
	return &RealVector{v: out}
}

// Inverse returns the matrix inverse or ErrSingular.
func (m *RealMatrix) Inverse() (*RealMatrix, error) {
	r, c := m.d.Dims()
	out := mat.NewDense(r, c, nil)
	if err := out.Inverse(m.d); err != nil {
		if !isUsableCondition(err) {
			return nil, ErrSingular
		}
	}
	if !finite(out.RawMatrix().Data) {
		return nil, ErrSingular
	}
	return &RealMatrix{d: out}, nil
}

// Max returns the largest element by value.
func (m *RealMatrix) Max() float64 {
	return mat.Max(m.d)
}

// Dense exposes the gonum storage to solver backends.
func (m *RealMatrix) Dense() *mat.Dense { return m.d }

// RealVector is a dense, zero-initialized real vector.
type RealVector struct {
	v *mat.VecDense
}

func NewRealVector(n int) *RealVector {
	return &RealVector{v: mat.NewVecDense(n, nil)}
}

// RealVectorFrom copies values into a new vector.
func RealVectorFrom(values []float64) *RealVector {
	data := make([]float64, len(values))
	copy(data, values)
	return &RealVector{v: mat.NewVecDense(len(data), data)}
}

func (v *RealVector) Len() int { return v.v.Len() }

func (v *RealVector) At(i int) float64 { return v.v.AtVec(i) }

func (v *RealVector) Set(i int, value float64) { v.v.SetVec(i, value) }

func (v *RealVector) Add(i int, value float64) {
	v.v.SetVec(i, v.v.AtVec(i)+value)
}

func (v *RealVector) Clone() *RealVector {
	out := mat.NewVecDense(v.v.Len(), nil)
	out.CopyVec(v.v)
	return &RealVector{v: out}
}

// Clear zeroes every entry in place.
func (v *RealVector) Clear() {
	v.v.Zero()
}

// CopyFrom overwrites v with src. Lengths must match.
func (v *RealVector) CopyFrom(src *RealVector) {
	v.v.CopyVec(src.v)
}

func (v *RealVector) Plus(other *RealVector) *RealVector {
	out := mat.NewVecDense(v.v.Len(), nil)
	out.AddVec(v.v, other.v)
	return &RealVector{v: out}
}

func (v *RealVector) Minus(other *RealVector) *RealVector {
	out := mat.NewVecDense(v.v.Len(), nil)
	out.SubVec(v.v, other.v)
	return &RealVector{v: out}
}

func (v *RealVector) Scale(f float64) *RealVector {
	out := mat.NewVecDense(v.v.Len(), nil)
	out.ScaleVec(f, v.v)
	return &RealVector{v: out}
}

// Max returns the largest entry by value.
func (v *RealVector) Max() float64 {
	return mat.Max(v.v)
}

// MaxAbs returns the largest entry by magnitude, 0 for an empty vector.
func (v *RealVector) MaxAbs() float64 {
	maxAbs := 0.0
	for i := 0; i < v.v.Len(); i++ {
		if a := math.Abs(v.v.AtVec(i)); a > maxAbs || math.IsNaN(a) {
			maxAbs = a
		}
	}
	return maxAbs
}

// IsFinite reports whether no entry is NaN or Inf.
func (v *RealVector) IsFinite() bool {
	return finite(v.v.RawVector().Data)
}

// Raw returns a copy of the entries.
func (v *RealVector) Raw() []float64 {
	out := make([]float64, v.v.Len())
	for i := range out {
		out[i] = v.v.AtVec(i)
	}
	return out
}

// Vec exposes the gonum storage to solver backends.
func (v *RealVector) Vec() *mat.VecDense { return v.v }

func finite(data []float64) bool {
	for _, x := range data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
