package matrix

import (
	"math"
	"math/cmplx"
)

// ComplexMatrix is a dense, zero-initialized complex matrix stored row-major.
type ComplexMatrix struct {
	rows, cols int
	data       []complex128
}

func NewComplexMatrix(rows, cols int) *ComplexMatrix {
	return &ComplexMatrix{rows: rows, cols: cols, data: make([]complex128, rows*cols)}
}

// ComplexFromReal lifts a real matrix into the complex field.
func ComplexFromReal(m *RealMatrix) *ComplexMatrix {
	r, c := m.Dims()
	out := NewComplexMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = complex(m.At(i, j), 0)
		}
	}
	return out
}

func (m *ComplexMatrix) Dims() (int, int) { return m.rows, m.cols }

func (m *ComplexMatrix) At(i, j int) complex128 { return m.data[m.index(i, j)] }

func (m *ComplexMatrix) Set(i, j int, value complex128) { m.data[m.index(i, j)] = value }

func (m *ComplexMatrix) Add(i, j int, value complex128) { m.data[m.index(i, j)] += value }

func (m *ComplexMatrix) index(i, j int) int {
	if i < 0 || j < 0 || i >= m.rows || j >= m.cols {
		panic(ErrIndexOutOfRange)
	}
	return i*m.cols + j
}

func (m *ComplexMatrix) Clone() *ComplexMatrix {
	out := NewComplexMatrix(m.rows, m.cols)
	copy(out.data, m.data)
	return out
}

func (m *ComplexMatrix) Plus(other *ComplexMatrix) *ComplexMatrix {
	if m.rows != other.rows || m.cols != other.cols {
		panic(ErrShape)
	}
	out := m.Clone()
	for k, v := range other.data {
		out.data[k] += v
	}
	return out
}

func (m *ComplexMatrix) Times(other *ComplexMatrix) *ComplexMatrix {
	if m.cols != other.rows {
		panic(ErrShape)
	}
	out := NewComplexMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < other.cols; j++ {
				out.data[i*out.cols+j] += a * other.data[k*other.cols+j]
			}
		}
	}
	return out
}

func (m *ComplexMatrix) Scale(f complex128) *ComplexMatrix {
	out := NewComplexMatrix(m.rows, m.cols)
	for k, v := range m.data {
		out.data[k] = v * f
	}
	return out
}

func (m *ComplexMatrix) MulVec(v *ComplexVector) *ComplexVector {
	if m.cols != len(v.data) {
		panic(ErrShape)
	}
	out := NewComplexVector(m.rows)
	for i := 0; i < m.rows; i++ {
		var sum complex128
		for j := 0; j < m.cols; j++ {
			sum += m.data[i*m.cols+j] * v.data[j]
		}
		out.data[i] = sum
	}
	return out
}

// Max returns the element with the largest magnitude.
func (m *ComplexMatrix) Max() complex128 {
	return maxByMagnitude(m.data)
}

// ComplexVector is a dense, zero-initialized complex vector.
type ComplexVector struct {
	data []complex128
}

func NewComplexVector(n int) *ComplexVector {
	return &ComplexVector{data: make([]complex128, n)}
}

func (v *ComplexVector) Len() int { return len(v.data) }

func (v *ComplexVector) At(i int) complex128 { return v.data[i] }

func (v *ComplexVector) Set(i int, value complex128) { v.data[i] = value }

func (v *ComplexVector) Add(i int, value complex128) { v.data[i] += value }

func (v *ComplexVector) Clone() *ComplexVector {
	out := NewComplexVector(len(v.data))
	copy(out.data, v.data)
	return out
}

func (v *ComplexVector) Clear() {
	for i := range v.data {
		v.data[i] = 0
	}
}

func (v *ComplexVector) CopyFrom(src *ComplexVector) {
	if len(v.data) != len(src.data) {
		panic(ErrShape)
	}
	copy(v.data, src.data)
}

func (v *ComplexVector) Plus(other *ComplexVector) *ComplexVector {
	if len(v.data) != len(other.data) {
		panic(ErrShape)
	}
	out := v.Clone()
	for i, x := range other.data {
		out.data[i] += x
	}
	return out
}

func (v *ComplexVector) Scale(f complex128) *ComplexVector {
	out := NewComplexVector(len(v.data))
	for i, x := range v.data {
		out.data[i] = x * f
	}
	return out
}

func (v *ComplexVector) Max() complex128 {
	return maxByMagnitude(v.data)
}

func (v *ComplexVector) IsFinite() bool {
	for _, x := range v.data {
		if cmplx.IsNaN(x) || cmplx.IsInf(x) {
			return false
		}
	}
	return true
}

// Raw returns a copy of the entries.
func (v *ComplexVector) Raw() []complex128 {
	out := make([]complex128, len(v.data))
	copy(out, v.data)
	return out
}

func maxByMagnitude(data []complex128) complex128 {
	var best complex128
	bestAbs := math.Inf(-1)
	for _, x := range data {
		if a := cmplx.Abs(x); a > bestAbs {
			best, bestAbs = x, a
		}
	}
	return best
}
