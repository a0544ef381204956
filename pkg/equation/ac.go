package equation

import (
	"math"

	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/matrix"
)

// AC is the small-signal system (C + G*2*pi*f) x = b. C holds conductance
// stamps and G the reactive ones.
type AC struct {
	provider matrix.Provider
	size     int
	c        *matrix.RealMatrix
	g        *matrix.ComplexMatrix
	b        *matrix.ComplexVector
}

var _ device.ACStamper = (*AC)(nil)

func NewAC(p matrix.Provider, size int) *AC {
	return &AC{
		provider: p,
		size:     size,
		c:        p.RealMatrix(size),
		g:        p.ComplexMatrix(size),
		b:        p.ComplexVector(size),
	}
}

// GenerateAC assembles the AC system of ckt linearized at the operating
// point op. op may be nil for linear circuits.
func GenerateAC(p matrix.Provider, ckt Circuit, op *matrix.RealVector) (*AC, error) {
	if err := checkCircuit(ckt); err != nil {
		return nil, err
	}

	eq := NewAC(p, ckt.Size())
	for _, d := range ckt.Elements() {
		d.ApplyAC(eq, op)
	}
	return eq, nil
}

func (eq *AC) ApplyRealMatrixStamp(i, j int, value float64) {
	if i == device.Ground || j == device.Ground || value == 0 {
		return
	}
	eq.c.Add(i, j, value)
}

func (eq *AC) ApplyComplexMatrixStamp(i, j int, value float64) {
	if i == device.Ground || j == device.Ground || value == 0 {
		return
	}
	eq.g.Add(i, j, complex(0, value))
}

func (eq *AC) ApplySourceVectorStamp(i int, value complex128) {
	if i == device.Ground || value == 0 {
		return
	}
	eq.b.Add(i, value)
}

func (eq *AC) Size() int { return eq.size }

func (eq *AC) Clone() *AC {
	return &AC{
		provider: eq.provider,
		size:     eq.size,
		c:        eq.c.Clone(),
		g:        eq.g.Clone(),
		b:        eq.b.Clone(),
	}
}

// MatrixAt returns C + G*2*pi*f as a new matrix.
func (eq *AC) MatrixAt(f float64) *matrix.ComplexMatrix {
	omega := 2 * math.Pi * f
	return matrix.ComplexFromReal(eq.c).Plus(eq.g.Scale(complex(omega, 0)))
}

// Solve solves the system at frequency f. It does not modify eq.
func (eq *AC) Solve(f float64) (*matrix.ComplexVector, error) {
	return eq.provider.SolveComplex(eq.MatrixAt(f), eq.b)
}

// Dump renders the system at frequency f for debug logs.
func (eq *AC) Dump(f float64) string {
	return matrix.FormatComplexSystem(eq.MatrixAt(f), eq.b)
}
