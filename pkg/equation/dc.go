package equation

import (
	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/matrix"
)

// DC is the MNA system G x + f(x) = b. f is the nonlinear contribution of
// the devices in nonlinear and is empty for linear circuits.
type DC struct {
	provider  matrix.Provider
	size      int
	g         *matrix.RealMatrix
	b         *matrix.RealVector
	nonlinear []*device.Device
}

var _ device.DCStamper = (*DC)(nil)

// NewDC returns a zero system of the given size.
func NewDC(p matrix.Provider, size int) *DC {
	return &DC{
		provider: p,
		size:     size,
		g:        p.RealMatrix(size),
		b:        p.RealVector(size),
	}
}

// GenerateDC assembles the DC system of ckt.
func GenerateDC(p matrix.Provider, ckt Circuit) (*DC, error) {
	if err := checkCircuit(ckt); err != nil {
		return nil, err
	}

	eq := NewDC(p, ckt.Size())
	for _, d := range ckt.Elements() {
		d.ApplyDC(eq)
		if !d.Linear() {
			eq.nonlinear = append(eq.nonlinear, d)
		}
	}
	return eq, nil
}

func (eq *DC) ApplyRealMatrixStamp(i, j int, value float64) {
	if i == device.Ground || j == device.Ground || value == 0 {
		return
	}
	eq.g.Add(i, j, value)
}

func (eq *DC) ApplySourceVectorStamp(i int, value float64) {
	if i == device.Ground || value == 0 {
		return
	}
	eq.b.Add(i, value)
}

func (eq *DC) Size() int { return eq.size }

func (eq *DC) Provider() matrix.Provider { return eq.provider }

// Matrix returns the linear backbone G. Callers must not modify it.
func (eq *DC) Matrix() *matrix.RealMatrix { return eq.g }

// Source returns b. Callers must not modify it.
func (eq *DC) Source() *matrix.RealVector { return eq.b }

func (eq *DC) Linear() bool { return len(eq.nonlinear) == 0 }

// Clone deep-copies the system. Nonlinear devices are shared; they hold no
// per-solve state.
func (eq *DC) Clone() *DC {
	return &DC{
		provider:  eq.provider,
		size:      eq.size,
		g:         eq.g.Clone(),
		b:         eq.b.Clone(),
		nonlinear: append([]*device.Device(nil), eq.nonlinear...),
	}
}

// Solve solves the linear system G x = b. Nonlinear contributions are
// ignored; use the solver package for those circuits.
func (eq *DC) Solve() (*matrix.RealVector, error) {
	return eq.provider.SolveReal(eq.g, eq.b)
}

// Residual returns phi(x) = G x + f(x) - alpha*b.
func (eq *DC) Residual(x *matrix.RealVector, alpha float64) *matrix.RealVector {
	f := eq.provider.RealVector(eq.size)
	for _, d := range eq.nonlinear {
		d.NonLinContribution(f, x)
	}
	return eq.g.MulVec(x).Plus(f).Minus(eq.b.Scale(alpha))
}

// Jacobian returns J(x) = G + df/dx.
func (eq *DC) Jacobian(x *matrix.RealVector) *matrix.RealMatrix {
	j := eq.g.Clone()
	for _, d := range eq.nonlinear {
		d.HessianContribution(j, x)
	}
	return j
}

// String renders the linear system for debug logs.
func (eq *DC) String() string {
	return matrix.FormatSystem(eq.g, eq.b)
}
