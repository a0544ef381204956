package equation

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/matrix"
)

func providers() []matrix.Provider {
	return []matrix.Provider{matrix.NewDenseProvider(), matrix.NewSparseProvider()}
}

func divider(t *testing.T) *circuit.Circuit {
	t.Helper()
	ckt := circuit.New("divider")
	require.NoError(t, ckt.Add(device.NewVoltageSource("V1", []string{"1", "0"}, 10, 10)))
	require.NoError(t, ckt.Add(device.NewResistor("R1", []string{"1", "2"}, 1e3)))
	require.NoError(t, ckt.Add(device.NewResistor("R2", []string{"2", "0"}, 1e3)))
	require.NoError(t, ckt.Finalize())
	return ckt
}

func TestGroundStampsAreDropped(t *testing.T) {
	eq := NewDC(matrix.NewDenseProvider(), 2)
	eq.ApplyRealMatrixStamp(device.Ground, 0, 1)
	eq.ApplyRealMatrixStamp(1, device.Ground, 1)
	eq.ApplySourceVectorStamp(device.Ground, 3)

	assert.Equal(t, 0.0, eq.Matrix().Max())
	assert.Equal(t, []float64{0, 0}, eq.Source().Raw())
}

func TestStampsAccumulate(t *testing.T) {
	eq := NewDC(matrix.NewDenseProvider(), 2)
	eq.ApplyRealMatrixStamp(0, 1, 0.5)
	eq.ApplyRealMatrixStamp(0, 1, 0.25)
	eq.ApplySourceVectorStamp(1, 2)
	eq.ApplySourceVectorStamp(1, -0.5)

	assert.Equal(t, 0.75, eq.Matrix().At(0, 1))
	assert.Equal(t, 1.5, eq.Source().At(1))

	ac := NewAC(matrix.NewDenseProvider(), 1)
	ac.ApplyComplexMatrixStamp(0, 0, 1e-6)
	ac.ApplyComplexMatrixStamp(0, 0, 1e-6)
	ac.ApplyComplexMatrixStamp(device.Ground, 0, 1)
	assert.InDelta(t, 2e-6*2*math.Pi, imag(ac.MatrixAt(1).At(0, 0)), 1e-15)
}

func TestGenerateDCDivider(t *testing.T) {
	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			eq, err := GenerateDC(p, divider(t))
			require.NoError(t, err)
			require.True(t, eq.Linear())
			require.Equal(t, 3, eq.Size())

			x, err := eq.Solve()
			require.NoError(t, err)
			assert.InDelta(t, 10.0, x.At(0), 1e-9)
			assert.InDelta(t, 5.0, x.At(1), 1e-9)
			assert.InDelta(t, -5e-3, x.At(2), 1e-12)

			assert.InDelta(t, 0.0, eq.Residual(x, 1).MaxAbs(), 1e-9)
			assert.InDelta(t, 10.0, eq.Residual(x, 0).MaxAbs(), 1e-9)
			assert.Contains(t, eq.String(), "Circuit Equations (3x3):")
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	eq, err := GenerateDC(matrix.NewDenseProvider(), divider(t))
	require.NoError(t, err)

	c := eq.Clone()
	c.ApplySourceVectorStamp(2, 5)
	c.ApplyRealMatrixStamp(1, 1, 1)

	assert.Equal(t, 10.0, eq.Source().At(2))
	assert.Equal(t, 15.0, c.Source().At(2))
	assert.InDelta(t, 2e-3, eq.Matrix().At(1, 1), 1e-15)
}

func TestGenerateRequiresFinalizedCircuit(t *testing.T) {
	ckt := circuit.New("raw")
	require.NoError(t, ckt.Add(device.NewResistor("R1", []string{"1", "0"}, 1)))

	_, err := GenerateDC(matrix.NewDenseProvider(), ckt)
	assert.ErrorIs(t, err, ErrNotFinalized)

	_, err = GenerateAC(matrix.NewDenseProvider(), ckt, nil)
	assert.ErrorIs(t, err, ErrNotFinalized)
}

func TestEmptyCircuitIsStructuralError(t *testing.T) {
	ckt := circuit.New("empty")
	require.NoError(t, ckt.Finalize())

	_, err := GenerateDC(matrix.NewDenseProvider(), ckt)
	assert.ErrorIs(t, err, device.ErrStructural)
}

func TestJacobianAddsDiodeConductance(t *testing.T) {
	ckt := circuit.New("diode")
	require.NoError(t, ckt.Add(device.NewVoltageSource("V1", []string{"1", "0"}, 1, 0)))
	require.NoError(t, ckt.Add(device.NewResistor("R1", []string{"1", "2"}, 1e3)))
	require.NoError(t, ckt.Add(device.NewDiode("D1", []string{"2", "0"}, device.DefaultDiodeModel())))
	require.NoError(t, ckt.Finalize())

	eq, err := GenerateDC(matrix.NewDenseProvider(), ckt)
	require.NoError(t, err)
	require.False(t, eq.Linear())

	x := matrix.RealVectorFrom([]float64{1, 0.6, 0})
	j := eq.Jacobian(x)
	gd := 1e-14 / 0.025 * math.Exp(0.6/0.025)
	assert.InDelta(t, 1e-3+gd, j.At(1, 1), 1e-9)
	assert.InDelta(t, 1e-3, eq.Matrix().At(1, 1), 1e-15, "Jacobian must not touch G")

	id := 1e-14 * (math.Exp(0.6/0.025) - 1)
	r := eq.Residual(x, 1)
	assert.InDelta(t, (0.6-1)/1e3+id, r.At(1), 1e-12)
}

func TestACResistiveMatchesDC(t *testing.T) {
	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			ckt := divider(t)
			ac, err := GenerateAC(p, ckt, nil)
			require.NoError(t, err)

			for _, f := range []float64{1, 1e3, 1e6} {
				x, err := ac.Solve(f)
				require.NoError(t, err)
				assert.InDelta(t, 10.0, real(x.At(0)), 1e-9)
				assert.InDelta(t, 5.0, real(x.At(1)), 1e-9)
				assert.InDelta(t, 0.0, imag(x.At(1)), 1e-12)
			}
		})
	}
}

func TestACLowPassCorner(t *testing.T) {
	ckt := circuit.New("rc")
	require.NoError(t, ckt.Add(device.NewVoltageSource("V1", []string{"in", "0"}, 0, 1)))
	require.NoError(t, ckt.Add(device.NewResistor("R1", []string{"in", "out"}, 1e3)))
	require.NoError(t, ckt.Add(device.NewCapacitor("C1", []string{"out", "0"}, 1e-6)))
	require.NoError(t, ckt.Finalize())

	for _, p := range providers() {
		t.Run(p.Name(), func(t *testing.T) {
			ac, err := GenerateAC(p, ckt, nil)
			require.NoError(t, err)

			fc := 1 / (2 * math.Pi * 1e3 * 1e-6)
			x, err := ac.Solve(fc)
			require.NoError(t, err)

			out := x.At(1)
			assert.InDelta(t, 1/math.Sqrt2, cmplx.Abs(out), 1e-9)
			assert.InDelta(t, -45.0, cmplx.Phase(out)*180/math.Pi, 1e-6)

			clone := ac.Clone()
			clone.ApplySourceVectorStamp(0, 1)
			again, err := ac.Solve(fc)
			require.NoError(t, err)
			assert.InDelta(t, cmplx.Abs(out), cmplx.Abs(again.At(1)), 1e-12)
			assert.Contains(t, ac.Dump(fc), "Equation 0:")
		})
	}
}
