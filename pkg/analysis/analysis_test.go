package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/matrix"
	"github.com/edp1096/toy-mna/pkg/netlist"
	"github.com/edp1096/toy-mna/pkg/solver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func build(t *testing.T, src string) *circuit.Circuit {
	t.Helper()
	data, err := netlist.Parse(src)
	require.NoError(t, err)
	ckt, err := circuit.Build(data)
	require.NoError(t, err)
	return ckt
}

func settings(t *testing.T) Settings {
	return Settings{Provider: matrix.NewDenseProvider(), Logger: zaptest.NewLogger(t)}
}

const divider = `divider
V1 1 0 DC 10 AC 10
R1 1 2 1k
R2 2 0 1k
`

const diode = `diode
V1 1 0 DC 5 AC 1
R1 1 2 1k
D1 2 0
`

func TestOperatingPointDivider(t *testing.T) {
	for _, p := range []matrix.Provider{matrix.NewDenseProvider(), matrix.NewSparseProvider()} {
		t.Run(p.Name(), func(t *testing.T) {
			op := NewOP(Settings{Provider: p})
			require.NoError(t, op.Setup(build(t, divider)))
			require.NoError(t, op.Execute())

			res := op.Results()
			assert.InDelta(t, 10.0, res["V(1)"], 1e-9)
			assert.InDelta(t, 5.0, res["V(2)"], 1e-9)
			assert.InDelta(t, -5e-3, res["I(V1)"], 1e-12)
		})
	}
}

func TestOperatingPointDiode(t *testing.T) {
	op := NewOP(settings(t))
	require.NoError(t, op.Setup(build(t, diode)))
	require.NoError(t, op.Execute())

	vd := op.Solution().At(1)
	id := 1e-14 * (math.Exp(vd/0.025) - 1)
	assert.InDelta(t, (5-vd)/1e3, id, 1e-9)
	assert.InDelta(t, 0.67, vd, 0.01)
}

func TestExecuteBeforeSetup(t *testing.T) {
	assert.ErrorIs(t, NewOP(Settings{}).Execute(), ErrParameter)
	assert.ErrorIs(t, NewDCSweep(Settings{}).Execute(), ErrParameter)
	assert.ErrorIs(t, NewAC(Settings{}, "LIN", 1, 1, 1).Execute(), ErrParameter)
}

func TestSweepValues(t *testing.T) {
	values, err := SweepSource{Name: "V1", Start: 0, Stop: 1, Step: 0.1}.Values()
	require.NoError(t, err)
	require.Len(t, values, 11)
	assert.InDelta(t, 1.0, values[10], 1e-12)

	values, err = SweepSource{Name: "V1", Start: 0, Stop: 1, Step: 0.3}.Values()
	require.NoError(t, err)
	assert.Len(t, values, 4)
}

func TestDCSweepSingle(t *testing.T) {
	ckt := build(t, divider)
	dc := NewDCSweep(settings(t), SweepSource{Name: "V1", Start: 0, Stop: 10, Step: 1})
	require.NoError(t, dc.Setup(ckt))
	require.NoError(t, dc.Execute())

	points := dc.Points()
	require.Len(t, points, 11)
	for k, p := range points {
		require.NoError(t, p.Err)
		assert.Equal(t, []float64{float64(k)}, p.Values)
		assert.InDelta(t, float64(k)/2, p.X.At(1), 1e-9)
	}

	src, err := ckt.Source("V1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, src.DC, "sweep must not change the source")
}

func TestDCSweepCurrentSource(t *testing.T) {
	ckt := build(t, "isrc\nI1 1 0 DC 1m\nR1 1 0 1k\n")
	dc := NewDCSweep(settings(t), SweepSource{Name: "I1", Start: 0, Stop: 2e-3, Step: 1e-3})
	require.NoError(t, dc.Setup(ckt))
	require.NoError(t, dc.Execute())

	require.Len(t, dc.Points(), 3)
	assert.InDelta(t, 2.0, dc.Points()[2].X.At(0), 1e-9)
}

func TestDCSweepNested(t *testing.T) {
	ckt := build(t, `sum
V1 1 0 0
V2 2 0 0
R1 1 3 1k
R2 2 3 1k
R3 3 0 1k
`)
	dc := NewDCSweep(settings(t),
		SweepSource{Name: "V1", Start: 0, Stop: 1, Step: 1},
		SweepSource{Name: "V2", Start: 0, Stop: 2, Step: 1},
	)
	require.NoError(t, dc.Setup(ckt))
	require.NoError(t, dc.Execute())

	v3, err := ckt.NodeIndex("3")
	require.NoError(t, err)

	var got [][]float64
	for _, p := range dc.Points() {
		require.NoError(t, p.Err)
		got = append(got, p.Values)
		assert.InDelta(t, (p.Values[0]+p.Values[1])/3, p.X.At(v3), 1e-9)
	}
	assert.Equal(t, [][]float64{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, got)
}

func TestDCSweepDiode(t *testing.T) {
	dc := NewDCSweep(settings(t), SweepSource{Name: "V1", Start: 0, Stop: 5, Step: 0.5})
	require.NoError(t, dc.Setup(build(t, diode)))
	require.NoError(t, dc.Execute())

	for _, p := range dc.Points() {
		require.NoError(t, p.Err)
		vd := p.X.At(1)
		id := 1e-14 * (math.Exp(vd/0.025) - 1)
		assert.InDelta(t, (p.Values[0]-vd)/1e3, id, 1e-9)
	}
}

// The 0 V solution is a start from which plain Newton diverges at 25 V.
func TestDCSweepDiodeWideSteps(t *testing.T) {
	dc := NewDCSweep(settings(t), SweepSource{Name: "V1", Start: -50, Stop: 50, Step: 25})
	require.NoError(t, dc.Setup(build(t, diode)))
	require.NoError(t, dc.Execute())

	require.Len(t, dc.Points(), 5)
	for _, p := range dc.Points() {
		require.NoError(t, p.Err, "V1=%g", p.Values[0])
		vd := p.X.At(1)
		id := 1e-14 * (math.Exp(vd/0.025) - 1)
		assert.InDelta(t, (p.Values[0]-vd)/1e3, id, 1e-9)
	}
}

func TestDCSweepRecordsFailedPoints(t *testing.T) {
	s := settings(t)
	s.Solver = solver.Options{MaxIterations: 2, ContinuationAttempts: 1}

	dc := NewDCSweep(s, SweepSource{Name: "V1", Start: 0, Stop: 5, Step: 2.5})
	require.NoError(t, dc.Setup(build(t, diode)))
	require.NoError(t, dc.Execute())

	points := dc.Points()
	require.Len(t, points, 3)
	assert.NoError(t, points[0].Err)
	for _, p := range points[1:] {
		assert.ErrorIs(t, p.Err, solver.ErrNotConverged)
		assert.Nil(t, p.X)
	}
}

func TestDCSweepParameterErrors(t *testing.T) {
	tests := map[string][]SweepSource{
		"none":          nil,
		"zero step":     {{Name: "V1", Start: 0, Stop: 1, Step: 0}},
		"negative step": {{Name: "V1", Start: 0, Stop: 1, Step: -1}},
		"stop <= start": {{Name: "V1", Start: 1, Stop: 1, Step: 1}},
		"unknown":       {{Name: "V9", Start: 0, Stop: 1, Step: 1}},
		"tiny step":     {{Name: "V1", Start: 0, Stop: 1, Step: 1e-20}},
		"not a source":  {{Name: "R1", Start: 0, Stop: 1, Step: 1}},
		"twice":         {{Name: "V1", Start: 0, Stop: 1, Step: 1}, {Name: "V1", Start: 0, Stop: 1, Step: 1}},
		"three": {
			{Name: "V1", Start: 0, Stop: 1, Step: 1},
			{Name: "V1", Start: 0, Stop: 1, Step: 1},
			{Name: "V1", Start: 0, Stop: 1, Step: 1},
		},
	}
	for name, sweeps := range tests {
		t.Run(name, func(t *testing.T) {
			err := NewDCSweep(Settings{}, sweeps...).Setup(build(t, divider))
			assert.ErrorIs(t, err, ErrParameter)
		})
	}
}

func TestDCSweepNestedPointLimit(t *testing.T) {
	ckt := build(t, "sum\nV1 1 0 0\nV2 2 0 0\nR1 1 3 1k\nR2 2 3 1k\nR3 3 0 1k\n")
	dc := NewDCSweep(Settings{},
		SweepSource{Name: "V1", Start: 0, Stop: 1, Step: 1e-4},
		SweepSource{Name: "V2", Start: 0, Stop: 1, Step: 1e-4},
	)
	assert.ErrorIs(t, dc.Setup(ckt), ErrParameter)
}

func TestFrequencies(t *testing.T) {
	dec, err := Frequencies("DEC", 10, 1, 1e3)
	require.NoError(t, err)
	require.Len(t, dec, 31)
	assert.InDelta(t, 10.0, dec[10], 1e-9)
	assert.InDelta(t, 1e3, dec[30], 1e-6)

	oct, err := Frequencies("oct", 1, 1, 8)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 4, 8}, oct, 1e-12)

	lin, err := Frequencies("LIN", 5, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 25, 50, 75, 100}, lin)

	single, err := Frequencies("LIN", 1, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{50}, single)

	bad := []struct {
		typ        string
		n          int
		start, end float64
	}{
		{"DEC", 0, 1, 10},
		{"DEC", 10, 0, 10},
		{"OCT", 10, -1, 10},
		{"LIN", 10, 10, 1},
		{"LOG", 10, 1, 10},
	}
	for _, b := range bad {
		_, err := Frequencies(b.typ, b.n, b.start, b.end)
		assert.ErrorIs(t, err, ErrParameter, "%+v", b)
	}
}

func TestACResistiveEqualsDC(t *testing.T) {
	ckt := build(t, divider)

	op := NewOP(settings(t))
	require.NoError(t, op.Setup(ckt))
	require.NoError(t, op.Execute())

	for _, p := range []matrix.Provider{matrix.NewDenseProvider(), matrix.NewSparseProvider()} {
		t.Run(p.Name(), func(t *testing.T) {
			ac := NewAC(Settings{Provider: p}, "DEC", 5, 1, 1e6)
			require.NoError(t, ac.Setup(ckt))
			require.NoError(t, ac.Execute())
			assert.Nil(t, ac.OperatingPoint())
			assert.True(t, ac.Logarithmic())

			require.Len(t, ac.Points(), 31)
			for _, pt := range ac.Points() {
				require.NoError(t, pt.Err)
				for i := 0; i < ckt.Size(); i++ {
					assert.InDelta(t, op.Solution().At(i), real(pt.X.At(i)), 1e-9)
					assert.InDelta(t, 0.0, imag(pt.X.At(i)), 1e-9)
				}
			}
		})
	}
}

func TestACDiodeSmallSignal(t *testing.T) {
	ac := NewAC(settings(t), "LIN", 3, 10, 1e3)
	require.NoError(t, ac.Setup(build(t, diode)))
	require.NoError(t, ac.Execute())

	opVec := ac.OperatingPoint()
	require.NotNil(t, opVec)
	gd := 1e-14 / 0.025 * math.Exp(opVec.At(1)/0.025)
	want := 1 / (1 + 1e3*gd)

	for _, pt := range ac.Points() {
		require.NoError(t, pt.Err)
		assert.InDelta(t, want, real(pt.X.At(1)), 1e-9)
	}
}

func TestACParameterErrors(t *testing.T) {
	err := NewAC(Settings{}, "DEC", 10, 0, 1e3).Setup(build(t, divider))
	assert.ErrorIs(t, err, ErrParameter)

	err = NewAC(Settings{}, "LIN", 0, 1, 1e3).Setup(build(t, divider))
	assert.ErrorIs(t, err, ErrParameter)

	err = NewAC(Settings{}, "DEC", math.MaxInt64/2, 1, 1e6).Setup(build(t, divider))
	assert.ErrorIs(t, err, ErrParameter)

	err = NewAC(Settings{}, "LIN", math.MaxInt64/2, 1, 1e6).Setup(build(t, divider))
	assert.ErrorIs(t, err, ErrParameter)

	err = NewAC(Settings{}, "DEC", 10000, 1e-300, 1e300).Setup(build(t, divider))
	assert.ErrorIs(t, err, ErrParameter)
}

func TestSetupFinalizesCircuit(t *testing.T) {
	ckt := circuit.New("manual")
	require.NoError(t, ckt.Add(device.NewVoltageSource("V1", []string{"1", "0"}, 2, 0)))
	require.NoError(t, ckt.Add(device.NewResistor("R1", []string{"1", "0"}, 2)))

	op := NewOP(settings(t))
	require.NoError(t, op.Setup(ckt))
	require.NoError(t, op.Execute())
	assert.InDelta(t, -1.0, op.Results()["I(V1)"], 1e-12)
}
