package analysis

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/equation"
	"github.com/edp1096/toy-mna/pkg/matrix"
	"github.com/edp1096/toy-mna/pkg/solver"
)

// SweepSource is one swept independent source.
type SweepSource struct {
	Name  string
	Start float64
	Stop  float64
	Step  float64
}

// Values returns start + k*step for every k that stays at or below stop.
func (s SweepSource) Values() ([]float64, error) {
	if s.Step <= 0 || math.IsNaN(s.Step) {
		return nil, fmt.Errorf("%w: %s: step must be positive, got %g", ErrParameter, s.Name, s.Step)
	}
	if s.Stop <= s.Start {
		return nil, fmt.Errorf("%w: %s: stop %g must be greater than start %g", ErrParameter, s.Name, s.Stop, s.Start)
	}

	n, ok := pointCount((s.Stop-s.Start)/s.Step + 1e-9)
	if !ok {
		return nil, fmt.Errorf("%w: %s: step %g gives more than %d points", ErrParameter, s.Name, s.Step, MaxSweepPoints)
	}
	values := make([]float64, n)
	for k := range values {
		values[k] = s.Start + float64(k)*s.Step
	}
	return values, nil
}

// DCPoint is one sweep point. Values holds one entry per swept source in
// sweep order. Err is set instead of X when the point failed.
type DCPoint struct {
	Values []float64
	X      *matrix.RealVector
	Err    error
}

type DCSweep struct {
	*BaseAnalysis
	sweeps    []SweepSource
	sweepVals [][]float64
	sources   []*device.Device
	base      *equation.DC
	points    []DCPoint
}

// NewDCSweep sweeps one source, or two with the first as the outer loop.
func NewDCSweep(s Settings, sweeps ...SweepSource) *DCSweep {
	return &DCSweep{
		BaseAnalysis: NewBaseAnalysis(s),
		sweeps:       sweeps,
	}
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	if len(dc.sweeps) == 0 || len(dc.sweeps) > 2 {
		return fmt.Errorf("%w: unsupported number of sweep sources: %d", ErrParameter, len(dc.sweeps))
	}
	if len(dc.sweeps) == 2 && dc.sweeps[0].Name == dc.sweeps[1].Name {
		return fmt.Errorf("%w: %s swept twice", ErrParameter, dc.sweeps[0].Name)
	}
	if err := dc.setCircuit(ckt); err != nil {
		return err
	}

	dc.sweepVals = make([][]float64, len(dc.sweeps))
	dc.sources = make([]*device.Device, len(dc.sweeps))
	for i, sw := range dc.sweeps {
		values, err := sw.Values()
		if err != nil {
			return err
		}
		src, err := ckt.Source(sw.Name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParameter, err)
		}
		dc.sweepVals[i] = values
		dc.sources[i] = src
	}
	if len(dc.sweepVals) == 2 && len(dc.sweepVals[0]) > MaxSweepPoints/len(dc.sweepVals[1]) {
		return fmt.Errorf("%w: nested sweep gives more than %d points", ErrParameter, MaxSweepPoints)
	}

	// The base system carries every excitation except the swept ones; each
	// point stamps those on a clone.
	orig := make([]float64, len(dc.sources))
	for i, src := range dc.sources {
		orig[i] = src.DC
		src.DC = 0
	}
	base, err := equation.GenerateDC(dc.provider, ckt)
	for i, src := range dc.sources {
		src.DC = orig[i]
	}
	if err != nil {
		return fmt.Errorf("building DC equation: %w", err)
	}

	dc.base = base
	dc.points = nil
	dc.dumpSystem("dc sweep base system", base.String)
	return nil
}

func (dc *DCSweep) Execute() error {
	if dc.base == nil {
		return fmt.Errorf("%w: dc sweep not set up", ErrParameter)
	}

	dc.points = dc.points[:0]
	dc.logger.Info("dc sweep", zap.String("source", dc.sweeps[0].Name), zap.Int("sources", len(dc.sweeps)))

	var guess *matrix.RealVector
	if len(dc.sweeps) == 1 {
		for _, v := range dc.sweepVals[0] {
			guess = dc.solvePoint([]float64{v}, guess)
		}
	} else {
		for _, v1 := range dc.sweepVals[0] {
			for _, v2 := range dc.sweepVals[1] {
				guess = dc.solvePoint([]float64{v1, v2}, guess)
			}
		}
	}

	failed := 0
	for _, p := range dc.points {
		if p.Err != nil {
			failed++
		}
	}
	dc.logger.Info("dc sweep done", zap.Int("points", len(dc.points)), zap.Int("failed", failed))
	return nil
}

// solvePoint solves one point and returns the guess for the next: the new
// solution, or the old guess when this point failed.
func (dc *DCSweep) solvePoint(values []float64, guess *matrix.RealVector) *matrix.RealVector {
	eq := dc.base.Clone()
	for i, src := range dc.sources {
		src.StampExcitation(eq, values[i])
	}

	x, err := solver.SolveDC(eq, guess, dc.options, dc.logger)
	if err != nil {
		dc.logger.Warn("dc sweep point failed", zap.Float64s("values", values), zap.Error(err))
		dc.points = append(dc.points, DCPoint{Values: values, Err: err})
		return guess
	}

	dc.points = append(dc.points, DCPoint{Values: values, X: x})
	return x
}

// Points returns the sweep results in sweep order.
func (dc *DCSweep) Points() []DCPoint { return dc.points }

// Sources returns the swept source definitions.
func (dc *DCSweep) Sources() []SweepSource { return dc.sweeps }
