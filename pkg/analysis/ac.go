package analysis

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/equation"
	"github.com/edp1096/toy-mna/pkg/matrix"
)

// ACPoint is the small-signal solution at one frequency.
type ACPoint struct {
	Freq float64
	X    *matrix.ComplexVector
	Err  error
}

type ACAnalysis struct {
	*BaseAnalysis
	op          *OperatingPoint
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
	eq          *equation.AC
	points      []ACPoint
}

func NewAC(s Settings, pType string, nPoints int, fStart, fStop float64) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: NewBaseAnalysis(s),
		op:           NewOP(s),
		startFreq:    fStart,
		stopFreq:     fStop,
		numPoints:    nPoints,
		pointsType:   strings.ToUpper(pType),
	}
}

func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	freqs, err := Frequencies(ac.pointsType, ac.numPoints, ac.startFreq, ac.stopFreq)
	if err != nil {
		return err
	}
	if err := ac.setCircuit(ckt); err != nil {
		return err
	}
	ac.frequencies = freqs

	// Nonlinear devices are linearized at the DC operating point.
	var opVec *matrix.RealVector
	if !ckt.Linear() {
		if err := ac.op.Setup(ckt); err != nil {
			return fmt.Errorf("operating point setup: %w", err)
		}
		if err := ac.op.Execute(); err != nil {
			return err
		}
		opVec = ac.op.Solution()
	}

	eq, err := equation.GenerateAC(ac.provider, ckt, opVec)
	if err != nil {
		return fmt.Errorf("building AC equation: %w", err)
	}
	ac.eq = eq
	ac.points = nil
	return nil
}

func (ac *ACAnalysis) Execute() error {
	if ac.eq == nil {
		return fmt.Errorf("%w: ac analysis not set up", ErrParameter)
	}

	ac.logger.Info("ac sweep", zap.String("type", ac.pointsType), zap.Int("points", len(ac.frequencies)))
	ac.points = make([]ACPoint, 0, len(ac.frequencies))
	for _, freq := range ac.frequencies {
		ac.dumpSystem("ac system", func() string { return ac.eq.Dump(freq) })

		x, err := ac.eq.Solve(freq)
		if err != nil {
			ac.logger.Warn("ac point failed", zap.Float64("freq", freq), zap.Error(err))
			ac.points = append(ac.points, ACPoint{Freq: freq, Err: fmt.Errorf("f=%g: %w", freq, err)})
			continue
		}
		ac.points = append(ac.points, ACPoint{Freq: freq, X: x})
	}
	return nil
}

// Points returns the results in frequency order.
func (ac *ACAnalysis) Points() []ACPoint { return ac.points }

// OperatingPoint returns the DC solution the circuit was linearized at, or
// nil for linear circuits.
func (ac *ACAnalysis) OperatingPoint() *matrix.RealVector { return ac.op.Solution() }

// Logarithmic reports whether the sweep is spaced per decade or octave.
func (ac *ACAnalysis) Logarithmic() bool { return ac.pointsType != "LIN" }

// Frequencies returns the sweep frequencies. LIN spreads n points evenly
// from start to stop. DEC and OCT place n points per decade or octave
// starting at start and ending at or below stop.
func Frequencies(pType string, n int, fStart, fStop float64) ([]float64, error) {
	if n <= 0 || n > MaxSweepPoints {
		return nil, fmt.Errorf("%w: point count must be in 1..%d, got %d", ErrParameter, MaxSweepPoints, n)
	}
	if fStop < fStart {
		return nil, fmt.Errorf("%w: stop frequency %g below start %g", ErrParameter, fStop, fStart)
	}

	var base float64
	switch strings.ToUpper(pType) {
	case "LIN":
		if fStart < 0 {
			return nil, fmt.Errorf("%w: negative start frequency %g", ErrParameter, fStart)
		}
		if n == 1 || fStop == fStart {
			return []float64{fStart}, nil
		}
		freqs := make([]float64, n)
		step := (fStop - fStart) / float64(n-1)
		for i := range freqs {
			freqs[i] = fStart + float64(i)*step
		}
		return freqs, nil
	case "DEC":
		base = 10
	case "OCT":
		base = 2
	default:
		return nil, fmt.Errorf("%w: unknown sweep type %q", ErrParameter, pType)
	}

	if fStart <= 0 {
		return nil, fmt.Errorf("%w: %s sweep needs a positive start frequency, got %g", ErrParameter, pType, fStart)
	}

	span := math.Log(fStop/fStart) / math.Log(base)
	total, ok := pointCount(span*float64(n) + 1e-9)
	if !ok {
		return nil, fmt.Errorf("%w: %s sweep from %g to %g gives more than %d points", ErrParameter, pType, fStart, fStop, MaxSweepPoints)
	}
	freqs := make([]float64, total)
	for i := range freqs {
		freqs[i] = fStart * math.Pow(base, float64(i)/float64(n))
	}
	return freqs, nil
}
