package solver

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/matrix"
)

var (
	// ErrDiverged is returned by a single Newton attempt that stopped
	// making progress.
	ErrDiverged = errors.New("newton iteration diverged")

	// ErrNotConverged is returned when every continuation restart failed.
	ErrNotConverged = errors.New("did not converge")
)

// System is a nonlinear equation phi(x) = G x + f(x) - alpha*b.
type System interface {
	Size() int
	Provider() matrix.Provider
	Residual(x *matrix.RealVector, alpha float64) *matrix.RealVector
	Jacobian(x *matrix.RealVector) *matrix.RealMatrix
}

// Options are the solver's tunable constants.
type Options struct {
	Threshold            float64 // converged when max|dx| is at or below it
	DivergenceTolerance  int     // non-decreasing steps tolerated in a row
	MaxIterations        int     // per Newton attempt
	ContinuationSteps    int     // ramp increments of the first attempt
	ContinuationAttempts int     // ramps tried before giving up
	ContinuationGrowth   int     // step count multiplier between ramps
}

func DefaultOptions() Options {
	return Options{
		Threshold:            1e-9,
		DivergenceTolerance:  5,
		MaxIterations:        100,
		ContinuationSteps:    10,
		ContinuationAttempts: 5,
		ContinuationGrowth:   2,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.DivergenceTolerance <= 0 {
		o.DivergenceTolerance = d.DivergenceTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.ContinuationSteps <= 0 {
		o.ContinuationSteps = d.ContinuationSteps
	}
	if o.ContinuationAttempts <= 0 {
		o.ContinuationAttempts = d.ContinuationAttempts
	}
	if o.ContinuationGrowth < 2 {
		o.ContinuationGrowth = d.ContinuationGrowth
	}
	return o
}

// Newton runs one Newton-Raphson attempt on sys at source scale alpha,
// starting from x0. x0 is not modified. It returns ErrDiverged when the
// step size stops shrinking, when the iteration cap is reached, when a step
// is not finite or when the Jacobian is singular.
func Newton(sys System, x0 *matrix.RealVector, alpha float64, opts Options, logger *zap.Logger) (*matrix.RealVector, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	x := x0.Clone()
	p := sys.Provider()
	prev := math.Inf(1)
	stalled := 0

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		phi := sys.Residual(x, alpha)
		j := sys.Jacobian(x)

		dx, err := p.SolveReal(j, phi.Scale(-1))
		if err != nil {
			return nil, fmt.Errorf("%w: iteration %d: %w", ErrDiverged, iter, err)
		}
		if !dx.IsFinite() {
			return nil, fmt.Errorf("%w: iteration %d: non-finite step", ErrDiverged, iter)
		}

		x = x.Plus(dx)
		step := dx.MaxAbs()
		logger.Debug("newton iteration",
			zap.Int("iteration", iter),
			zap.Float64("alpha", alpha),
			zap.Float64("maxStep", step))

		if step <= opts.Threshold {
			return x, nil
		}

		if step < prev {
			stalled = 0
		} else {
			stalled++
			if stalled > opts.DivergenceTolerance {
				return nil, fmt.Errorf("%w: step stopped shrinking after %d iterations", ErrDiverged, iter)
			}
		}
		prev = step
	}

	return nil, fmt.Errorf("%w: no convergence in %d iterations", ErrDiverged, opts.MaxIterations)
}
