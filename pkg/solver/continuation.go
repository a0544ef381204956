package solver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/matrix"
)

// Continuation ramps the source scale alpha from 1/steps to 1, running a
// Newton solve at each increment from the previous solution. Every ramp
// starts from the zero vector, the solution at alpha = 0. A diverged
// increment restarts the ramp with steps multiplied by the growth factor.
// ErrNotConverged is returned after the last attempt fails.
func Continuation(sys System, opts Options, logger *zap.Logger) (*matrix.RealVector, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	steps := opts.ContinuationSteps
	var lastErr error

	for attempt := 1; attempt <= opts.ContinuationAttempts; attempt++ {
		x, err := ramp(sys, sys.Provider().RealVector(sys.Size()), steps, opts, logger)
		if err == nil {
			logger.Debug("continuation converged", zap.Int("attempt", attempt), zap.Int("steps", steps))
			return x, nil
		}
		if !errors.Is(err, ErrDiverged) {
			return nil, err
		}

		lastErr = err
		logger.Warn("continuation ramp diverged, restarting",
			zap.Int("attempt", attempt),
			zap.Int("steps", steps),
			zap.Error(err))
		steps *= opts.ContinuationGrowth
	}

	return nil, fmt.Errorf("%w after %d continuation attempts: %w", ErrNotConverged, opts.ContinuationAttempts, lastErr)
}

func ramp(sys System, x0 *matrix.RealVector, steps int, opts Options, logger *zap.Logger) (*matrix.RealVector, error) {
	x := x0
	for k := 1; k <= steps; k++ {
		alpha := float64(k) / float64(steps)
		next, err := Newton(sys, x, alpha, opts, logger)
		if err != nil {
			return nil, fmt.Errorf("alpha %g: %w", alpha, err)
		}
		x = next
	}
	return x, nil
}
