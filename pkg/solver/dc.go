package solver

import (
	"errors"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/matrix"
)

// Equation is a DC system that can also be solved directly when it has no
// nonlinear part.
type Equation interface {
	System
	Linear() bool
	Solve() (*matrix.RealVector, error)
}

// SolveDC solves eq at full source strength. Linear systems go straight to
// the linear solve. Nonlinear ones get a plain Newton attempt from x0 and
// fall back to continuation from zero when it diverges. A nil x0 starts
// from zero.
func SolveDC(eq Equation, x0 *matrix.RealVector, opts Options, logger *zap.Logger) (*matrix.RealVector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eq.Linear() {
		return eq.Solve()
	}
	if x0 == nil {
		x0 = eq.Provider().RealVector(eq.Size())
	}

	x, err := Newton(eq, x0, 1, opts, logger)
	if err == nil {
		return x, nil
	}
	if !errors.Is(err, ErrDiverged) {
		return nil, err
	}

	logger.Warn("newton diverged, trying continuation", zap.Error(err))
	return Continuation(eq, opts, logger)
}
