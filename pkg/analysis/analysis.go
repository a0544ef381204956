package analysis

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/matrix"
	"github.com/edp1096/toy-mna/pkg/solver"
)

// ErrParameter is returned by Setup for sweep parameters that cannot
// produce a point list.
var ErrParameter = errors.New("invalid analysis parameter")

// MaxSweepPoints bounds the points of one sweep, nested DC sweeps included.
const MaxSweepPoints = 1_000_000

// pointCount returns floor(span) + 1 when it is finite and within
// MaxSweepPoints.
func pointCount(span float64) (int, bool) {
	if math.IsNaN(span) || math.IsInf(span, 0) || span < 0 || span >= MaxSweepPoints {
		return 0, false
	}
	return int(math.Floor(span)) + 1, true
}

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
}

// Settings are shared by every analysis. Zero values select the sparse
// backend, the default solver options and a no-op logger.
type Settings struct {
	Provider matrix.Provider
	Solver   solver.Options
	Logger   *zap.Logger
}

type BaseAnalysis struct {
	Circuit  *circuit.Circuit
	provider matrix.Provider
	options  solver.Options
	logger   *zap.Logger
}

func NewBaseAnalysis(s Settings) *BaseAnalysis {
	ba := &BaseAnalysis{
		provider: s.Provider,
		options:  s.Solver,
		logger:   s.Logger,
	}
	if ba.provider == nil {
		ba.provider = matrix.NewSparseProvider()
	}
	if ba.logger == nil {
		ba.logger = zap.NewNop()
	}
	return ba
}

func (a *BaseAnalysis) setCircuit(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("%w: circuit not set", ErrParameter)
	}
	if !ckt.Finalized() {
		if err := ckt.Finalize(); err != nil {
			return err
		}
	}
	a.Circuit = ckt
	return nil
}

func (a *BaseAnalysis) Provider() matrix.Provider { return a.provider }

// dumpSystem logs an assembled system when debug logging is on.
func (a *BaseAnalysis) dumpSystem(msg string, render func() string) {
	if ce := a.logger.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(zap.String("system", render()))
	}
}
