package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/equation"
	"github.com/edp1096/toy-mna/pkg/matrix"
	"github.com/edp1096/toy-mna/pkg/solver"
)

type OperatingPoint struct {
	*BaseAnalysis
	eq       *equation.DC
	solution *matrix.RealVector
}

func NewOP(s Settings) *OperatingPoint {
	return &OperatingPoint{BaseAnalysis: NewBaseAnalysis(s)}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	if err := op.setCircuit(ckt); err != nil {
		return err
	}

	eq, err := equation.GenerateDC(op.provider, ckt)
	if err != nil {
		return fmt.Errorf("building DC equation: %w", err)
	}
	op.eq = eq
	op.solution = nil
	op.dumpSystem("operating point system", eq.String)
	return nil
}

func (op *OperatingPoint) Execute() error {
	if op.eq == nil {
		return fmt.Errorf("%w: operating point not set up", ErrParameter)
	}

	op.logger.Info("operating point", zap.Int("size", op.eq.Size()), zap.Bool("linear", op.eq.Linear()))
	x, err := solver.SolveDC(op.eq, nil, op.options, op.logger)
	if err != nil {
		return fmt.Errorf("operating point: %w", err)
	}
	op.solution = x
	return nil
}

// Solution is the raw solution vector, nil before a successful Execute.
func (op *OperatingPoint) Solution() *matrix.RealVector { return op.solution }

// Results labels the solution with V(node) and I(element) names.
func (op *OperatingPoint) Results() map[string]float64 {
	if op.solution == nil {
		return nil
	}
	return op.Circuit.NamedSolution(op.solution)
}
