package device

import (
	"fmt"

	"github.com/edp1096/toy-mna/pkg/matrix"
)

// Ground is the matrix index of the reference node. Stamps to it are dropped.
const Ground = -1

type Kind int

const (
	Resistor Kind = iota
	Capacitor
	Inductor
	VoltageSource
	CurrentSource
	VCVS // E
	VCCS // G
	CCCS // F
	CCVS // H
	Diode
	Subcircuit
)

var kindLetters = [...]string{
	Resistor:      "R",
	Capacitor:     "C",
	Inductor:      "L",
	VoltageSource: "V",
	CurrentSource: "I",
	VCVS:          "E",
	VCCS:          "G",
	CCCS:          "F",
	CCVS:          "H",
	Diode:         "D",
	Subcircuit:    "X",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindLetters) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindLetters[k]
}

// terminals is the number of node names each kind takes. Subcircuits take
// as many as their template exposes.
func (k Kind) terminals() int {
	switch k {
	case VCVS, VCCS:
		return 4
	case Subcircuit:
		return -1
	default:
		return 2
	}
}

// DCStamper receives DC stamps. Implementations drop stamps to Ground.
type DCStamper interface {
	ApplyRealMatrixStamp(i, j int, value float64)
	ApplySourceVectorStamp(i int, value float64)
}

// ACStamper receives AC stamps. ApplyComplexMatrixStamp adds an imaginary
// contribution that is later scaled by the angular frequency.
type ACStamper interface {
	ApplyRealMatrixStamp(i, j int, value float64)
	ApplyComplexMatrixStamp(i, j int, value float64)
	ApplySourceVectorStamp(i int, value complex128)
}

// Device is one circuit element. Only the fields its Kind uses are set.
type Device struct {
	Kind      Kind
	Name      string
	NodeNames []string
	Nodes     []int

	// Value is resistance, capacitance, inductance or the gain of a
	// controlled source.
	Value float64

	// DC and AC excitation of independent sources.
	DC float64
	AC complex128

	// Ref names the voltage source whose branch current controls an F or H
	// element. It is resolved to refIdx, a position in the owning
	// collection, never to a pointer.
	Ref    string
	refIdx int
	refVar int

	Model DiodeModel

	// firstVar is the first extra variable index, -1 when unassigned.
	firstVar int

	Sub *Instance
}

func newDevice(kind Kind, name string, nodeNames []string) *Device {
	return &Device{
		Kind:      kind,
		Name:      name,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
		refIdx:    -1,
		refVar:    Ground,
		firstVar:  Ground,
	}
}

func (d *Device) GetName() string { return d.Name }

func (d *Device) GetType() string { return d.Kind.String() }

// Linear reports whether the device stamps only constant coefficients.
func (d *Device) Linear() bool {
	switch d.Kind {
	case Diode:
		return false
	case Subcircuit:
		return d.Sub == nil || d.Sub.template.Linear()
	default:
		return true
	}
}

// ExtraVars is the number of unknowns the device adds beyond node voltages.
func (d *Device) ExtraVars() int {
	switch d.Kind {
	case VoltageSource, Inductor, VCVS, CCVS:
		return 1
	case Subcircuit:
		if d.Sub == nil {
			return 0
		}
		return d.Sub.template.ExtraVars()
	default:
		return 0
	}
}

// FirstVar returns the first extra variable index, or Ground when the
// device has none.
func (d *Device) FirstVar() int { return d.firstVar }

// SetFirstVarIndex assigns the device's extra variables starting at start
// and returns the next free index. For subcircuits this allocates the
// internal node block and expands the instance.
func (d *Device) SetFirstVarIndex(start int) (int, error) {
	if d.Kind == Subcircuit {
		if d.Sub == nil {
			return start, fmt.Errorf("%w: subcircuit %s has no template", ErrStructural, d.Name)
		}
		return d.Sub.SetFirstVarIndex(d.Nodes, start)
	}

	if d.ExtraVars() == 0 {
		d.firstVar = Ground
		return start, nil
	}
	d.firstVar = start
	return start + d.ExtraVars(), nil
}

// buildCopy returns a renamed copy carrying the same parameters. Nodes and
// variables are left for the caller to remap.
func (d *Device) buildCopy(name string) *Device {
	c := newDevice(d.Kind, name, append([]string(nil), d.NodeNames...))
	copy(c.Nodes, d.Nodes)
	c.Value = d.Value
	c.DC = d.DC
	c.AC = d.AC
	c.Ref = d.Ref
	c.Model = d.Model
	if d.Sub != nil {
		c.Sub = newInstance(name, d.Sub.template)
	}
	return c
}

// ApplyDC stamps the device's DC contribution.
func (d *Device) ApplyDC(eq DCStamper) {
	switch d.Kind {
	case Resistor:
		stampConductance(eq, d.Nodes[0], d.Nodes[1], 1/d.Value)
	case Capacitor:
		// open circuit
	case Inductor:
		stampBranch(eq, d.Nodes[0], d.Nodes[1], d.firstVar)
	case VoltageSource:
		stampBranch(eq, d.Nodes[0], d.Nodes[1], d.firstVar)
		eq.ApplySourceVectorStamp(d.firstVar, d.DC)
	case CurrentSource:
		eq.ApplySourceVectorStamp(d.Nodes[0], d.DC)
		eq.ApplySourceVectorStamp(d.Nodes[1], -d.DC)
	case VCVS, VCCS, CCCS, CCVS:
		stampControlled(eq, d)
	case Diode:
		// nonlinear part only
	case Subcircuit:
		for _, e := range d.Sub.Elements() {
			e.ApplyDC(eq)
		}
	}
}

// ApplyAC stamps the small-signal contribution. op is the DC operating
// point used to linearize nonlinear devices; nil means all-zero.
func (d *Device) ApplyAC(eq ACStamper, op *matrix.RealVector) {
	switch d.Kind {
	case Resistor:
		stampConductance(eq, d.Nodes[0], d.Nodes[1], 1/d.Value)
	case Capacitor:
		stampReactance(eq, d.Nodes[0], d.Nodes[1], d.Value)
	case Inductor:
		stampBranch(eq, d.Nodes[0], d.Nodes[1], d.firstVar)
		eq.ApplyComplexMatrixStamp(d.firstVar, d.firstVar, -d.Value)
	case VoltageSource:
		stampBranch(eq, d.Nodes[0], d.Nodes[1], d.firstVar)
		eq.ApplySourceVectorStamp(d.firstVar, d.AC)
	case CurrentSource:
		eq.ApplySourceVectorStamp(d.Nodes[0], d.AC)
		eq.ApplySourceVectorStamp(d.Nodes[1], -d.AC)
	case VCVS, VCCS, CCCS, CCVS:
		stampControlled(eq, d)
	case Diode:
		stampConductance(eq, d.Nodes[0], d.Nodes[1], d.Model.conductance(voltageAcross(op, d.Nodes[0], d.Nodes[1])))
	case Subcircuit:
		for _, e := range d.Sub.Elements() {
			e.ApplyAC(eq, op)
		}
	}
}

// NonLinContribution adds the device current at state x into f.
func (d *Device) NonLinContribution(f, x *matrix.RealVector) {
	switch d.Kind {
	case Diode:
		i := d.Model.current(voltageAcross(x, d.Nodes[0], d.Nodes[1]))
		addVector(f, d.Nodes[0], i)
		addVector(f, d.Nodes[1], -i)
	case Subcircuit:
		for _, e := range d.Sub.Elements() {
			e.NonLinContribution(f, x)
		}
	}
}

// HessianContribution adds df/dx at state x into j.
func (d *Device) HessianContribution(j *matrix.RealMatrix, x *matrix.RealVector) {
	switch d.Kind {
	case Diode:
		g := d.Model.conductance(voltageAcross(x, d.Nodes[0], d.Nodes[1]))
		a, b := d.Nodes[0], d.Nodes[1]
		addMatrix(j, a, a, g)
		addMatrix(j, a, b, -g)
		addMatrix(j, b, a, -g)
		addMatrix(j, b, b, g)
	case Subcircuit:
		for _, e := range d.Sub.Elements() {
			e.HessianContribution(j, x)
		}
	}
}

func (d *Device) String() string {
	return fmt.Sprintf("%s %s %v", d.Kind, d.Name, d.Nodes)
}

func voltageAcross(x *matrix.RealVector, a, b int) float64 {
	if x == nil {
		return 0
	}
	v := 0.0
	if a != Ground {
		v += x.At(a)
	}
	if b != Ground {
		v -= x.At(b)
	}
	return v
}

func addVector(v *matrix.RealVector, i int, value float64) {
	if i == Ground || value == 0 {
		return
	}
	v.Add(i, value)
}

func addMatrix(m *matrix.RealMatrix, i, j int, value float64) {
	if i == Ground || j == Ground || value == 0 {
		return
	}
	m.Add(i, j, value)
}
