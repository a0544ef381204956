package output

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"regexp"
	"strings"

	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/device"
)

// ErrProbe marks a probe that cannot be parsed or bound to the circuit.
var ErrProbe = errors.New("invalid probe")

// Form selects how a complex result is displayed.
type Form int

const (
	FormDefault Form = iota // real part for DC, magnitude for AC
	FormReal
	FormImag
	FormMag
	FormPhase // degrees
	FormDB    // 20*log10(|x|)
)

var formSuffix = map[string]Form{
	"":   FormDefault,
	"R":  FormReal,
	"I":  FormImag,
	"M":  FormMag,
	"P":  FormPhase,
	"DB": FormDB,
}

var probeRe = regexp.MustCompile(`(?i)^([VI])(DB|R|I|M|P)?\(\s*([^,()\s]+)\s*(?:,\s*([^,()\s]+)\s*)?\)$`)

// Probe is one .PRINT item such as V(2), VDB(out,in) or IP(V1).
type Probe struct {
	Label    string
	Quantity byte // 'V' or 'I'
	Form     Form
	Args     []string
}

func ParseProbe(s string) (Probe, error) {
	m := probeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Probe{}, fmt.Errorf("%w: %q", ErrProbe, s)
	}

	p := Probe{
		Label:    s,
		Quantity: strings.ToUpper(m[1])[0],
		Form:     formSuffix[strings.ToUpper(m[2])],
		Args:     []string{m[3]},
	}
	if m[4] != "" {
		if p.Quantity == 'I' {
			return Probe{}, fmt.Errorf("%w: %q: current probes take one element", ErrProbe, s)
		}
		p.Args = append(p.Args, m[4])
	}
	return p, nil
}

func ParseProbes(items []string) ([]Probe, error) {
	probes := make([]Probe, 0, len(items))
	for _, s := range items {
		p, err := ParseProbe(s)
		if err != nil {
			return nil, err
		}
		probes = append(probes, p)
	}
	return probes, nil
}

// DefaultProbes lists every unknown of the circuit in index order.
func DefaultProbes(ckt *circuit.Circuit) []Probe {
	var probes []Probe
	for _, label := range ckt.Unknowns() {
		if label == "" {
			continue
		}
		p, err := ParseProbe(label)
		if err != nil {
			continue
		}
		probes = append(probes, p)
	}
	return probes
}

// Binding is a probe resolved to solution indices:
// value = (x[pos] - x[neg]) * scale, with Ground reading as zero.
type Binding struct {
	Probe
	pos, neg int
	scale    float64
}

// Bind resolves the probe against ckt. Currents of voltage sources,
// inductors and E/H elements read their branch variable. Resistor currents
// are derived from the node voltages.
func (p Probe) Bind(ckt *circuit.Circuit) (Binding, error) {
	index := make(map[string]int)
	for i, label := range ckt.Unknowns() {
		if label != "" {
			index[label] = i
		}
	}

	b := Binding{Probe: p, pos: device.Ground, neg: device.Ground, scale: 1}

	if p.Quantity == 'V' {
		node := func(name string) (int, error) {
			if name == device.GroundName || strings.EqualFold(name, "gnd") {
				return device.Ground, nil
			}
			idx, ok := index["V("+name+")"]
			if !ok {
				return 0, fmt.Errorf("%w: %s: unknown node %s", ErrProbe, p.Label, name)
			}
			return idx, nil
		}

		var err error
		if b.pos, err = node(p.Args[0]); err != nil {
			return Binding{}, err
		}
		if len(p.Args) == 2 {
			if b.neg, err = node(p.Args[1]); err != nil {
				return Binding{}, err
			}
		}
		return b, nil
	}

	if idx, ok := index["I("+p.Args[0]+")"]; ok {
		b.pos = idx
		return b, nil
	}
	if d, ok := ckt.Lookup(p.Args[0]); ok && d.Kind == device.Resistor {
		b.pos, b.neg = d.Nodes[0], d.Nodes[1]
		b.scale = 1 / d.Value
		return b, nil
	}
	return Binding{}, fmt.Errorf("%w: %s: no current for element %s", ErrProbe, p.Label, p.Args[0])
}

func BindAll(ckt *circuit.Circuit, probes []Probe) ([]Binding, error) {
	bindings := make([]Binding, 0, len(probes))
	for _, p := range probes {
		b, err := p.Bind(ckt)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Complex reads the probed quantity from a solution accessor.
func (b Binding) Complex(at func(i int) complex128) complex128 {
	read := func(i int) complex128 {
		if i == device.Ground {
			return 0
		}
		return at(i)
	}
	return (read(b.pos) - read(b.neg)) * complex(b.scale, 0)
}

// Value applies the probe's display form. ac selects the AC default
// (magnitude) over the DC default (real part).
func (b Binding) Value(at func(i int) complex128, ac bool) float64 {
	v := b.Complex(at)
	switch b.Form {
	case FormReal:
		return real(v)
	case FormImag:
		return imag(v)
	case FormMag:
		return cmplx.Abs(v)
	case FormPhase:
		return cmplx.Phase(v) * 180.0 / math.Pi
	case FormDB:
		return 20 * math.Log10(cmplx.Abs(v))
	}
	if ac {
		return cmplx.Abs(v)
	}
	return real(v)
}

// Unit is the physical unit of the displayed value.
func (b Binding) Unit() string {
	switch b.Form {
	case FormPhase:
		return "deg"
	case FormDB:
		return "dB"
	}
	if b.Quantity == 'I' {
		return "A"
	}
	return "V"
}
