package circuit

import (
	"fmt"

	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/matrix"
)

// Circuit is the top-level element collection. Elements are added with
// their node names; Finalize assigns the extra variables and expands
// subcircuits.
type Circuit struct {
	name string
	*device.Collection
	templates map[string]*device.Template
	models    map[string]device.DiodeModel
	size      int
	finalized bool
}

func New(name string) *Circuit {
	return &Circuit{
		name:       name,
		Collection: device.NewCollection(),
		templates:  make(map[string]*device.Template),
		models:     make(map[string]device.DiodeModel),
	}
}

func (c *Circuit) Name() string { return c.name }

// Add appends d, numbering any node names it sees for the first time.
func (c *Circuit) Add(d *device.Device) error {
	if err := c.Collection.Add(d); err != nil {
		return err
	}
	c.finalized = false
	return nil
}

func (c *Circuit) AddTemplate(t *device.Template) error {
	if _, dup := c.templates[t.Name]; dup {
		return fmt.Errorf("%w: duplicate subcircuit %s", device.ErrStructural, t.Name)
	}
	c.templates[t.Name] = t
	return nil
}

func (c *Circuit) Template(name string) (*device.Template, error) {
	t, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown subcircuit %s", device.ErrStructural, name)
	}
	return t, nil
}

func (c *Circuit) AddModel(m device.DiodeModel) {
	c.models[m.Name] = m
}

func (c *Circuit) Model(name string) (device.DiodeModel, error) {
	m, ok := c.models[name]
	if !ok {
		return device.DiodeModel{}, fmt.Errorf("%w: unknown model %s", device.ErrStructural, name)
	}
	return m, nil
}

// Finalize runs SetFirstVarIndex over every element in declaration order,
// starting after the last node index. It may be called again after more
// elements are added.
func (c *Circuit) Finalize() error {
	size, err := c.AssignVars(c.NodeCount())
	if err != nil {
		return fmt.Errorf("assigning variables: %w", err)
	}
	c.size = size
	c.finalized = true
	return nil
}

func (c *Circuit) Finalized() bool { return c.finalized }

// Size is the matrix dimension: nodes plus every extra variable.
func (c *Circuit) Size() int { return c.size }

func (c *Circuit) NodeCount() int { return c.Nodes().Count() }

func (c *Circuit) Linear() bool {
	for _, d := range c.Elements() {
		if !d.Linear() {
			return false
		}
	}
	return true
}

// Source returns the independent source named name.
func (c *Circuit) Source(name string) (*device.Device, error) {
	d, ok := c.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %s", device.ErrStructural, name)
	}
	if !d.IsSource() {
		return nil, fmt.Errorf("%w: %s is not an independent source", device.ErrStructural, name)
	}
	return d, nil
}

// NodeIndex returns the matrix index of a top-level node. Ground is
// device.Ground.
func (c *Circuit) NodeIndex(name string) (int, error) {
	idx, ok := c.Nodes().Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown node %s", device.ErrStructural, name)
	}
	return idx, nil
}

// BranchIndex returns the branch current variable of a voltage source,
// inductor or E/H element.
func (c *Circuit) BranchIndex(name string) (int, error) {
	d, ok := c.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown element %s", device.ErrStructural, name)
	}
	if d.Kind == device.Subcircuit || d.ExtraVars() == 0 || d.FirstVar() == device.Ground {
		return 0, fmt.Errorf("%w: %s has no branch current", device.ErrStructural, name)
	}
	return d.FirstVar(), nil
}

// Unknowns labels every matrix index: V(node) for nodes, I(name) for
// branch currents and V(X1_node) for subcircuit internal nodes, named with
// the instance path that prefixes expanded element names.
func (c *Circuit) Unknowns() []string {
	labels := make([]string, c.size)
	for i, name := range c.Nodes().Names() {
		labels[i] = fmt.Sprintf("V(%s)", name)
	}
	for _, d := range c.Elements() {
		labelDevice(labels, d)
	}
	return labels
}

func labelDevice(labels []string, d *device.Device) {
	if d.Kind == device.Subcircuit {
		in := d.Sub
		t := in.Template()
		internal := t.Nodes().Names()[t.ExternalCount():]
		for i, idx := range in.InternalNodes() {
			if idx < len(labels) {
				labels[idx] = fmt.Sprintf("V(%s_%s)", in.Name(), internal[i])
			}
		}
		for _, e := range in.Elements() {
			labelDevice(labels, e)
		}
		return
	}
	if k := d.FirstVar(); k != device.Ground && k < len(labels) {
		labels[k] = fmt.Sprintf("I(%s)", d.Name)
	}
}

// NamedSolution maps a DC solution to labelled values. Resistor currents
// are derived from their node voltages.
func (c *Circuit) NamedSolution(x *matrix.RealVector) map[string]float64 {
	solution := make(map[string]float64, c.size)
	for i, label := range c.Unknowns() {
		if label != "" {
			solution[label] = x.At(i)
		}
	}

	at := func(idx int) float64 {
		if idx == device.Ground {
			return 0
		}
		return x.At(idx)
	}
	for _, d := range c.Elements() {
		if d.Kind == device.Resistor {
			solution[fmt.Sprintf("I(%s)", d.Name)] = (at(d.Nodes[0]) - at(d.Nodes[1])) / d.Value
		}
	}
	return solution
}
