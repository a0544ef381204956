package device

import "fmt"

// arena owns an ordered set of devices keyed by unique name.
type arena struct {
	elements []*Device
	index    map[string]int
}

func newArena() *arena {
	return &arena{index: make(map[string]int)}
}

func (a *arena) add(d *Device) error {
	if _, dup := a.index[d.Name]; dup {
		return fmt.Errorf("%w: duplicate element %s", ErrStructural, d.Name)
	}
	a.index[d.Name] = len(a.elements)
	a.elements = append(a.elements, d)
	return nil
}

func (a *arena) lookup(name string) (*Device, bool) {
	idx, ok := a.index[name]
	if !ok {
		return nil, false
	}
	return a.elements[idx], true
}

// resolveRef points d at the voltage source named ref in a.
func (a *arena) resolveRef(d *Device, ref string) error {
	idx, ok := a.index[ref]
	if !ok {
		return fmt.Errorf("%w: %s references unknown source %s", ErrStructural, d.Name, ref)
	}
	if a.elements[idx].Kind != VoltageSource {
		return fmt.Errorf("%w: %s references %s, which is not a voltage source", ErrStructural, d.Name, ref)
	}
	d.refIdx = idx
	return nil
}

// assignVars runs SetFirstVarIndex over every element in order and binds
// current-controlled sources to their controlling branch.
func (a *arena) assignVars(start int) (int, error) {
	next := start
	var err error
	for _, d := range a.elements {
		next, err = d.SetFirstVarIndex(next)
		if err != nil {
			return next, err
		}
	}
	for _, d := range a.elements {
		if d.needsRef() {
			d.refVar = a.elements[d.refIdx].firstVar
		}
	}
	return next, nil
}

// Collection is an element list with its own node numbering. Circuits and
// subcircuit templates are collections.
type Collection struct {
	nodes *NodeMap
	*arena
}

func NewCollection() *Collection {
	return &Collection{nodes: NewNodeMap(), arena: newArena()}
}

// Add maps d's node names into the collection's numbering, resolves its
// referenced source and appends it.
func (c *Collection) Add(d *Device) error {
	want := d.Kind.terminals()
	if d.Kind == Subcircuit {
		if d.Sub == nil {
			return fmt.Errorf("%w: subcircuit %s has no template", ErrStructural, d.Name)
		}
		want = d.Sub.template.ExternalCount()
	}
	if len(d.NodeNames) != want {
		return fmt.Errorf("%w: %s needs %d nodes, got %d", ErrStructural, d.Name, want, len(d.NodeNames))
	}
	if d.Kind == Resistor && d.Value == 0 {
		return fmt.Errorf("%w: resistor %s has zero resistance", ErrStructural, d.Name)
	}
	if _, dup := c.index[d.Name]; dup {
		return fmt.Errorf("%w: duplicate element %s", ErrStructural, d.Name)
	}
	if d.needsRef() {
		if err := c.resolveRef(d, d.Ref); err != nil {
			return err
		}
	}

	d.Nodes = make([]int, len(d.NodeNames))
	for i, name := range d.NodeNames {
		d.Nodes[i] = c.nodes.AssignNodeMapping(name)
	}
	return c.add(d)
}

func (c *Collection) Nodes() *NodeMap { return c.nodes }

// Elements returns the devices in declaration order.
func (c *Collection) Elements() []*Device { return c.elements }

func (c *Collection) Lookup(name string) (*Device, bool) { return c.lookup(name) }

// AssignVars assigns extra variables to every element starting at start.
func (c *Collection) AssignVars(start int) (int, error) { return c.assignVars(start) }
