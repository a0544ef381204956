package device

import "fmt"

// Template is a subcircuit blueprint. Local indices 0..ExternalCount()-1
// are the external terminals in declaration order; internal nodes follow.
type Template struct {
	Name      string
	externals int
	*Collection
}

// NewTemplate returns an empty template whose external terminals are
// numbered first.
func NewTemplate(name string, externalNodes []string) (*Template, error) {
	t := &Template{Name: name, externals: len(externalNodes), Collection: NewCollection()}
	for i, node := range externalNodes {
		if idx := t.nodes.AssignNodeMapping(node); idx != i {
			return nil, fmt.Errorf("%w: subcircuit %s: terminal %q is ground or repeated", ErrStructural, name, node)
		}
	}
	return t, nil
}

func (t *Template) ExternalCount() int { return t.externals }

func (t *Template) InternalCount() int { return t.nodes.Count() - t.externals }

// ExtraVars is the number of parent variables one instance needs: its
// internal nodes plus the extra variables of its elements.
func (t *Template) ExtraVars() int {
	n := t.InternalCount()
	for _, e := range t.elements {
		n += e.ExtraVars()
	}
	return n
}

func (t *Template) Linear() bool {
	for _, e := range t.elements {
		if !e.Linear() {
			return false
		}
	}
	return true
}

// NewSubcircuit returns an X element instantiating t.
func NewSubcircuit(name string, nodeNames []string, t *Template) *Device {
	d := newDevice(Subcircuit, name, nodeNames)
	d.Sub = newInstance(name, t)
	return d
}

// Instance is a concrete expansion of a template. Its devices live in an
// arena that Expand rebuilds and swaps in whole.
type Instance struct {
	name     string
	template *Template

	// local-to-parent table: externals then the internal block.
	externals     []int
	internalStart int
	allocated     bool

	arena *arena
}

func newInstance(name string, t *Template) *Instance {
	return &Instance{name: name, template: t, arena: newArena()}
}

func (in *Instance) Name() string { return in.name }

func (in *Instance) Template() *Template { return in.template }

// Elements returns the expanded devices in template order.
func (in *Instance) Elements() []*Device { return in.arena.elements }

// Lookup finds an expanded device by its instance-prefixed name.
func (in *Instance) Lookup(name string) (*Device, bool) { return in.arena.lookup(name) }

// InternalNodes returns the parent indices of the internal nodes.
func (in *Instance) InternalNodes() []int {
	if !in.allocated {
		return nil
	}
	nodes := make([]int, in.template.InternalCount())
	for i := range nodes {
		nodes[i] = in.internalStart + i
	}
	return nodes
}

// SetFirstVarIndex allocates the internal node block at start, expands the
// instance and returns the next free index.
func (in *Instance) SetFirstVarIndex(externals []int, start int) (int, error) {
	if len(externals) != in.template.ExternalCount() {
		return start, fmt.Errorf("%w: %s needs %d nodes, got %d",
			ErrStructural, in.name, in.template.ExternalCount(), len(externals))
	}
	in.externals = append(in.externals[:0], externals...)
	in.internalStart = start
	in.allocated = true

	if err := in.Expand(); err != nil {
		return start, err
	}
	return start + in.ExtraVarCount(), nil
}

// ExtraVarCount sums the expanded devices' extra variables and the internal
// node count.
func (in *Instance) ExtraVarCount() int {
	n := in.template.InternalCount()
	for _, e := range in.arena.elements {
		n += e.ExtraVars()
	}
	return n
}

// Expand rebuilds the private device copies from the template. It is safe
// to call again and produces the same result.
func (in *Instance) Expand() error {
	if !in.allocated {
		return fmt.Errorf("%w: %s expanded before its nodes were allocated", ErrStructural, in.name)
	}

	next := newArena()
	for _, te := range in.template.elements {
		c := te.buildCopy(in.localName(te.Name))
		if te.needsRef() {
			if err := next.resolveRef(c, in.localName(te.Ref)); err != nil {
				return err
			}
		}
		for i, local := range te.Nodes {
			c.Nodes[i] = in.toParent(local)
		}
		if err := next.add(c); err != nil {
			return err
		}
	}

	if _, err := next.assignVars(in.internalStart + in.template.InternalCount()); err != nil {
		return err
	}

	in.arena = next
	return nil
}

func (in *Instance) localName(templateName string) string {
	return in.name + "_" + templateName
}

func (in *Instance) toParent(local int) int {
	if local == Ground {
		return Ground
	}
	if local < len(in.externals) {
		return in.externals[local]
	}
	return in.internalStart + local - len(in.externals)
}
