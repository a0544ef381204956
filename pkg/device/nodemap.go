package device

// GroundName is the reserved name of the reference node. "gnd" is accepted
// as an alias.
const GroundName = "0"

// NodeMap numbers node names first-come first-served from 0. Ground is
// pre-seeded to Ground and never renumbered.
type NodeMap struct {
	index map[string]int
	names []string
}

func NewNodeMap() *NodeMap {
	return &NodeMap{
		index: map[string]int{GroundName: Ground, "gnd": Ground},
	}
}

// AssignNodeMapping returns the index of name, allocating the next one on
// first use.
func (m *NodeMap) AssignNodeMapping(name string) int {
	if idx, ok := m.index[name]; ok {
		return idx
	}
	idx := len(m.names)
	m.index[name] = idx
	m.names = append(m.names, name)
	return idx
}

func (m *NodeMap) Lookup(name string) (int, bool) {
	idx, ok := m.index[name]
	return idx, ok
}

// Count is the number of non-ground nodes.
func (m *NodeMap) Count() int { return len(m.names) }

// Names returns node names in index order.
func (m *NodeMap) Names() []string {
	return append([]string(nil), m.names...)
}
