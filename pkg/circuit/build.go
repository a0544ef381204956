package circuit

import (
	"fmt"

	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/netlist"
)

// Build creates and finalizes the circuit described by a parsed netlist.
// Subcircuits are built in definition order, so an instance may only use
// templates defined before its own .SUBCKT.
func Build(data *netlist.NetlistData) (*Circuit, error) {
	c := New(data.Title)

	for name, m := range data.Models {
		c.AddModel(device.NewDiodeModel(name, m.Params))
	}

	for _, s := range data.Subckts {
		t, err := device.NewTemplate(s.Name, s.Nodes)
		if err != nil {
			return nil, err
		}
		for _, elem := range netlist.OrderElements(s.Elements) {
			d, err := netlist.CreateDevice(elem, c)
			if err != nil {
				return nil, fmt.Errorf("subcircuit %s: %w", s.Name, err)
			}
			if err := t.Add(d); err != nil {
				return nil, fmt.Errorf("subcircuit %s: %w", s.Name, err)
			}
		}
		if err := c.AddTemplate(t); err != nil {
			return nil, err
		}
	}

	for _, elem := range netlist.OrderElements(data.Elements) {
		d, err := netlist.CreateDevice(elem, c)
		if err != nil {
			return nil, err
		}
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}

	if err := c.Finalize(); err != nil {
		return nil, err
	}
	return c, nil
}
