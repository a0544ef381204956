package netlist

import (
	"fmt"
	"sort"

	"github.com/edp1096/toy-mna/pkg/device"
)

// Library resolves the .MODEL and .SUBCKT names an element refers to.
type Library interface {
	Model(name string) (device.DiodeModel, error)
	Template(name string) (*device.Template, error)
}

// CreateDevice builds the device for one parsed element.
func CreateDevice(elem Element, lib Library) (*device.Device, error) {
	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil
	case "L":
		return device.NewInductor(elem.Name, elem.Nodes, elem.Value), nil
	case "C":
		return device.NewCapacitor(elem.Name, elem.Nodes, elem.Value), nil

	case "V", "I":
		ac, err := sourcePhasor(elem)
		if err != nil {
			return nil, err
		}
		if elem.Type == "V" {
			return device.NewVoltageSource(elem.Name, elem.Nodes, elem.Value, ac), nil
		}
		return device.NewCurrentSource(elem.Name, elem.Nodes, elem.Value, ac), nil

	case "E":
		return device.NewVCVS(elem.Name, elem.Nodes, elem.Value), nil
	case "G":
		return device.NewVCCS(elem.Name, elem.Nodes, elem.Value), nil
	case "F":
		return device.NewCCCS(elem.Name, elem.Nodes, elem.Params["control"], elem.Value), nil
	case "H":
		return device.NewCCVS(elem.Name, elem.Nodes, elem.Params["control"], elem.Value), nil

	case "D":
		model := device.DefaultDiodeModel()
		if name, ok := elem.Params["model"]; ok {
			m, err := lib.Model(name)
			if err != nil {
				return nil, fmt.Errorf("diode %s: %w", elem.Name, err)
			}
			model = m
		}
		return device.NewDiode(elem.Name, elem.Nodes, model), nil

	case "X":
		t, err := lib.Template(elem.Params["subckt"])
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", elem.Name, err)
		}
		return device.NewSubcircuit(elem.Name, elem.Nodes, t), nil
	}

	return nil, fmt.Errorf("%w: unsupported element type %s", ErrSyntax, elem.Type)
}

func sourcePhasor(elem Element) (complex128, error) {
	magStr, ok := elem.Params["acmag"]
	if !ok {
		return 0, nil
	}
	mag, err := ParseValue(magStr)
	if err != nil {
		return 0, fmt.Errorf("%s AC magnitude: %w", elem.Name, err)
	}
	phase, err := ParseValue(elem.Params["acphase"])
	if err != nil {
		return 0, fmt.Errorf("%s AC phase: %w", elem.Name, err)
	}
	return device.Phasor(mag, phase), nil
}

// OrderElements returns elems with independent sources first, then
// controlled sources, then everything else. Order within each group is
// kept, so current-controlled sources always find their reference.
func OrderElements(elems []Element) []Element {
	rank := func(typ string) int {
		switch typ {
		case "V", "I":
			return 0
		case "E", "F", "G", "H":
			return 1
		}
		return 2
	}

	ordered := append([]Element(nil), elems...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].Type) < rank(ordered[j].Type)
	})
	return ordered
}
