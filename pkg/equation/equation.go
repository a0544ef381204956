package equation

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-mna/pkg/device"
)

// ErrNotFinalized is returned when a circuit is assembled before its
// variables were assigned.
var ErrNotFinalized = errors.New("circuit variables not assigned")

// Circuit is what the assembler needs from a circuit: its size and its
// index-assigned, expanded elements.
type Circuit interface {
	Size() int
	Finalized() bool
	Elements() []*device.Device
}

func checkCircuit(ckt Circuit) error {
	if !ckt.Finalized() {
		return ErrNotFinalized
	}
	if ckt.Size() == 0 {
		return fmt.Errorf("%w: circuit has no unknowns", device.ErrStructural)
	}
	return nil
}
