package device

import (
	"math"
	"math/cmplx"
)

// NewVoltageSource returns an independent voltage source from nodeNames[0]
// (positive) to nodeNames[1] with a DC value and an AC phasor.
func NewVoltageSource(name string, nodeNames []string, dc float64, ac complex128) *Device {
	d := newDevice(VoltageSource, name, nodeNames)
	d.DC = dc
	d.AC = ac
	return d
}

// NewCurrentSource returns an independent current source. Positive current
// is delivered into nodeNames[0].
func NewCurrentSource(name string, nodeNames []string, dc float64, ac complex128) *Device {
	d := newDevice(CurrentSource, name, nodeNames)
	d.DC = dc
	d.AC = ac
	return d
}

// Phasor converts magnitude and phase in degrees to a complex value.
func Phasor(mag, phaseDeg float64) complex128 {
	return cmplx.Rect(mag, phaseDeg*math.Pi/180.0)
}

// IsSource reports whether the device is an independent source.
func (d *Device) IsSource() bool {
	return d.Kind == VoltageSource || d.Kind == CurrentSource
}

// IsDependentSource reports whether the device is a controlled source.
func (d *Device) IsDependentSource() bool {
	switch d.Kind {
	case VCVS, VCCS, CCCS, CCVS:
		return true
	}
	return false
}

// StampExcitation stamps only the source-vector part of an independent
// source as if its DC value were v. Sweeps use it on a cloned equation.
func (d *Device) StampExcitation(eq DCStamper, v float64) {
	switch d.Kind {
	case VoltageSource:
		eq.ApplySourceVectorStamp(d.firstVar, v)
	case CurrentSource:
		eq.ApplySourceVectorStamp(d.Nodes[0], v)
		eq.ApplySourceVectorStamp(d.Nodes[1], -v)
	}
}
