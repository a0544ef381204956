package device

// NewVCVS returns an E element: V(n+,n-) = gain * V(nc+,nc-).
// nodeNames is n+ n- nc+ nc-.
func NewVCVS(name string, nodeNames []string, gain float64) *Device {
	d := newDevice(VCVS, name, nodeNames)
	d.Value = gain
	return d
}

// NewVCCS returns a G element: gain * V(nc+,nc-) flows from n+ to n-
// through the element.
func NewVCCS(name string, nodeNames []string, gain float64) *Device {
	d := newDevice(VCCS, name, nodeNames)
	d.Value = gain
	return d
}

// NewCCCS returns an F element driven by the branch current of the voltage
// source named ref.
func NewCCCS(name string, nodeNames []string, ref string, gain float64) *Device {
	d := newDevice(CCCS, name, nodeNames)
	d.Ref = ref
	d.Value = gain
	return d
}

// NewCCVS returns an H element driven by the branch current of the voltage
// source named ref.
func NewCCVS(name string, nodeNames []string, ref string, gain float64) *Device {
	d := newDevice(CCVS, name, nodeNames)
	d.Ref = ref
	d.Value = gain
	return d
}

func (d *Device) needsRef() bool {
	return d.Kind == CCCS || d.Kind == CCVS
}
