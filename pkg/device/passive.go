package device

func NewResistor(name string, nodeNames []string, value float64) *Device {
	d := newDevice(Resistor, name, nodeNames)
	d.Value = value
	return d
}

// NewCapacitor returns a capacitor. It is open in DC.
func NewCapacitor(name string, nodeNames []string, value float64) *Device {
	d := newDevice(Capacitor, name, nodeNames)
	d.Value = value
	return d
}

// NewInductor returns an inductor. It carries a branch current variable and
// is a short in DC.
func NewInductor(name string, nodeNames []string, value float64) *Device {
	d := newDevice(Inductor, name, nodeNames)
	d.Value = value
	return d
}
