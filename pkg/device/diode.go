package device

import (
	"math"

	"github.com/edp1096/toy-mna/internal/consts"
)

const (
	DefaultIs = 1e-14
	DefaultVt = 0.025
)

// DiodeModel holds the parameters of I = Is*(exp(V/(N*Vt)) - 1).
type DiodeModel struct {
	Name string
	Is   float64 // Saturation current
	N    float64 // Emission coefficient
	Vt   float64 // Thermal voltage
}

func DefaultDiodeModel() DiodeModel {
	return DiodeModel{Is: DefaultIs, N: 1.0, Vt: DefaultVt}
}

// NewDiodeModel builds a model from .MODEL parameters (lower-case keys).
// TEMP is in Celsius and overrides VT with k*T/q.
func NewDiodeModel(name string, params map[string]float64) DiodeModel {
	m := DefaultDiodeModel()
	m.Name = name

	if is, ok := params["is"]; ok {
		m.Is = is
	}
	if n, ok := params["n"]; ok {
		m.N = n
	}
	if vt, ok := params["vt"]; ok {
		m.Vt = vt
	}
	if temp, ok := params["temp"]; ok {
		m.Vt = consts.ThermalVoltage(temp)
	}
	return m
}

func (m DiodeModel) nvt() float64 {
	return m.N * m.Vt
}

func (m DiodeModel) current(vd float64) float64 {
	return m.Is * (math.Exp(vd/m.nvt()) - 1.0)
}

func (m DiodeModel) conductance(vd float64) float64 {
	nvt := m.nvt()
	return m.Is / nvt * math.Exp(vd/nvt)
}

// NewDiode returns a diode from anode nodeNames[0] to cathode nodeNames[1].
func NewDiode(name string, nodeNames []string, model DiodeModel) *Device {
	d := newDevice(Diode, name, nodeNames)
	d.Model = model
	return d
}
