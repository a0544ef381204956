package consts

// Physical constants used by the semiconductor models.
const (
	CHARGE    = 1.6021918e-19 // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // 0 degC in K
)

// ThermalVoltage is kT/q at tempC degrees Celsius.
func ThermalVoltage(tempC float64) float64 {
	return BOLTZMANN * (tempC + KELVIN) / CHARGE
}
