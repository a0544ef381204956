package matrix

import (
	"fmt"
	"strings"
)

// FormatSystem renders a x = b one equation per row, skipping zero
// coefficients. Used for debug logging.
func FormatSystem(a *RealMatrix, b *RealVector) string {
	var sb strings.Builder
	size, _ := a.Dims()
	fmt.Fprintf(&sb, "Circuit Equations (%dx%d):\n", size, size)
	for i := 0; i < size; i++ {
		fmt.Fprintf(&sb, "Equation %d:", i)
		for j := 0; j < size; j++ {
			if v := a.At(i, j); v != 0 {
				fmt.Fprintf(&sb, "  %+g*x%d", v, j)
			}
		}
		fmt.Fprintf(&sb, " = %g\n", b.At(i))
	}
	return sb.String()
}

// FormatComplexSystem is FormatSystem for AC systems.
func FormatComplexSystem(a *ComplexMatrix, b *ComplexVector) string {
	var sb strings.Builder
	size, _ := a.Dims()
	fmt.Fprintf(&sb, "Circuit Equations (%dx%d):\n", size, size)
	for i := 0; i < size; i++ {
		fmt.Fprintf(&sb, "Equation %d:", i)
		for j := 0; j < size; j++ {
			v := a.At(i, j)
			switch {
			case v == 0:
			case imag(v) == 0:
				fmt.Fprintf(&sb, "  %+g*x%d", real(v), j)
			default:
				fmt.Fprintf(&sb, "  (%g + j%g)*x%d", real(v), imag(v), j)
			}
		}
		fmt.Fprintf(&sb, " = %g + j%g\n", real(b.At(i)), imag(b.At(i)))
	}
	return sb.String()
}
