package device

type realStamper interface {
	ApplyRealMatrixStamp(i, j int, value float64)
}

type reactiveStamper interface {
	ApplyComplexMatrixStamp(i, j int, value float64)
}

// stampConductance stamps g between nodes a and b.
func stampConductance(eq realStamper, a, b int, g float64) {
	eq.ApplyRealMatrixStamp(a, a, g)
	eq.ApplyRealMatrixStamp(a, b, -g)
	eq.ApplyRealMatrixStamp(b, a, -g)
	eq.ApplyRealMatrixStamp(b, b, g)
}

// stampReactance stamps a susceptance per unit angular frequency between
// nodes a and b.
func stampReactance(eq reactiveStamper, a, b int, c float64) {
	eq.ApplyComplexMatrixStamp(a, a, c)
	eq.ApplyComplexMatrixStamp(a, b, -c)
	eq.ApplyComplexMatrixStamp(b, a, -c)
	eq.ApplyComplexMatrixStamp(b, b, c)
}

// stampBranch stamps the incidence of branch variable k between nodes a
// (positive) and b: current k leaves a and enters b, and row k reads
// V(a) - V(b).
func stampBranch(eq realStamper, a, b, k int) {
	eq.ApplyRealMatrixStamp(a, k, 1)
	eq.ApplyRealMatrixStamp(b, k, -1)
	eq.ApplyRealMatrixStamp(k, a, 1)
	eq.ApplyRealMatrixStamp(k, b, -1)
}

func stampControlled(eq realStamper, d *Device) {
	n1, n2 := d.Nodes[0], d.Nodes[1]
	g := d.Value

	switch d.Kind {
	case VCVS:
		nc1, nc2 := d.Nodes[2], d.Nodes[3]
		stampBranch(eq, n1, n2, d.firstVar)
		eq.ApplyRealMatrixStamp(d.firstVar, nc1, -g)
		eq.ApplyRealMatrixStamp(d.firstVar, nc2, g)
	case VCCS:
		nc1, nc2 := d.Nodes[2], d.Nodes[3]
		eq.ApplyRealMatrixStamp(n1, nc1, g)
		eq.ApplyRealMatrixStamp(n1, nc2, -g)
		eq.ApplyRealMatrixStamp(n2, nc1, -g)
		eq.ApplyRealMatrixStamp(n2, nc2, g)
	case CCCS:
		eq.ApplyRealMatrixStamp(n1, d.refVar, g)
		eq.ApplyRealMatrixStamp(n2, d.refVar, -g)
	case CCVS:
		stampBranch(eq, n1, n2, d.firstVar)
		eq.ApplyRealMatrixStamp(d.firstVar, d.refVar, -g)
	}
}
