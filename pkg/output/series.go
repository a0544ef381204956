package output

import (
	"fmt"

	"github.com/edp1096/toy-mna/pkg/analysis"
	"github.com/edp1096/toy-mna/pkg/circuit"
)

// Series is one plottable probe trace. Failed points are left out.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

// DCSeries returns one series per probe against the innermost sweep
// source. A nested sweep yields one series per probe and outer value.
func DCSeries(ckt *circuit.Circuit, dc *analysis.DCSweep, probes []Probe) ([]Series, error) {
	bindings, err := BindAll(ckt, probes)
	if err != nil {
		return nil, err
	}

	sources := dc.Sources()
	nested := len(sources) == 2

	var out []Series
	index := make(map[string]int)
	for _, p := range dc.Points() {
		if p.Err != nil {
			continue
		}
		x := p.Values[len(p.Values)-1]
		for _, b := range bindings {
			label := b.Label
			if nested {
				label = fmt.Sprintf("%s %s=%g", b.Label, sources[0].Name, p.Values[0])
			}
			i, ok := index[label]
			if !ok {
				i = len(out)
				index[label] = i
				out = append(out, Series{Label: label})
			}
			out[i].X = append(out[i].X, x)
			out[i].Y = append(out[i].Y, b.Value(realAt(p.X), false))
		}
	}
	return out, nil
}

// ACSeries returns one series per probe against frequency.
func ACSeries(ckt *circuit.Circuit, ac *analysis.ACAnalysis, probes []Probe) ([]Series, error) {
	bindings, err := BindAll(ckt, probes)
	if err != nil {
		return nil, err
	}

	out := make([]Series, len(bindings))
	for i, b := range bindings {
		out[i].Label = b.Label
	}
	for _, p := range ac.Points() {
		if p.Err != nil {
			continue
		}
		for i, b := range bindings {
			out[i].X = append(out[i].X, p.Freq)
			out[i].Y = append(out[i].Y, b.Value(p.X.At, true))
		}
	}
	return out, nil
}
