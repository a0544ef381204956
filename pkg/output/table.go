package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/edp1096/toy-mna/pkg/analysis"
	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/device"
	"github.com/edp1096/toy-mna/pkg/matrix"
	"github.com/edp1096/toy-mna/pkg/util"
)

func realAt(x *matrix.RealVector) func(int) complex128 {
	return func(i int) complex128 { return complex(x.At(i), 0) }
}

func formatCell(b Binding, v float64) string {
	switch b.Form {
	case FormPhase:
		return util.FormatPhase(v)
	case FormDB:
		return util.FormatDecibel(v)
	}
	return util.FormatValueFactor(v, b.Unit())
}

// WriteOP prints one "label = value" line per probe.
func WriteOP(w io.Writer, ckt *circuit.Circuit, x *matrix.RealVector, probes []Probe) error {
	bindings, err := BindAll(ckt, probes)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\nOperating Point:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range bindings {
		fmt.Fprintf(tw, "%s\t=\t%s\n", b.Label, formatCell(b, b.Value(realAt(x), false)))
	}
	return tw.Flush()
}

// WriteDC prints one row per sweep point. Failed points print their error.
func WriteDC(w io.Writer, ckt *circuit.Circuit, dc *analysis.DCSweep, probes []Probe) error {
	bindings, err := BindAll(ckt, probes)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nDC Sweep Analysis Results (%d points):\n", len(dc.Points()))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := make([]string, 0, len(dc.Sources())+len(bindings))
	for _, s := range dc.Sources() {
		header = append(header, s.Name)
	}
	for _, b := range bindings {
		header = append(header, b.Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, p := range dc.Points() {
		row := make([]string, 0, len(header))
		for i, v := range p.Values {
			unit := "V"
			if src, err := ckt.Source(dc.Sources()[i].Name); err == nil && src.Kind == device.CurrentSource {
				unit = "A"
			}
			row = append(row, util.FormatValueFactor(v, unit))
		}
		if p.Err != nil {
			row = append(row, "FAILED: "+p.Err.Error())
		} else {
			for _, b := range bindings {
				row = append(row, formatCell(b, b.Value(realAt(p.X), false)))
			}
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteAC prints one row per frequency.
func WriteAC(w io.Writer, ckt *circuit.Circuit, ac *analysis.ACAnalysis, probes []Probe) error {
	bindings, err := BindAll(ckt, probes)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAC Analysis Results (%d frequency points):\n", len(ac.Points()))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := []string{"Frequency"}
	for _, b := range bindings {
		header = append(header, b.Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, p := range ac.Points() {
		row := []string{util.FormatFrequency(p.Freq)}
		if p.Err != nil {
			row = append(row, "FAILED: "+p.Err.Error())
		} else {
			for _, b := range bindings {
				v := b.Value(p.X.At, true)
				switch b.Form {
				case FormPhase, FormDB:
					row = append(row, formatCell(b, v))
				case FormDefault, FormMag:
					row = append(row, util.FormatMagnitude(v))
				default:
					row = append(row, util.FormatValueFactor(v, b.Unit()))
				}
			}
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
