package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/analysis"
	"github.com/edp1096/toy-mna/pkg/circuit"
	"github.com/edp1096/toy-mna/pkg/netlist"
	"github.com/edp1096/toy-mna/pkg/output"
	"github.com/edp1096/toy-mna/pkg/plot"
)

// simulate parses src, runs its analyses and writes the result tables to w.
// Sweep analyses are plotted to plotPath when it is set.
func simulate(w io.Writer, src string, s analysis.Settings, plotPath string) error {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	data, err := netlist.Parse(src)
	if err != nil {
		return err
	}
	ckt, err := circuit.Build(data)
	if err != nil {
		return err
	}
	log.Info("circuit built",
		zap.String("title", data.Title),
		zap.Int("elements", len(data.Elements)),
		zap.Int("unknowns", ckt.Size()),
		zap.Bool("linear", ckt.Linear()))

	fmt.Fprintf(w, "Circuit: %s\n", data.Title)

	analyses := data.Analyses
	if len(analyses) == 0 {
		analyses = []netlist.AnalysisType{netlist.AnalysisOP}
	}
	plots := plotTargets(plotPath, analyses)

	for _, kind := range analyses {
		probes, err := probesFor(data, kind, ckt)
		if err != nil {
			return err
		}

		switch kind {
		case netlist.AnalysisOP:
			op := analysis.NewOP(s)
			if err := run(op, ckt); err != nil {
				return err
			}
			if err := output.WriteOP(w, ckt, op.Solution(), probes); err != nil {
				return err
			}

		case netlist.AnalysisDC:
			var sweeps []analysis.SweepSource
			for _, sw := range data.DCParam.Sweeps {
				sweeps = append(sweeps, analysis.SweepSource{
					Name:  sw.Source,
					Start: sw.Start,
					Stop:  sw.Stop,
					Step:  sw.Increment,
				})
			}
			dc := analysis.NewDCSweep(s, sweeps...)
			if err := run(dc, ckt); err != nil {
				return err
			}
			if err := output.WriteDC(w, ckt, dc, probes); err != nil {
				return err
			}
			if path := plots[kind]; path != "" {
				series, err := output.DCSeries(ckt, dc, probes)
				if err != nil {
					return err
				}
				opts := plot.Options{Title: data.Title, XLabel: sweeps[len(sweeps)-1].Name}
				if err := plot.Save(path, series, opts); err != nil {
					return err
				}
				log.Info("plot written", zap.String("path", path))
			}

		case netlist.AnalysisAC:
			p := data.ACParam
			ac := analysis.NewAC(s, p.Sweep, p.Points, p.FStart, p.FStop)
			if err := run(ac, ckt); err != nil {
				return err
			}
			if err := output.WriteAC(w, ckt, ac, probes); err != nil {
				return err
			}
			if path := plots[kind]; path != "" {
				series, err := output.ACSeries(ckt, ac, probes)
				if err != nil {
					return err
				}
				opts := plot.Options{Title: data.Title, XLabel: "Frequency (Hz)", LogX: ac.Logarithmic()}
				if err := plot.Save(path, series, opts); err != nil {
					return err
				}
				log.Info("plot written", zap.String("path", path))
			}

		default:
			return fmt.Errorf("unsupported analysis %v", kind)
		}
	}
	return nil
}

func run(a analysis.Analysis, ckt *circuit.Circuit) error {
	if err := a.Setup(ckt); err != nil {
		return fmt.Errorf("analysis setup failed: %w", err)
	}
	if err := a.Execute(); err != nil {
		return fmt.Errorf("analysis execution failed: %w", err)
	}
	return nil
}

// probesFor collects the .PRINT probes of one analysis, falling back to
// every unknown of the circuit.
func probesFor(data *netlist.NetlistData, kind netlist.AnalysisType, ckt *circuit.Circuit) ([]output.Probe, error) {
	var raw []string
	for _, p := range data.Prints {
		if p.Analysis == kind {
			raw = append(raw, p.Probes...)
		}
	}
	if len(raw) == 0 {
		return output.DefaultProbes(ckt), nil
	}
	return output.ParseProbes(raw)
}

// plotTargets assigns an image path per sweep analysis. With both a DC and
// an AC sweep the analysis name is appended to the file stem.
func plotTargets(path string, analyses []netlist.AnalysisType) map[netlist.AnalysisType]string {
	targets := make(map[netlist.AnalysisType]string)
	if path == "" {
		return targets
	}

	var sweeps []netlist.AnalysisType
	for _, a := range analyses {
		if a == netlist.AnalysisDC || a == netlist.AnalysisAC {
			sweeps = append(sweeps, a)
		}
	}
	if len(sweeps) == 1 {
		targets[sweeps[0]] = path
		return targets
	}

	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".png"
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, a := range sweeps {
		targets[a] = stem + "_" + strings.ToLower(a.String()) + ext
	}
	return targets
}
