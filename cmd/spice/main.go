// Command spice runs DC operating point, DC sweep and AC analyses on a
// SPICE netlist.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edp1096/toy-mna/pkg/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// run flags
	backend  string
	plotPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spice",
	Short: "Modified nodal analysis circuit simulator",
	Long: `spice reads a SPICE netlist and runs the analyses it requests
(.OP, .DC, .AC), printing the .PRINT probes of each analysis.

Solver and logging options come from a YAML file (--config), overridden by
SPICE_BACKEND and SPICE_LOG_LEVEL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if backend != "" {
			cfg.Solver.Backend = backend
		}
		if plotPath != "" {
			cfg.Output.Plot = plotPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = cfg.NewLogger(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run <netlist>",
	Short: "Simulate a netlist",
	Long: `Parses the netlist, expands subcircuits and runs every analysis
card in file order. A netlist without analysis cards gets an operating
point.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging, including assembled systems")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	runCmd.Flags().StringVar(&backend, "backend", "", "Linear solver backend (sparse, dense)")
	runCmd.Flags().StringVarP(&plotPath, "plot", "p", "", "Write DC/AC sweep plot to this image file")

	rootCmd.AddCommand(runCmd)
}

func runNetlist(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading netlist: %w", err)
	}

	settings, err := cfg.Settings(logger)
	if err != nil {
		return err
	}

	logger.Debug("netlist loaded", zap.String("path", args[0]), zap.String("backend", settings.Provider.Name()))
	return simulate(cmd.OutOrStdout(), string(content), settings, cfg.Output.Plot)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
