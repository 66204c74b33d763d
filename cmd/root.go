package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/simlib/sim"
	"github.com/inference-sim/simlib/sim/random"
)

var (
	// CLI flags for the run command
	scenarioPath string // Scenario YAML file
	seed         int64  // Simulation key; overrides the scenario seed
	stepped      bool   // Force stepped mode
	logLevel     string // Log verbosity level
	tracePath    string // Trace destination ("-" for stdout)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "simlib",
	Short: "Discrete-event simulation engine",
}

// runCmd builds a simulation from a scenario file and runs it
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("Scenario file not provided. Exiting simulation.")
		}
		sc, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		if stepped {
			sc.Mode = sim.RunStepped.String()
		}

		trace, closeTrace, err := openTrace(tracePath)
		if err != nil {
			logrus.Fatalf("Unable to open trace: %v", err)
		}
		defer closeTrace()

		key := resolveKey(sc, seed, cmd.Flags().Changed("seed"))
		built, err := sc.Build(trace, key)
		if err != nil {
			logrus.Fatalf("Unable to build scenario: %v", err)
		}
		if built.Sim.Mode() == sim.RunStepped {
			console := newConsoleStepper(os.Stdin, os.Stderr)
			defer console.Close()
			built.Sim.SetStepper(console)
		}

		logrus.Infof("Starting simulation %s with key %d from %s", built.Sim.RunID(), key, scenarioPath)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		status := built.Sim.Run(ctx)
		stop()

		if err := built.Sim.Logger().Err(); err != nil {
			logrus.Warnf("Trace output incomplete: %v", err)
		}
		fmt.Fprintf(os.Stdout, "Simulation ended at t=%d after %d steps: %s\n", built.Sim.Now(), built.Sim.Steps(), status)
		if !status.OK() {
			closeTrace()
			os.Exit(1)
		}
		logrus.Info("Simulation complete.")
	},
}

// resolveKey picks the simulation key: an explicit --seed wins over the
// scenario seed; without either the key is true-random.
func resolveKey(sc *Scenario, flagSeed int64, flagSet bool) sim.SimulationKey {
	switch {
	case flagSet:
		return sim.NewSimulationKey(flagSeed)
	case sc.Seed != nil:
		return sim.NewSimulationKey(*sc.Seed)
	default:
		return sim.NewSimulationKey(random.TrueRandomSeed())
	}
}

// openTrace opens the trace destination. The returned close function is
// safe to call more than once.
func openTrace(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	closed := false
	return f, func() {
		if !closed {
			closed = true
			_ = f.Close()
		}
	}, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Simulation key (overrides the scenario seed)")
	runCmd.Flags().BoolVar(&stepped, "stepped", false, "Run in stepped mode, one object per console confirmation")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&tracePath, "trace", "-", "Trace output file, - for stdout")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
