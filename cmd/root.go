package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/torpedo-sim/torpedo-sim/sim"
)

var (
	// CLI flags for the engagement run
	seed		int64	// Seed for the partitioned detector-noise RNG
	horizon		int64	// Total simulation time in ticks (0 = scenario value)
	logLevel	string	// Log verbosity level
	scenarioFile	string	// Path to the scenario presets yaml
	scenarioName	string	// Named scenario to run
	killRadius	float64	// Proximity-kill radius override (0 = scenario value)
	costCeiling	float64	// Decoy budget ceiling override (0 = scenario value)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "torpedo-sim",
	Short: "Discrete-event simulator for torpedo vs. decoy-defended ship engagements",
}

// runCmd executes one engagement using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one engagement",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := LoadScenario(scenarioFile, scenarioName)
		if err != nil {
			logrus.Fatalf("Could not load scenario %q: %v", scenarioName, err)
		}
		if horizon > 0 {
			cfg.Horizon = horizon
		}
		if killRadius > 0 {
			cfg.KillRadius = killRadius
		}
		if costCeiling > 0 {
			cfg.Ledger.CostCeiling = costCeiling
		}

		logrus.Infof("Starting engagement %q with seed=%d, horizon=%d ticks, ceiling=%.2f",
			scenarioName, seed, cfg.Horizon, cfg.Ledger.CostCeiling)

		simulator, err := sim.NewSimulator(cfg, sim.NewSimulationKey(seed))
		if err != nil {
			// Configuration inconsistency is fatal before any tick runs.
			logrus.Fatalf("%v", err)
		}
		outcome := simulator.Run()
		simulator.Metrics.Print(outcome)
	},
}

func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed; identical seeds reproduce the run bit-for-bit")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "simulation horizon in ticks (0 = scenario value)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&scenarioFile, "scenario-file", "scenarios.yaml", "path to scenario presets")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "baseline", "scenario preset name")
	runCmd.Flags().Float64Var(&killRadius, "kill-radius", 0, "proximity-kill radius override (0 = scenario value)")
	runCmd.Flags().Float64Var(&costCeiling, "cost-ceiling", 0, "decoy budget ceiling override (0 = scenario value)")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
