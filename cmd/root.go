package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/metro-sim/metro-sim/sim"
	"github.com/metro-sim/metro-sim/sim/workload"
)

var (
	// CLI flags for the simulation run
	logLevel       string  // Log verbosity level
	maxTime        float64 // Safety ceiling for simulated time (s)
	securityPolicy string  // Security-lane admission policy name
	gatePolicy     string  // Gate admission policy name
	scenarioConfig string  // Path to a scenario YAML file
	scenarioName   string  // Scenario to pick from the config file
	historyCSV     string  // Output path for the per-tick history CSV
	passengerCSV   string  // Output path for the per-passenger record CSV
	reportPath     string  // Output path for the text summary report

	// CLI flags for arrival generation
	pattern         string  // Arrival pattern name
	checkedRate     float64 // Checked passenger arrivals per second
	uncheckedRate   float64 // Unchecked passenger arrivals per second
	arrivalDuration float64 // Arrival window length (s)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "metro-sim",
	Short: "Discrete-time simulator for metro station security and ticketing flow",
}

// runCmd executes the simulation using parameters from CLI flags, optionally
// overridden by a scenario YAML file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the passenger flow simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		params := sim.DefaultParams()
		if scenarioConfig != "" {
			cfg, err := LoadScenarioConfig(scenarioConfig)
			if err != nil {
				logrus.Fatalf("unable to read scenario config: %v", err)
			}
			params = cfg.BaseParams()
			if scenarioName != "" {
				sc, ok := cfg.Scenarios[scenarioName]
				if !ok {
					logrus.Fatalf("scenario %q not found in %s (have %v)", scenarioName, scenarioConfig, cfg.ScenarioNames())
				}
				sc.apply()
			}
		}
		if _, err := sim.NewParams(params); err != nil {
			logrus.Fatalf("invalid parameters: %v", err)
		}

		pat := workload.New(pattern, checkedRate, uncheckedRate, arrivalDuration)
		logrus.Infof("Starting simulation: pattern=%s checked=%.2f/s unchecked=%.2f/s window=%.0fs ceiling=%.0fs",
			pat.Name(), checkedRate, uncheckedRate, arrivalDuration, maxTime)

		engine, err := sim.NewEngine(
			params,
			func(t float64) (float64, float64) {
				r := pat.At(t)
				return r.Checked, r.Unchecked
			},
			sim.NewSecurityPolicy(securityPolicy),
			sim.NewGatePolicy(gatePolicy),
			maxTime,
		)
		if err != nil {
			logrus.Fatalf("unable to build engine: %v", err)
		}
		engine.ArrivalEnd = arrivalDuration

		startTime := time.Now()
		res, err := engine.Run()
		if err != nil {
			logrus.Fatalf("simulation aborted: %v", err)
		}
		logrus.Infof("Simulation finished in %v wall time", time.Since(startTime))

		metrics := sim.ComputeMetrics(engine.State)
		metrics.Print(res)

		if historyCSV != "" {
			if err := WriteHistoryCSV(historyCSV, engine.State.History); err != nil {
				logrus.Fatalf("unable to write history CSV: %v", err)
			}
		}
		if passengerCSV != "" {
			if err := WritePassengerCSV(passengerCSV, engine.State.Passengers); err != nil {
				logrus.Fatalf("unable to write passenger CSV: %v", err)
			}
		}
		if reportPath != "" {
			if err := WriteReport(reportPath, res, metrics); err != nil {
				logrus.Fatalf("unable to write report: %v", err)
			}
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Float64Var(&maxTime, "max-time", 7200, "Safety ceiling for simulated time (s)")
	runCmd.Flags().StringVar(&securityPolicy, "security-policy", "single-server", "Security lane admission policy (single-server, static-thickness)")
	runCmd.Flags().StringVar(&gatePolicy, "gate-policy", "fixed-count", "Gate admission policy (fixed-count, per-gate)")

	// Arrival generation
	runCmd.Flags().StringVar(&pattern, "pattern", "uniform", "Arrival pattern (uniform, pulsed, wave, rush-hour)")
	runCmd.Flags().Float64Var(&checkedRate, "checked-rate", 0.5, "Checked passenger arrivals per second")
	runCmd.Flags().Float64Var(&uncheckedRate, "unchecked-rate", 2.0, "Unchecked passenger arrivals per second")
	runCmd.Flags().Float64Var(&arrivalDuration, "arrival-duration", 600, "Arrival window length (s)")

	// Scenario config
	runCmd.Flags().StringVar(&scenarioConfig, "scenario-config", "", "Path to a scenario YAML file")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "", "Scenario name inside the config file")

	// Outputs
	runCmd.Flags().StringVar(&historyCSV, "history-csv", "", "Write the per-tick history to this CSV file")
	runCmd.Flags().StringVar(&passengerCSV, "passenger-csv", "", "Write per-passenger records to this CSV file")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Write the text summary report to this file")

	rootCmd.AddCommand(runCmd)
}
