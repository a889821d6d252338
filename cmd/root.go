package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vanet-sim/vanet-sim/sim/scenario"
)

var (
	// Scenario flags; defaults mirror scenario.DefaultConfig
	packetSize      int           // Beacon size in bytes
	meanArrivalTime time.Duration // Mean interval between one vehicle's beacons
	nVehicles       int           // Number of vehicles in the row
	headway         float64       // Metres between neighbouring vehicles
	simulationTime  time.Duration // Simulated duration
	seed            int64         // Master seed for every random stream

	// Radio flags
	dataRate    float64 // OFDM 10 MHz data rate in Mbps
	txPower     float64 // Transmit power in dBm
	queueLimit  int     // MAC queue size in frames
	rangeMeters float64 // Reception range, 0 = unlimited

	missingPolicy  string // What the correlator does with half-traced packets
	reportSchedule string // Cron spec for interim reports on simulated time
	configPath     string // YAML scenario file
	logLevel       string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "vanet-sim",
	Short: "Discrete-event simulator for 802.11p vehicular broadcast networks",
}

// runCmd runs one scenario built from defaults, an optional YAML file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Measure MAC access delay for broadcast beacons in a linear topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			return err
		}
		logrus.Infof("Starting simulation: %d vehicles, %d-byte beacons, mean interval %s, duration %s, seed %d",
			cfg.NVehicles, cfg.PacketSize, cfg.MeanArrivalTime, cfg.SimulationTime, cfg.Seed)

		startTime := time.Now()
		res, err := scenario.Run(cfg)
		if err != nil {
			return err
		}
		res.Print(cmd.OutOrStdout())
		logrus.Infof("Simulation complete in %s wall-clock.", time.Since(startTime).Round(time.Millisecond))
		return nil
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags to their variables and resets each
// variable to its default.
func registerRunFlags(fs *pflag.FlagSet) {
	def := scenario.DefaultConfig()

	fs.IntVar(&packetSize, "packet-size", def.PacketSize, "Beacon size in bytes")
	fs.DurationVar(&meanArrivalTime, "mean-arrival-time", def.MeanArrivalTime, "Mean interval between a vehicle's beacons")
	fs.IntVar(&nVehicles, "n-vehicles", def.NVehicles, "Number of vehicles")
	fs.Float64Var(&headway, "headway", def.Headway, "Distance between neighbouring vehicles (m)")
	fs.DurationVar(&simulationTime, "simulation-time", def.SimulationTime, "Simulated duration")
	fs.Int64Var(&seed, "seed", def.Seed, "Seed for every random stream")

	fs.Float64Var(&dataRate, "data-rate", def.DataRateMbps, "OFDM 10 MHz data rate in Mbps (3, 4.5, 6, 9, 12, 18, 24, 27)")
	fs.Float64Var(&txPower, "tx-power", def.TxPowerDbm, "Transmit power (dBm)")
	fs.IntVar(&queueLimit, "queue-limit", def.QueueLimit, "MAC queue size in frames (0 = unlimited)")
	fs.Float64Var(&rangeMeters, "range", def.RangeMeters, "Reception range in metres (0 = unlimited)")

	fs.StringVar(&missingPolicy, "missing-policy", def.MissingPolicy, "Handling of packets missing a timestamp (skip, zero)")
	fs.StringVar(&reportSchedule, "report", def.ReportSchedule, "Cron spec for interim reports on simulated time, e.g. \"@every 5s\"")
	fs.StringVar(&configPath, "config", "", "YAML scenario file; explicit flags override it")
	fs.StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd.Flags())

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
