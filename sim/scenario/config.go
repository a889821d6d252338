// Package scenario wires the kernel, the WAVE layer, the beacon generators
// and the correlator into one runnable linear-topology experiment.
package scenario

import (
	"bytes"
	"fmt"
	"net/netip"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanet-sim/vanet-sim/sim/trace"
	"github.com/vanet-sim/vanet-sim/sim/wave"
	"github.com/vanet-sim/vanet-sim/sim/workload"
)

// Config describes one run: a row of vehicles broadcasting beacons over a
// shared 802.11p channel.
type Config struct {
	PacketSize      int           `yaml:"packet_size"`       // beacon size in bytes
	MeanArrivalTime time.Duration `yaml:"mean_arrival_time"` // mean interval between one node's beacons
	NVehicles       int           `yaml:"n_vehicles"`
	Headway         float64       `yaml:"headway"` // metres between neighbours
	SimulationTime  time.Duration `yaml:"simulation_time"`
	Seed            int64         `yaml:"seed"`

	DataRateMbps float64 `yaml:"data_rate_mbps"`
	TxPowerDbm   float64 `yaml:"tx_power_dbm"`
	QueueLimit   int     `yaml:"queue_limit"`
	RangeMeters  float64 `yaml:"range_meters"` // 0 = every node hears every node
	Port         uint16  `yaml:"port"`
	Subnet       string  `yaml:"subnet"`

	MissingPolicy  string `yaml:"missing_policy"`  // "skip" or "zero"
	ReportSchedule string `yaml:"report_schedule"` // cron spec on simulated time, "" = off
}

// DefaultConfig returns the reference scenario: ten vehicles 12 m apart,
// 1000-byte beacons every 30 s on average, for 20 s.
func DefaultConfig() Config {
	return Config{
		PacketSize:      1000,
		MeanArrivalTime: 30 * time.Second,
		NVehicles:       10,
		Headway:         12,
		SimulationTime:  20 * time.Second,
		Seed:            42,
		DataRateMbps:    27,
		TxPowerDbm:      20,
		QueueLimit:      wave.DefaultQueueLimit,
		RangeMeters:     0,
		Port:            8080,
		Subnet:          "10.1.1.0/24",
		MissingPolicy:   string(trace.MissingSkip),
	}
}

// LoadConfig reads a YAML scenario on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading scenario: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	if c.PacketSize < workload.MinBeaconSize {
		return fmt.Errorf("packet_size must be at least %d bytes, got %d", workload.MinBeaconSize, c.PacketSize)
	}
	if c.MeanArrivalTime <= 0 {
		return fmt.Errorf("mean_arrival_time must be positive, got %s", c.MeanArrivalTime)
	}
	if c.NVehicles < 1 {
		return fmt.Errorf("n_vehicles must be at least 1, got %d", c.NVehicles)
	}
	if c.Headway < 0 {
		return fmt.Errorf("headway must be non-negative, got %g", c.Headway)
	}
	if c.SimulationTime <= 0 {
		return fmt.Errorf("simulation_time must be positive, got %s", c.SimulationTime)
	}
	if _, err := wave.NewOfdm10MHzMode(c.DataRateMbps); err != nil {
		return err
	}
	if c.QueueLimit < 0 {
		return fmt.Errorf("queue_limit must be non-negative, got %d", c.QueueLimit)
	}
	if c.RangeMeters < 0 {
		return fmt.Errorf("range_meters must be non-negative, got %g", c.RangeMeters)
	}
	if c.Port == 0 {
		return fmt.Errorf("port must be non-zero")
	}
	prefix, err := netip.ParsePrefix(c.Subnet)
	if err != nil {
		return fmt.Errorf("subnet: %w", err)
	}
	if !prefix.Addr().Is4() {
		return fmt.Errorf("subnet %s: only IPv4 is supported", c.Subnet)
	}
	if hosts := 1<<(32-prefix.Bits()) - 2; c.NVehicles > hosts {
		return fmt.Errorf("subnet %s has room for %d vehicles, got %d", c.Subnet, hosts, c.NVehicles)
	}
	if !trace.IsValidMissingPolicy(c.MissingPolicy) {
		return fmt.Errorf("unknown missing_policy %q; valid: skip, zero", c.MissingPolicy)
	}
	if c.ReportSchedule != "" {
		if _, err := parseSchedule(c.ReportSchedule); err != nil {
			return fmt.Errorf("report_schedule: %w", err)
		}
	}
	return nil
}
