package cmd

import (
	"github.com/spf13/pflag"

	"github.com/vanet-sim/vanet-sim/sim/scenario"
)

// buildConfig layers the scenario: defaults, then the --config file, then
// every flag the user set explicitly.
func buildConfig(fs *pflag.FlagSet) (scenario.Config, error) {
	cfg := scenario.DefaultConfig()
	if configPath != "" {
		loaded, err := scenario.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	overrides := map[string]func(){
		"packet-size":       func() { cfg.PacketSize = packetSize },
		"mean-arrival-time": func() { cfg.MeanArrivalTime = meanArrivalTime },
		"n-vehicles":        func() { cfg.NVehicles = nVehicles },
		"headway":           func() { cfg.Headway = headway },
		"simulation-time":   func() { cfg.SimulationTime = simulationTime },
		"seed":              func() { cfg.Seed = seed },
		"data-rate":         func() { cfg.DataRateMbps = dataRate },
		"tx-power":          func() { cfg.TxPowerDbm = txPower },
		"queue-limit":       func() { cfg.QueueLimit = queueLimit },
		"range":             func() { cfg.RangeMeters = rangeMeters },
		"missing-policy":    func() { cfg.MissingPolicy = missingPolicy },
		"report":            func() { cfg.ReportSchedule = reportSchedule },
	}
	for name, apply := range overrides {
		if fs.Changed(name) {
			apply()
		}
	}
	return cfg, cfg.Validate()
}
