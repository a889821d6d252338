package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.PacketSize)
	assert.Equal(t, 30*time.Second, cfg.MeanArrivalTime)
	assert.Equal(t, 10, cfg.NVehicles)
	assert.Equal(t, 12.0, cfg.Headway)
	assert.Equal(t, 20*time.Second, cfg.SimulationTime)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"packet smaller than header", func(c *Config) { c.PacketSize = 11 }},
		{"zero mean arrival", func(c *Config) { c.MeanArrivalTime = 0 }},
		{"no vehicles", func(c *Config) { c.NVehicles = 0 }},
		{"negative headway", func(c *Config) { c.Headway = -1 }},
		{"zero simulation time", func(c *Config) { c.SimulationTime = 0 }},
		{"unsupported data rate", func(c *Config) { c.DataRateMbps = 54 }},
		{"negative queue limit", func(c *Config) { c.QueueLimit = -1 }},
		{"negative range", func(c *Config) { c.RangeMeters = -5 }},
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"bad subnet", func(c *Config) { c.Subnet = "10.1.1.0" }},
		{"ipv6 subnet", func(c *Config) { c.Subnet = "fd00::/64" }},
		{"subnet too small", func(c *Config) { c.Subnet = "10.1.1.0/29" }},
		{"unknown missing policy", func(c *Config) { c.MissingPolicy = "clamp" }},
		{"bad report schedule", func(c *Config) { c.ReportSchedule = "every second" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// GIVEN a scenario overriding a few fields
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
n_vehicles: 4
mean_arrival_time: 500ms
simulation_time: 10s
missing_policy: zero
`), 0o644))

	// WHEN loaded
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// THEN the overrides apply and the rest keeps its default
	assert.Equal(t, 4, cfg.NVehicles)
	assert.Equal(t, 500*time.Millisecond, cfg.MeanArrivalTime)
	assert.Equal(t, 10*time.Second, cfg.SimulationTime)
	assert.Equal(t, "zero", cfg.MissingPolicy)
	assert.Equal(t, 1000, cfg.PacketSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n_vehicle: 4\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "examples", "linear-topology.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}
