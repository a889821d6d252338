package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanet-sim/vanet-sim/sim"
	"github.com/vanet-sim/vanet-sim/sim/trace"
)

func TestProgressReporter_FiresOnSimulatedSchedule(t *testing.T) {
	// GIVEN a reporter every simulated second
	s := sim.NewSimulator()
	corr := trace.NewCorrelator(trace.MissingSkip)
	r, err := NewProgressReporter(s, "@every 1s", corr)
	require.NoError(t, err)

	// WHEN 5 simulated seconds pass
	r.Start()
	s.RunUntil(5 * time.Second)

	// THEN it reported at 1s..5s, and the next report is discarded by the stop bound
	assert.Equal(t, 5, r.Reports())
	assert.Equal(t, 1, s.Discarded())
}

func TestProgressReporter_StandardCronSpec(t *testing.T) {
	s := sim.NewSimulator()
	r, err := NewProgressReporter(s, "*/2 * * * *", trace.NewCorrelator(trace.MissingSkip))
	require.NoError(t, err)

	r.Start()
	s.RunUntil(10 * time.Minute)

	// minutes 2, 4, 6, 8, 10
	assert.Equal(t, 5, r.Reports())
}

func TestNewProgressReporter_InvalidSpec(t *testing.T) {
	_, err := NewProgressReporter(sim.NewSimulator(), "not a schedule", trace.NewCorrelator(trace.MissingSkip))
	assert.Error(t, err)
}
