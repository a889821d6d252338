package trace

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanet-sim/vanet-sim/sim"
)

func TestCorrelator_EnqueueBeginEnd_ProducesOneSample(t *testing.T) {
	// GIVEN a fresh packet going through the full lifecycle
	c := NewCorrelator(MissingSkip)
	pid := sim.PacketID(7)

	// WHEN enqueue at 1ms, begin at 1.25ms, end at 1.5ms
	c.OnMacEnqueue(pid, time.Millisecond)
	c.OnPhyTxBegin(pid, 1250*time.Microsecond, 0.1)
	c.OnPhyTxEnd(pid, 1500*time.Microsecond)

	// THEN exactly one sample of begin-enqueue is produced and the record is closed
	require.Len(t, c.Samples(), 1)
	assert.Equal(t, DelaySample{Packet: pid, Delay: 250 * time.Microsecond, At: 1500 * time.Microsecond}, c.Samples()[0])
	assert.Equal(t, []time.Duration{250 * time.Microsecond}, c.Delays())
	assert.Equal(t, 0, c.Remnants())
}

func TestCorrelator_NonNegativeDelayProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	c := NewCorrelator(MissingSkip)
	for i := 1; i <= 1000; i++ {
		pid := sim.PacketID(i)
		enq := time.Duration(rng.Int63n(int64(time.Second)))
		begin := enq + time.Duration(rng.Int63n(int64(time.Millisecond)))
		c.OnMacEnqueue(pid, enq)
		c.OnPhyTxBegin(pid, begin, 0.1)
		c.OnPhyTxEnd(pid, begin+100*time.Microsecond)
	}
	require.Len(t, c.Samples(), 1000)
	for _, s := range c.Samples() {
		assert.GreaterOrEqual(t, s.Delay, time.Duration(0))
	}
}

func TestCorrelator_UnknownPacket_IsTolerated(t *testing.T) {
	c := NewCorrelator(MissingSkip)
	assert.NotPanics(t, func() { c.OnPhyTxEnd(sim.PacketID(99), time.Second) })
	assert.Empty(t, c.Samples())
	assert.Equal(t, 1, c.UnknownEnds())
	assert.Equal(t, 0, c.Incomplete())
}

func TestCorrelator_MissingTimestamp_Policies(t *testing.T) {
	tests := []struct {
		name        string
		policy      MissingPolicy
		enqueue     bool
		begin       bool
		wantSamples int
	}{
		{"skip missing enqueue", MissingSkip, false, true, 0},
		{"skip missing begin", MissingSkip, true, false, 0},
		{"zero missing enqueue", MissingZero, false, true, 1},
		{"zero missing begin", MissingZero, true, false, 1},
		{"empty policy defaults to skip", "", false, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCorrelator(tt.policy)
			pid := sim.PacketID(1)
			if tt.enqueue {
				c.OnMacEnqueue(pid, 5*time.Second)
			}
			if tt.begin {
				c.OnPhyTxBegin(pid, 6*time.Second, 0.1)
			}
			c.OnPhyTxEnd(pid, 7*time.Second)

			assert.Len(t, c.Samples(), tt.wantSamples)
			for _, s := range c.Samples() {
				assert.Equal(t, time.Duration(0), s.Delay, "missing timestamps must never leak an absolute time into a sample")
			}
			assert.Equal(t, 1, c.Incomplete())
			assert.Equal(t, 0, c.Remnants())
		})
	}
}

func TestCorrelator_CausalityViolation_IsSurfacedNotClamped(t *testing.T) {
	c := NewCorrelator(MissingSkip)
	pid := sim.PacketID(3)
	c.OnMacEnqueue(pid, 2*time.Second)
	c.OnPhyTxBegin(pid, time.Second, 0.1)
	c.OnPhyTxEnd(pid, 3*time.Second)

	assert.Empty(t, c.Samples())
	assert.Equal(t, 1, c.Violations())
}

func TestCorrelator_BeginBeforeEnqueueNotification_StillCorrelates(t *testing.T) {
	// GIVEN notifications that arrive begin-first for the same instant
	c := NewCorrelator(MissingSkip)
	pid := sim.PacketID(4)
	c.OnPhyTxBegin(pid, time.Second, 0.1)
	c.OnMacEnqueue(pid, time.Second)
	c.OnPhyTxEnd(pid, 2*time.Second)

	require.Len(t, c.Samples(), 1)
	assert.Equal(t, time.Duration(0), c.Samples()[0].Delay)
}

func TestCorrelator_RepeatedBegin_FirstWins(t *testing.T) {
	c := NewCorrelator(MissingSkip)
	pid := sim.PacketID(5)
	c.OnMacEnqueue(pid, 0)
	c.OnPhyTxBegin(pid, 100*time.Microsecond, 0.1)
	c.OnPhyTxBegin(pid, 900*time.Microsecond, 0.1)
	c.OnPhyTxEnd(pid, time.Millisecond)

	require.Len(t, c.Samples(), 1)
	assert.Equal(t, 100*time.Microsecond, c.Samples()[0].Delay)
	assert.Equal(t, 1, c.RepeatedBegins())
}

func TestCorrelator_RepeatedEnqueue_RestartsRecord(t *testing.T) {
	c := NewCorrelator(MissingSkip)
	pid := sim.PacketID(6)
	c.OnMacEnqueue(pid, 0)
	c.OnPhyTxBegin(pid, 10*time.Microsecond, 0.1)
	c.OnMacEnqueue(pid, 50*time.Microsecond)

	rec, ok := c.Record(pid)
	require.True(t, ok)
	enq, hasEnq := rec.MacEnqueue()
	_, hasBegin := rec.PhyBegin()
	assert.True(t, hasEnq)
	assert.Equal(t, 50*time.Microsecond, enq)
	assert.False(t, hasBegin, "restart clears the stale begin")
	assert.Equal(t, 1, c.Restarts())
}

func TestCorrelator_OpenRecords_AreRemnants(t *testing.T) {
	c := NewCorrelator(MissingSkip)
	c.OnMacEnqueue(1, 0)
	c.OnMacEnqueue(2, 0)
	c.OnPhyTxBegin(2, time.Microsecond, 0.1)
	assert.Equal(t, 2, c.Remnants())

	_, ok := c.Record(3)
	assert.False(t, ok)
}

func TestIsValidMissingPolicy(t *testing.T) {
	assert.True(t, IsValidMissingPolicy("skip"))
	assert.True(t, IsValidMissingPolicy("zero"))
	assert.True(t, IsValidMissingPolicy(""))
	assert.False(t, IsValidMissingPolicy("clamp"))
	assert.Equal(t, MissingSkip, NewCorrelator("").Policy())
}
