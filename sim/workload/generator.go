package workload

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanet-sim/vanet-sim/sim"
)

// DefaultStartWindow spreads the first sends of all nodes over one second.
const DefaultStartWindow = time.Second

// Sender is where a generator hands its beacons; wave.Socket satisfies it.
type Sender interface {
	Send(payload []byte) error
	NodeID() int
}

// GeneratorConfig parameterises one node's broadcast traffic.
type GeneratorConfig struct {
	PacketSize   int           // bytes per beacon
	MeanInterval time.Duration // mean of the exponential inter-send time
	StartWindow  time.Duration // first send is uniform in [0, StartWindow); 0 means DefaultStartWindow
}

// BroadcastGenerator sends beacons at exponentially distributed intervals
// for as long as the simulator runs. Each firing schedules the next one, so
// at most one of its events is pending at any time.
type BroadcastGenerator struct {
	sim      *sim.Simulator
	sender   Sender
	sampler  ArrivalSampler
	encoder  *BeaconEncoder
	rng      *rand.Rand
	startRNG *rand.Rand
	window   time.Duration

	started    bool
	sent       int
	sendErrors int
}

// NewBroadcastGenerator creates a generator for sender. rng drives the
// intervals; startRNG draws the first offset and may be nil to reuse rng.
func NewBroadcastGenerator(s *sim.Simulator, sender Sender, cfg GeneratorConfig, rng, startRNG *rand.Rand) (*BroadcastGenerator, error) {
	sampler, err := NewExponentialSampler(cfg.MeanInterval)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", sender.NodeID(), err)
	}
	encoder, err := NewBeaconEncoder(sender.NodeID(), cfg.PacketSize)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", sender.NodeID(), err)
	}
	if startRNG == nil {
		startRNG = rng
	}
	window := cfg.StartWindow
	if window <= 0 {
		window = DefaultStartWindow
	}
	return &BroadcastGenerator{
		sim:      s,
		sender:   sender,
		sampler:  sampler,
		encoder:  encoder,
		rng:      rng,
		startRNG: startRNG,
		window:   window,
	}, nil
}

// Start schedules the first firing. Calling it twice panics.
func (g *BroadcastGenerator) Start() {
	if g.started {
		panic(fmt.Sprintf("generator for node %d started twice", g.sender.NodeID()))
	}
	g.started = true
	offset := UniformOffset(g.startRNG, 0, g.window)
	logrus.Debugf("node %d: first beacon at %s", g.sender.NodeID(), offset)
	g.sim.MustSchedule(offset, g.Fire)
}

// Fire sends one beacon and re-arms. A failed send is logged and counted;
// the generator keeps going regardless.
func (g *BroadcastGenerator) Fire() {
	now := g.sim.Now()
	payload, err := g.encoder.Next(now)
	if err == nil {
		err = g.sender.Send(payload)
	}
	if err != nil {
		g.sendErrors++
		logrus.Warnf("[t %012dns] node %d: beacon send failed: %v", now.Nanoseconds(), g.sender.NodeID(), err)
	} else {
		g.sent++
		logrus.Infof("Node %d sent a packet at %.6f s", g.sender.NodeID(), now.Seconds())
	}
	g.sim.MustSchedule(g.sampler.SampleInterval(g.rng), g.Fire)
}

// Sent returns the number of beacons accepted by the sender.
func (g *BroadcastGenerator) Sent() int { return g.sent }

// SendErrors returns the number of failed sends.
func (g *BroadcastGenerator) SendErrors() int { return g.sendErrors }
