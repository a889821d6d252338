package scenario

import (
	"fmt"
	"io"
	"math/rand"
	"net/netip"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanet-sim/vanet-sim/sim"
	"github.com/vanet-sim/vanet-sim/sim/trace"
	"github.com/vanet-sim/vanet-sim/sim/wave"
	"github.com/vanet-sim/vanet-sim/sim/workload"
)

// Result is everything a finished run reports.
type Result struct {
	Summary sim.SummaryStats
	Samples []trace.DelaySample

	Sent       int // beacons accepted by a device
	SendErrors int // beacons refused (queue full)
	Received   int // beacons delivered to a sink
	Lost       int // sequence gaps seen by sinks
	Dropped    int
	Collisions int

	Incomplete int // records ended with a timestamp missing
	Violations int // records whose PHY begin preceded their enqueue
	Remnants   int // records still open when the run stopped

	EventsExecuted  uint64
	EventsDiscarded int
	SimulatedTime   time.Duration
}

// Print writes the delay summary followed by the network counters.
func (r *Result) Print(w io.Writer) {
	r.Summary.Print(w)
	fmt.Fprintln(w, "=== Network ===")
	fmt.Fprintf(w, "Beacons sent: %d (send errors: %d)\n", r.Sent, r.SendErrors)
	fmt.Fprintf(w, "Beacons received: %d (lost: %d, collisions: %d)\n", r.Received, r.Lost, r.Collisions)
	fmt.Fprintf(w, "Frames dropped at MAC queue: %d\n", r.Dropped)
	if r.Incomplete+r.Violations+r.Remnants > 0 {
		fmt.Fprintf(w, "Trace records incomplete: %d, causality violations: %d, open at end: %d\n",
			r.Incomplete, r.Violations, r.Remnants)
	}
	fmt.Fprintf(w, "Events executed: %d (discarded at stop: %d)\n", r.EventsExecuted, r.EventsDiscarded)
}

// vehicle bundles the per-node pieces Run needs to read back.
type vehicle struct {
	node    *wave.Node
	sink    *wave.Sink
	monitor *workload.BeaconMonitor
	gen     *workload.BroadcastGenerator
}

// Run builds the network described by cfg, simulates it for
// cfg.SimulationTime and summarises the MAC access delays.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	subnet := netip.MustParsePrefix(cfg.Subnet)
	mode, err := wave.NewOfdm10MHzMode(cfg.DataRateMbps)
	if err != nil {
		return nil, err
	}

	s := sim.NewSimulator()
	rngs := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	network, err := wave.NewNetwork(s, subnet, cfg.RangeMeters)
	if err != nil {
		return nil, err
	}
	devCfg := wave.DeviceConfig{
		Mode:       mode,
		TxPowerDbm: cfg.TxPowerDbm,
		QueueLimit: cfg.QueueLimit,
		Edca:       wave.DefaultEdcaParams(),
	}
	genCfg := workload.GeneratorConfig{
		PacketSize:   cfg.PacketSize,
		MeanInterval: cfg.MeanArrivalTime,
	}
	macRNG := rngs.ForSubsystem(sim.SubsystemMAC)
	startRNG := rngs.ForSubsystem(sim.SubsystemStart)

	vehicles := make([]vehicle, 0, cfg.NVehicles)
	for i := 0; i < cfg.NVehicles; i++ {
		v, err := addVehicle(s, network, float64(i)*cfg.Headway, cfg.Port, devCfg, genCfg,
			macRNG, rngs.ForSubsystem(sim.SubsystemNode(i)), startRNG)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	logrus.Infof("Created %d vehicles %gm apart on %s, %s", cfg.NVehicles, cfg.Headway, subnet, mode.Name())

	corr := trace.NewCorrelator(trace.MissingPolicy(cfg.MissingPolicy))
	for _, node := range network.Nodes() {
		for _, dev := range node.Devices() {
			if w, ok := dev.AsWifiDevice(); ok {
				w.Subscribe(corr)
			}
		}
	}

	for _, v := range vehicles {
		v.gen.Start()
	}
	if cfg.ReportSchedule != "" {
		reporter, err := NewProgressReporter(s, cfg.ReportSchedule, corr)
		if err != nil {
			return nil, err
		}
		reporter.Start()
	}

	s.RunUntil(cfg.SimulationTime)

	res := &Result{
		Summary:         sim.Summarize(corr.Delays()),
		Samples:         corr.Samples(),
		Incomplete:      corr.Incomplete(),
		Violations:      corr.Violations(),
		Remnants:        corr.Remnants(),
		EventsExecuted:  s.Executed(),
		EventsDiscarded: s.Discarded(),
		SimulatedTime:   s.Now(),
	}
	for _, v := range vehicles {
		res.Sent += v.gen.Sent()
		res.SendErrors += v.gen.SendErrors()
		res.Received += v.sink.Received()
		res.Lost += v.monitor.Lost()
		if dev, ok := v.node.WifiDevice(); ok {
			res.Dropped += dev.Dropped()
			res.Collisions += dev.Collisions()
		}
	}
	if res.Remnants > 0 {
		logrus.Infof("%d packets were still queued or on air at %s", res.Remnants, cfg.SimulationTime)
	}
	return res, nil
}

func addVehicle(s *sim.Simulator, network *wave.Network, position float64, port uint16,
	devCfg wave.DeviceConfig, genCfg workload.GeneratorConfig, macRNG, rng, startRNG *rand.Rand) (vehicle, error) {
	node, err := network.AddNode(position)
	if err != nil {
		return vehicle{}, err
	}
	network.InstallWifi(node, devCfg, macRNG)

	sock, err := wave.NewBroadcastSocket(node, port)
	if err != nil {
		return vehicle{}, err
	}
	sink, err := wave.ListenSink(node, port)
	if err != nil {
		return vehicle{}, err
	}
	monitor := workload.NewBeaconMonitor()
	sink.OnReceive(func(pkt *wave.Packet, from netip.Addr) {
		if err := monitor.Observe(pkt.Payload); err != nil {
			logrus.Warnf("node %d: datagram from %s: %v", node.ID, from, err)
		}
	})

	gen, err := workload.NewBroadcastGenerator(s, sock, genCfg, rng, startRNG)
	if err != nil {
		return vehicle{}, err
	}
	return vehicle{node: node, sink: sink, monitor: monitor, gen: gen}, nil
}
