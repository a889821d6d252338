package wave

import (
	"math/rand"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanet-sim/vanet-sim/sim"
	"github.com/vanet-sim/vanet-sim/sim/internal/testutil"
)

func testDeviceConfig(t *testing.T) DeviceConfig {
	t.Helper()
	mode, err := NewOfdm10MHzMode(27)
	require.NoError(t, err)
	return DeviceConfig{Mode: mode, TxPowerDbm: 20, QueueLimit: DefaultQueueLimit, Edca: DefaultEdcaParams()}
}

type testNet struct {
	sim     *sim.Simulator
	net     *Network
	nodes   []*Node
	devs    []*Device
	sockets []*Socket
	sinks   []*Sink
	obs     *testutil.TxRecorder
}

// newTestNet builds n nodes spaced headway metres apart, each with a wifi
// device, a broadcast socket and a sink on port 8080.
func newTestNet(t *testing.T, n int, headway, rangeMeters float64, cfg DeviceConfig) *testNet {
	t.Helper()
	s := sim.NewSimulator()
	network, err := NewNetwork(s, netip.MustParsePrefix("10.1.1.0/24"), rangeMeters)
	require.NoError(t, err)
	tn := &testNet{sim: s, net: network, obs: &testutil.TxRecorder{}}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		node, err := network.AddNode(float64(i) * headway)
		require.NoError(t, err)
		dev := network.InstallWifi(node, cfg, rng)
		dev.Subscribe(tn.obs)
		sock, err := NewBroadcastSocket(node, 8080)
		require.NoError(t, err)
		sink, err := ListenSink(node, 8080)
		require.NoError(t, err)
		tn.nodes = append(tn.nodes, node)
		tn.devs = append(tn.devs, dev)
		tn.sockets = append(tn.sockets, sock)
		tn.sinks = append(tn.sinks, sink)
	}
	return tn
}
