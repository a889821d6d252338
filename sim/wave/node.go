package wave

import (
	"fmt"
	"math/rand"
	"net/netip"

	"github.com/vanet-sim/vanet-sim/sim"
)

// Packet is a UDP datagram travelling through the network.
type Packet struct {
	ID      sim.PacketID
	Src     netip.Addr
	Dst     netip.AddrPort
	Payload []byte
}

// Size returns the UDP payload size in bytes.
func (p *Packet) Size() int {
	return len(p.Payload)
}

// Network owns the channel, the nodes and the packet ID counter of one run.
type Network struct {
	sim     *sim.Simulator
	channel *Channel
	subnet  netip.Prefix
	ids     sim.PacketIDAllocator
	nodes   []*Node
}

// NewNetwork creates an empty network on subnet (IPv4 only).
func NewNetwork(s *sim.Simulator, subnet netip.Prefix, rangeMeters float64) (*Network, error) {
	if !subnet.Addr().Is4() {
		return nil, fmt.Errorf("subnet %s: only IPv4 subnets are supported", subnet)
	}
	return &Network{
		sim:     s,
		channel: NewChannel(s, rangeMeters),
		subnet:  subnet.Masked(),
		nodes:   make([]*Node, 0),
	}, nil
}

// Simulator returns the simulator the network schedules on.
func (n *Network) Simulator() *sim.Simulator { return n.sim }

// Channel returns the shared medium.
func (n *Network) Channel() *Channel { return n.channel }

// Nodes returns the nodes in creation order.
func (n *Network) Nodes() []*Node { return n.nodes }

// PacketsCreated returns how many packets have been issued an ID.
func (n *Network) PacketsCreated() uint64 { return n.ids.Issued() }

// BroadcastAddr returns the subnet's directed broadcast address.
func (n *Network) BroadcastAddr() netip.Addr {
	a := n.subnet.Addr().As4()
	hostBits := 32 - n.subnet.Bits()
	v := uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
	v |= uint32(1)<<hostBits - 1
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// AddNode creates a node at position metres along the road and assigns it
// the next host address of the subnet.
func (n *Network) AddNode(position float64) (*Node, error) {
	addr := n.subnet.Addr()
	for i := 0; i <= len(n.nodes); i++ {
		addr = addr.Next()
	}
	if !n.subnet.Contains(addr) || addr == n.BroadcastAddr() {
		return nil, fmt.Errorf("subnet %s exhausted after %d nodes", n.subnet, len(n.nodes))
	}
	node := &Node{
		ID:       len(n.nodes),
		Position: position,
		Addr:     addr,
		network:  n,
		sinks:    make(map[uint16]*Sink),
	}
	node.devices = []NetDevice{&loopback{node: node}}
	n.nodes = append(n.nodes, node)
	return node, nil
}

// InstallWifi attaches an 802.11p device to node.
func (n *Network) InstallWifi(node *Node, cfg DeviceConfig, rng *rand.Rand) *Device {
	d := newDevice(node, n.channel, n.sim, rng, cfg)
	n.channel.attach(d)
	node.devices = append(node.devices, d)
	return d
}

// Node is a vehicle: a fixed position on a straight road, one address and
// its devices.
type Node struct {
	ID       int
	Position float64 // metres along the road
	Addr     netip.Addr

	network *Network
	devices []NetDevice
	sinks   map[uint16]*Sink
}

// Devices returns every device on the node, radio or not.
func (nd *Node) Devices() []NetDevice {
	return nd.devices
}

// WifiDevice returns the node's first 802.11 device.
func (nd *Node) WifiDevice() (*Device, bool) {
	for _, dev := range nd.devices {
		if w, ok := dev.AsWifiDevice(); ok {
			return w, true
		}
	}
	return nil, false
}

func (nd *Node) deliver(pkt *Packet, from *Node) {
	if pkt.Dst.Addr() != nd.Addr && pkt.Dst.Addr() != nd.network.BroadcastAddr() {
		return
	}
	if sink, ok := nd.sinks[pkt.Dst.Port()]; ok {
		sink.receive(pkt, from)
	}
}
