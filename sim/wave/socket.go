package wave

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/sirupsen/logrus"
)

var (
	// ErrSocketClosed is returned by Send on a closed socket.
	ErrSocketClosed = errors.New("wave: socket closed")
	// ErrNoWifiDevice is returned when a node has no 802.11 device to send on.
	ErrNoWifiDevice = errors.New("wave: node has no wifi device")
	// ErrEmptyPayload is returned by Send for a zero-length payload.
	ErrEmptyPayload = errors.New("wave: empty payload")
)

// Socket is a UDP socket connected to the subnet broadcast address.
type Socket struct {
	node   *Node
	dev    *Device
	dst    netip.AddrPort
	closed bool
	sent   int
}

// NewBroadcastSocket opens a socket on node that sends every datagram to the
// subnet broadcast address on port.
func NewBroadcastSocket(node *Node, port uint16) (*Socket, error) {
	dev, ok := node.WifiDevice()
	if !ok {
		return nil, fmt.Errorf("node %d: %w", node.ID, ErrNoWifiDevice)
	}
	return &Socket{
		node: node,
		dev:  dev,
		dst:  netip.AddrPortFrom(node.network.BroadcastAddr(), port),
	}, nil
}

// NodeID returns the ID of the node the socket belongs to.
func (s *Socket) NodeID() int { return s.node.ID }

// Destination returns the broadcast address and port datagrams are sent to.
func (s *Socket) Destination() netip.AddrPort { return s.dst }

// Sent returns the number of datagrams accepted by the device.
func (s *Socket) Sent() int { return s.sent }

// Close makes every further Send fail.
func (s *Socket) Close() { s.closed = true }

// Send wraps payload in a fresh packet and hands it to the node's device.
// The payload is owned by the packet from here on.
func (s *Socket) Send(payload []byte) error {
	if s.closed {
		return ErrSocketClosed
	}
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	pkt := &Packet{
		ID:      s.node.network.ids.Next(),
		Src:     s.node.Addr,
		Dst:     s.dst,
		Payload: payload,
	}
	if err := s.dev.Enqueue(pkt); err != nil {
		return fmt.Errorf("node %d: send packet %d: %w", s.node.ID, pkt.ID, err)
	}
	s.sent++
	return nil
}

// Sink counts datagrams arriving on one UDP port of a node.
type Sink struct {
	node     *Node
	port     uint16
	received int
	bytes    int
	handlers []func(pkt *Packet, from netip.Addr)
}

// ListenSink binds a sink to port on node.
func ListenSink(node *Node, port uint16) (*Sink, error) {
	if _, taken := node.sinks[port]; taken {
		return nil, fmt.Errorf("node %d: port %d already bound", node.ID, port)
	}
	s := &Sink{node: node, port: port}
	node.sinks[port] = s
	return s, nil
}

// OnReceive registers fn to be called for every datagram the sink accepts.
func (s *Sink) OnReceive(fn func(pkt *Packet, from netip.Addr)) {
	s.handlers = append(s.handlers, fn)
}

// Received returns the number of datagrams accepted.
func (s *Sink) Received() int { return s.received }

// Bytes returns the total payload bytes accepted.
func (s *Sink) Bytes() int { return s.bytes }

func (s *Sink) receive(pkt *Packet, from *Node) {
	s.received++
	s.bytes += pkt.Size()
	logrus.Infof("At time %.6f s, node %d received packet of size %d bytes from %s",
		s.node.network.sim.Now().Seconds(), s.node.ID, pkt.Size(), from.Addr)
	for _, fn := range s.handlers {
		fn(pkt, from.Addr)
	}
}
