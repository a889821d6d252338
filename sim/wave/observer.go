package wave

import (
	"time"

	"github.com/vanet-sim/vanet-sim/sim"
)

// TxObserver receives the transmission lifecycle of every frame a device sends.
// Notifications for one packet arrive in the order MacEnqueue, PhyTxBegin,
// PhyTxEnd, on the simulator goroutine.
type TxObserver interface {
	// OnMacEnqueue fires when the packet is handed to the MAC.
	OnMacEnqueue(pid sim.PacketID, t time.Duration)
	// OnPhyTxBegin fires when the radio starts transmitting the packet.
	OnPhyTxBegin(pid sim.PacketID, t time.Duration, txPowerW float64)
	// OnPhyTxEnd fires when the radio has finished transmitting the packet.
	OnPhyTxEnd(pid sim.PacketID, t time.Duration)
}

// NetDevice is anything attached to a node. Radio-specific behaviour is
// reached through a capability query rather than a type assertion.
type NetDevice interface {
	Node() *Node
	// AsWifiDevice returns the device's 802.11 side, or false if it has none.
	AsWifiDevice() (*Device, bool)
}

// loopback is the non-radio device every node carries at index 0.
type loopback struct {
	node *Node
}

func (l *loopback) Node() *Node { return l.node }

func (l *loopback) AsWifiDevice() (*Device, bool) { return nil, false }
