// Package trace correlates per-packet transmission lifecycle notifications
// into MAC access delay samples.
// This package depends only on the sim kernel's PacketID; it never schedules events.
package trace

import (
	"time"

	"github.com/vanet-sim/vanet-sim/sim"
)

// TxRecord holds at most one MAC enqueue and one PHY begin timestamp for a packet.
type TxRecord struct {
	macEnqueue    time.Duration
	hasMacEnqueue bool
	phyBegin      time.Duration
	hasPhyBegin   bool
}

// MacEnqueue returns the time the packet was handed to the MAC, if seen.
func (r TxRecord) MacEnqueue() (time.Duration, bool) {
	return r.macEnqueue, r.hasMacEnqueue
}

// PhyBegin returns the time the radio started transmitting the packet, if seen.
func (r TxRecord) PhyBegin() (time.Duration, bool) {
	return r.phyBegin, r.hasPhyBegin
}

// Complete reports whether both timestamps are present.
func (r TxRecord) Complete() bool {
	return r.hasMacEnqueue && r.hasPhyBegin
}

// DelaySample is one MAC access delay, PhyTxBegin minus MacEnqueue.
type DelaySample struct {
	Packet sim.PacketID
	Delay  time.Duration
	At     time.Duration // Time of the PhyTxEnd that produced the sample
}
