package workload

import (
	"fmt"
	"time"

	"github.com/pion/rtp"
)

// MinBeaconSize is the fixed RTP header; a beacon cannot be smaller.
const MinBeaconSize = 12

// beaconPayloadType is taken from the dynamic RTP range.
const beaconPayloadType = 96

// BeaconEncoder builds the fixed-size beacons one node broadcasts. Each beacon
// is an RTP packet: SSRC is the node ID, the sequence number counts the
// node's beacons and the timestamp is the simulated send time in
// microseconds. Zero payload pads the packet to the configured size.
type BeaconEncoder struct {
	ssrc uint32
	seq  uint16
	size int
}

// NewBeaconEncoder returns an encoder for node producing size-byte beacons.
func NewBeaconEncoder(nodeID int, size int) (*BeaconEncoder, error) {
	if size < MinBeaconSize {
		return nil, fmt.Errorf("beacon size %d is below the %d-byte RTP header", size, MinBeaconSize)
	}
	if nodeID < 0 {
		return nil, fmt.Errorf("invalid node id %d", nodeID)
	}
	return &BeaconEncoder{ssrc: uint32(nodeID), size: size}, nil
}

// Size returns the encoded size of every beacon.
func (e *BeaconEncoder) Size() int { return e.size }

// Next encodes the beacon sent at now and advances the sequence number.
func (e *BeaconEncoder) Next(now time.Duration) ([]byte, error) {
	pkt := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    beaconPayloadType,
			SequenceNumber: e.seq,
			Timestamp:      uint32(now.Microseconds()),
			SSRC:           e.ssrc,
		},
	}
	pkt.Payload = make([]byte, e.size-pkt.Header.MarshalSize())
	buf, err := pkt.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode beacon %d of node %d: %w", e.seq, e.ssrc, err)
	}
	e.seq++
	return buf, nil
}

// BeaconMonitor decodes the beacons arriving at one sink and counts the
// sequence numbers it never saw, per sender.
type BeaconMonitor struct {
	last      map[uint32]uint16
	received  int
	lost      int
	malformed int
}

// NewBeaconMonitor returns an empty monitor.
func NewBeaconMonitor() *BeaconMonitor {
	return &BeaconMonitor{last: make(map[uint32]uint16)}
}

// Observe decodes one received datagram. Late or duplicate beacons are
// counted as received but never reduce the loss count.
func (m *BeaconMonitor) Observe(payload []byte) error {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(payload); err != nil {
		m.malformed++
		return fmt.Errorf("decode beacon: %w", err)
	}
	m.received++

	prev, seen := m.last[pkt.SSRC]
	if !seen {
		m.last[pkt.SSRC] = pkt.SequenceNumber
		return nil
	}
	// serial number arithmetic: forward distance modulo 2^16
	step := pkt.SequenceNumber - prev
	if step == 0 || step >= 0x8000 {
		return nil
	}
	m.lost += int(step) - 1
	m.last[pkt.SSRC] = pkt.SequenceNumber
	return nil
}

// Received returns the number of beacons decoded.
func (m *BeaconMonitor) Received() int { return m.received }

// Lost returns the number of sequence numbers skipped across all senders.
func (m *BeaconMonitor) Lost() int { return m.lost }

// Malformed returns the number of datagrams that were not beacons.
func (m *BeaconMonitor) Malformed() int { return m.malformed }

// Senders returns the number of distinct senders heard.
func (m *BeaconMonitor) Senders() int { return len(m.last) }
