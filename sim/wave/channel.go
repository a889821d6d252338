package wave

import (
	"math"
	"time"

	"github.com/vanet-sim/vanet-sim/sim"
)

// speedOfLight in metres per second, for propagation delay.
const speedOfLight = 299792458.0

// Channel is the shared medium all devices contend for. Carrier sense is
// global: every device hears every transmission, while reception can be
// limited by RangeMeters.
//
// A transmission that starts at exactly Now is not yet sensed by others, so
// two devices whose backoff expires in the same slot both transmit and collide.
type Channel struct {
	sim         *sim.Simulator
	rangeMeters float64 // 0 means every device receives every frame
	devices     []*Device

	busySince   time.Duration // start of the current busy period
	busyUntil   time.Duration // end of the last transmission on air
	lastTxStart time.Duration
	everBusy    bool

	// idle history before the current busy period, for stations that cannot
	// sense a transmission starting this instant
	prevBusyUntil time.Duration
	prevEverBusy  bool
}

// NewChannel returns an idle channel. rangeMeters <= 0 disables range limiting.
func NewChannel(s *sim.Simulator, rangeMeters float64) *Channel {
	return &Channel{
		sim:         s,
		rangeMeters: max(rangeMeters, 0),
		devices:     make([]*Device, 0),
	}
}

func (c *Channel) attach(d *Device) {
	c.devices = append(c.devices, d)
}

// SensedBusy reports whether a transmission that started before now is still on air.
func (c *Channel) SensedBusy(now time.Duration) bool {
	return c.everBusy && c.busyUntil > now && c.lastTxStart < now
}

// IdleFor returns how long the medium has been idle at now, or the maximum
// duration if nothing has ever been transmitted.
func (c *Channel) IdleFor(now time.Duration) time.Duration {
	everBusy, busyUntil := c.everBusy, c.busyUntil
	if everBusy && c.busySince == now && busyUntil > now {
		everBusy, busyUntil = c.prevEverBusy, c.prevBusyUntil
	}
	if !everBusy {
		return time.Duration(math.MaxInt64)
	}
	if busyUntil > now {
		return 0
	}
	return now - busyUntil
}

// BusyUntil returns the end of the last transmission on air.
func (c *Channel) BusyUntil() time.Duration {
	return c.busyUntil
}

// startTx puts frame on the medium for dur and schedules its reception at
// every other device in range.
func (c *Channel) startTx(from *Device, pkt *Packet, dur time.Duration) {
	now := c.sim.Now()
	if !c.everBusy || c.busyUntil <= now {
		c.prevEverBusy, c.prevBusyUntil = c.everBusy, c.busyUntil
		c.busySince = now
	}
	c.everBusy = true
	c.lastTxStart = now
	c.busyUntil = max(c.busyUntil, now+dur)

	for _, d := range c.devices {
		if d == from {
			continue
		}
		d.mediumBusy(now)

		dist := math.Abs(d.node.Position - from.node.Position)
		if c.rangeMeters > 0 && dist > c.rangeMeters {
			continue
		}
		prop := time.Duration(dist / speedOfLight * float64(time.Second))
		rx := &reception{pkt: pkt, from: from.node}
		c.sim.MustSchedule(prop, func() { d.beginRx(rx) })
		c.sim.MustSchedule(prop+dur, func() { d.endRx(rx) })
	}
}
