package wave

import (
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanet-sim/vanet-sim/sim"
)

// ErrQueueFull is returned when a frame arrives at a device whose queue is at its limit.
var ErrQueueFull = errors.New("wave: device queue full")

// DefaultQueueLimit matches the usual Wi-Fi MAC queue size.
const DefaultQueueLimit = 500

// DeviceConfig configures the radio of one station.
type DeviceConfig struct {
	Mode       PhyMode
	TxPowerDbm float64
	QueueLimit int // frames; 0 means unlimited
	Edca       EdcaParams
}

// macState is the contention state of a device.
type macState int

const (
	macIdle macState = iota
	macContending
	macTransmitting
)

// reception is one frame arriving at one device.
type reception struct {
	pkt     *Packet
	from    *Node
	corrupt bool
}

// Device is an 802.11p station in OCB mode: one FIFO queue, one access
// category, broadcast only (no acknowledgements, no retries).
//
// A frame that finds the medium idle for at least AIFS is sent at once.
// Otherwise the device draws a backoff in [0, CWMin] slots that counts down
// only while the medium is idle, and freezes whenever another station transmits.
type Device struct {
	node    *Node
	channel *Channel
	sim     *sim.Simulator
	rng     *rand.Rand
	cfg     DeviceConfig

	observers []TxObserver

	queue frameQueue
	state macState
	// backoff is the number of slots left, or -1 when none is drawn
	backoff       int
	countdownFrom time.Duration // when the current countdown started (or will start)
	attemptAt     time.Duration
	attemptGen    uint64

	activeRx []*reception

	sent       int
	dropped    int
	received   int
	collisions int
}

func newDevice(node *Node, ch *Channel, s *sim.Simulator, rng *rand.Rand, cfg DeviceConfig) *Device {
	return &Device{
		node:      node,
		channel:   ch,
		sim:       s,
		rng:       rng,
		cfg:       cfg,
		observers: make([]TxObserver, 0),
		queue:     frameQueue{limit: cfg.QueueLimit},
		backoff:   -1,
	}
}

// Node returns the node the device is installed on.
func (d *Device) Node() *Node { return d.node }

// AsWifiDevice returns the device itself.
func (d *Device) AsWifiDevice() (*Device, bool) { return d, true }

// Subscribe attaches o to the device's MacEnqueue/PhyTxBegin/PhyTxEnd notifications.
func (d *Device) Subscribe(o TxObserver) {
	if o == nil {
		return
	}
	d.observers = append(d.observers, o)
}

// Mode returns the PHY mode the device transmits with.
func (d *Device) Mode() PhyMode { return d.cfg.Mode }

// TxPowerW returns the transmit power in watts.
func (d *Device) TxPowerW() float64 { return DbmToW(d.cfg.TxPowerDbm) }

// QueueLen returns the number of frames waiting for the medium.
func (d *Device) QueueLen() int { return d.queue.Len() }

// Sent returns the number of frames put on air.
func (d *Device) Sent() int { return d.sent }

// Dropped returns the number of frames refused because the queue was full.
func (d *Device) Dropped() int { return d.dropped }

// Received returns the number of frames received intact.
func (d *Device) Received() int { return d.received }

// Collisions returns the number of frames lost to overlapping receptions.
func (d *Device) Collisions() int { return d.collisions }

// Enqueue hands pkt to the MAC.
func (d *Device) Enqueue(pkt *Packet) error {
	now := d.sim.Now()
	if !d.queue.Enqueue(pkt) {
		d.dropped++
		logrus.Warnf("[t %012dns] node %d: queue full (%d frames), dropping packet %d",
			now.Nanoseconds(), d.node.ID, d.queue.Len(), pkt.ID)
		return ErrQueueFull
	}
	logrus.Debugf("[t %012dns] node %d: queue %s", now.Nanoseconds(), d.node.ID, &d.queue)
	for _, o := range d.observers {
		o.OnMacEnqueue(pkt.ID, now)
	}
	if d.state == macIdle {
		d.contend()
	}
	return nil
}

// contend starts or resumes channel access for the head of the queue.
func (d *Device) contend() {
	now := d.sim.Now()
	if d.backoff < 0 {
		if !d.channel.SensedBusy(now) && d.channel.IdleFor(now) >= d.cfg.Edca.AIFS() {
			d.transmit()
			return
		}
		d.backoff = d.rng.Intn(d.cfg.Edca.CWMin + 1)
	}
	d.scheduleAttempt(now)
}

// scheduleAttempt arms the end of the countdown: AIFS after the medium goes
// idle, plus the remaining backoff slots.
func (d *Device) scheduleAttempt(now time.Duration) {
	start := now
	if d.channel.everBusy {
		start = max(now, d.channel.BusyUntil()+d.cfg.Edca.AIFS())
	}
	d.countdownFrom = start
	d.attemptAt = start + time.Duration(d.backoff)*d.cfg.Edca.Slot
	d.attemptGen++
	gen := d.attemptGen
	d.state = macContending
	d.sim.MustSchedule(d.attemptAt-now, func() { d.attempt(gen) })
}

// mediumBusy is called when another station starts transmitting. A device
// whose countdown ends this very instant is not frozen; it transmits too and
// the frames collide.
func (d *Device) mediumBusy(now time.Duration) {
	if d.state != macContending || d.attemptAt == now {
		return
	}
	d.freeze(now)
}

// freeze keeps the slots not yet counted down and re-arms after the busy period.
func (d *Device) freeze(now time.Duration) {
	if now > d.countdownFrom {
		elapsed := int((now - d.countdownFrom) / d.cfg.Edca.Slot)
		d.backoff = max(d.backoff-elapsed, 0)
	}
	d.scheduleAttempt(now)
}

func (d *Device) attempt(gen uint64) {
	if gen != d.attemptGen || d.state != macContending {
		return
	}
	now := d.sim.Now()
	if d.channel.SensedBusy(now) {
		d.freeze(now)
		return
	}
	d.backoff = -1
	d.transmit()
}

func (d *Device) transmit() {
	now := d.sim.Now()
	pkt := d.queue.Dequeue()
	d.state = macTransmitting

	// half duplex: anything being received is lost
	for _, rx := range d.activeRx {
		rx.corrupt = true
	}

	dur := d.cfg.Mode.TxDuration(pkt.Size() + FrameOverhead)
	txPowerW := d.TxPowerW()
	for _, o := range d.observers {
		o.OnPhyTxBegin(pkt.ID, now, txPowerW)
	}
	d.channel.startTx(d, pkt, dur)
	d.sim.MustSchedule(dur, func() { d.endTx(pkt) })
}

func (d *Device) endTx(pkt *Packet) {
	now := d.sim.Now()
	d.sent++
	for _, o := range d.observers {
		o.OnPhyTxEnd(pkt.ID, now)
	}
	d.state = macIdle
	if d.queue.Len() > 0 {
		// post-transmission backoff before the next queued frame
		d.backoff = d.rng.Intn(d.cfg.Edca.CWMin + 1)
		d.contend()
	}
}

func (d *Device) beginRx(rx *reception) {
	if d.state == macTransmitting {
		rx.corrupt = true
	}
	if len(d.activeRx) > 0 {
		rx.corrupt = true
		for _, other := range d.activeRx {
			other.corrupt = true
		}
	}
	d.activeRx = append(d.activeRx, rx)
}

func (d *Device) endRx(rx *reception) {
	for i, other := range d.activeRx {
		if other == rx {
			d.activeRx = append(d.activeRx[:i], d.activeRx[i+1:]...)
			break
		}
	}
	if rx.corrupt {
		d.collisions++
		logrus.Debugf("[t %012dns] node %d: packet %d from node %d lost to collision",
			d.sim.Now().Nanoseconds(), d.node.ID, rx.pkt.ID, rx.from.ID)
		return
	}
	d.received++
	d.node.deliver(rx.pkt, rx.from)
}
