package trace

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanet-sim/vanet-sim/sim"
)

// Correlator turns the MacEnqueue / PhyTxBegin / PhyTxEnd notification
// streams into MAC access delay samples. It owns its record store and
// sample sequence; every method must be called from the simulator goroutine.
//
// Ordering policy for a single packet:
//   - a MacEnqueue for a packet with an open record restarts the record
//   - the first PhyTxBegin wins; repeats (retransmissions) are ignored
//   - PhyTxEnd closes the record, whether or not a sample came out of it
type Correlator struct {
	policy  MissingPolicy
	records map[sim.PacketID]*TxRecord
	samples []DelaySample

	incomplete  int // PhyTxEnd with one timestamp missing
	violations  int // PhyTxBegin earlier than MacEnqueue
	unknownEnds int // PhyTxEnd for a packet never seen
	restarts    int
	repeatBegin int
}

// NewCorrelator returns an empty correlator applying policy to records
// that are incomplete at PhyTxEnd. An empty policy means MissingSkip.
func NewCorrelator(policy MissingPolicy) *Correlator {
	if policy == "" {
		policy = MissingSkip
	}
	return &Correlator{
		policy:  policy,
		records: make(map[sim.PacketID]*TxRecord),
		samples: make([]DelaySample, 0),
	}
}

// Policy returns the missing-timestamp policy in force.
func (c *Correlator) Policy() MissingPolicy {
	return c.policy
}

// OnMacEnqueue records that pid was handed to medium-access logic at t.
func (c *Correlator) OnMacEnqueue(pid sim.PacketID, t time.Duration) {
	rec, ok := c.records[pid]
	if !ok {
		c.records[pid] = &TxRecord{macEnqueue: t, hasMacEnqueue: true}
		return
	}
	if rec.hasMacEnqueue {
		logrus.Debugf("trace: packet %d re-enqueued at %v; restarting its record", pid, t)
		c.restarts++
		*rec = TxRecord{}
	}
	rec.macEnqueue, rec.hasMacEnqueue = t, true
}

// OnPhyTxBegin records that the radio began transmitting pid at t.
// txPowerW is part of the notification payload but plays no role in the delay.
func (c *Correlator) OnPhyTxBegin(pid sim.PacketID, t time.Duration, txPowerW float64) {
	rec, ok := c.records[pid]
	if !ok {
		rec = &TxRecord{}
		c.records[pid] = rec
	}
	if rec.hasPhyBegin {
		c.repeatBegin++
		return
	}
	rec.phyBegin, rec.hasPhyBegin = t, true
}

// OnPhyTxEnd closes the record for pid and, when both timestamps are known,
// appends the access delay to the sample sequence.
func (c *Correlator) OnPhyTxEnd(pid sim.PacketID, t time.Duration) {
	rec, ok := c.records[pid]
	if !ok {
		c.unknownEnds++
		return
	}
	delete(c.records, pid)

	if !rec.Complete() {
		c.incomplete++
		if c.policy == MissingZero {
			c.append(pid, 0, t)
			return
		}
		logrus.Warnf("trace: packet %d ended at %v with an incomplete record (enqueue seen: %t, begin seen: %t); sample dropped",
			pid, t, rec.hasMacEnqueue, rec.hasPhyBegin)
		return
	}

	delay := rec.phyBegin - rec.macEnqueue
	if delay < 0 {
		c.violations++
		logrus.Errorf("trace: causality violated for packet %d: PhyTxBegin %v precedes MacEnqueue %v",
			pid, rec.phyBegin, rec.macEnqueue)
		return
	}
	c.append(pid, delay, t)
}

func (c *Correlator) append(pid sim.PacketID, delay, at time.Duration) {
	c.samples = append(c.samples, DelaySample{Packet: pid, Delay: delay, At: at})
	logrus.Infof("Packet %d took %dus", pid, delay.Microseconds())
}

// Samples returns the delay samples in the order they were produced.
// The slice is the correlator's own storage and must not be modified.
func (c *Correlator) Samples() []DelaySample {
	return c.samples
}

// Delays returns a copy of the sample delays, ready for sim.Summarize.
func (c *Correlator) Delays() []time.Duration {
	out := make([]time.Duration, len(c.samples))
	for i, s := range c.samples {
		out[i] = s.Delay
	}
	return out
}

// Record returns the open record for pid, if any.
func (c *Correlator) Record(pid sim.PacketID) (TxRecord, bool) {
	rec, ok := c.records[pid]
	if !ok {
		return TxRecord{}, false
	}
	return *rec, true
}

// Remnants returns how many records are still open, e.g. frames queued or on
// air when the run stopped.
func (c *Correlator) Remnants() int {
	return len(c.records)
}

// Incomplete returns how many PhyTxEnd notifications found a timestamp missing.
func (c *Correlator) Incomplete() int {
	return c.incomplete
}

// Violations returns how many records had PhyTxBegin before MacEnqueue.
func (c *Correlator) Violations() int {
	return c.violations
}

// UnknownEnds returns how many PhyTxEnd notifications had no record at all.
func (c *Correlator) UnknownEnds() int {
	return c.unknownEnds
}

// Restarts returns how many records were restarted by a repeated MacEnqueue.
func (c *Correlator) Restarts() int {
	return c.restarts
}

// RepeatedBegins returns how many PhyTxBegin notifications were ignored
// because the record already had one.
func (c *Correlator) RepeatedBegins() int {
	return c.repeatBegin
}
