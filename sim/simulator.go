// sim/simulator.go
package sim

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNegativeDelay is returned by Schedule when asked to fire an event in the past.
var ErrNegativeDelay = errors.New("sim: negative scheduling delay")

// noStop is the stop bound of a simulator that runs until its queue drains.
const noStop = time.Duration(math.MaxInt64)

// Simulator is the core object that holds simulated time and the event loop.
// It is single-threaded: every action runs to completion on the goroutine
// that called Run, so state touched only from actions needs no locking.
type Simulator struct {
	clock  time.Duration
	stopAt time.Duration
	// queue holds every pending event, ordered by (fireTime, seq)
	queue   EventQueue
	nextSeq uint64

	executed  uint64
	discarded int
	running   bool
}

// NewSimulator returns a simulator at time zero with no stop bound.
func NewSimulator() *Simulator {
	return &Simulator{
		stopAt: noStop,
		queue:  make(EventQueue, 0),
	}
}

// Now returns the current simulated time, measured from the start of the run.
func (sim *Simulator) Now() time.Duration {
	return sim.clock
}

// Schedule enqueues action to fire delay after Now. Zero delays are allowed and
// fire after every event already scheduled for the current instant.
func (sim *Simulator) Schedule(delay time.Duration, action Action) error {
	if delay < 0 {
		return fmt.Errorf("%w: %v at t=%v", ErrNegativeDelay, delay, sim.clock)
	}
	if action == nil {
		return errors.New("sim: nil action")
	}
	fire := sim.clock + delay
	if fire < sim.clock {
		// overflow past the end of representable time; nothing could ever run it
		fire = noStop
	}
	sim.nextSeq++
	heap.Push(&sim.queue, &Event{fireTime: fire, seq: sim.nextSeq, action: action})
	return nil
}

// MustSchedule is Schedule for callers whose delay is non-negative by
// construction. A rejected delay there is a programming error.
func (sim *Simulator) MustSchedule(delay time.Duration, action Action) {
	if err := sim.Schedule(delay, action); err != nil {
		panic(err)
	}
}

// Stop sets the upper bound of the run. Events due at or before at still
// execute; events due strictly after it are discarded when Run reaches them.
func (sim *Simulator) Stop(at time.Duration) {
	sim.stopAt = at
}

// StopTime returns the current stop bound, or false if none is set.
func (sim *Simulator) StopTime() (time.Duration, bool) {
	return sim.stopAt, sim.stopAt != noStop
}

// Run executes events in (fireTime, seq) order until the queue is empty or the
// next event lies beyond the stop bound.
func (sim *Simulator) Run() {
	if sim.running {
		panic("sim: Run called from inside an action")
	}
	sim.running = true
	defer func() { sim.running = false }()

	for len(sim.queue) > 0 {
		// get the next event to be simulated
		ev := sim.queue[0]
		if ev.fireTime > sim.stopAt {
			break
		}
		heap.Pop(&sim.queue)

		if ev.fireTime < sim.clock {
			panic(fmt.Sprintf("Clock went backwards: %v < %v", ev.fireTime, sim.clock))
		}
		// advance the clock
		sim.clock = ev.fireTime
		logrus.Debugf("[t %012dns] Executing event #%d", sim.clock.Nanoseconds(), ev.seq)
		ev.action()
		sim.executed++
	}

	if n := len(sim.queue); n > 0 {
		sim.discarded += n
		for i := range sim.queue {
			sim.queue[i] = nil
		}
		sim.queue = sim.queue[:0]
		// the run ends at the stop bound even if the last event fired earlier
		sim.clock = max(sim.clock, sim.stopAt)
		logrus.Debugf("[t %012dns] Discarded %d events past the stop bound", sim.clock.Nanoseconds(), n)
	}
	logrus.Infof("[t %012dns] Simulation ended after %d events", sim.clock.Nanoseconds(), sim.executed)
}

// RunUntil sets the stop bound to until and runs.
func (sim *Simulator) RunUntil(until time.Duration) {
	sim.Stop(until)
	sim.Run()
}

// Pending returns the number of events waiting in the queue.
func (sim *Simulator) Pending() int {
	return len(sim.queue)
}

// Executed returns the number of events run so far.
func (sim *Simulator) Executed() uint64 {
	return sim.executed
}

// Discarded returns the number of events dropped because they were due after
// the stop bound.
func (sim *Simulator) Discarded() int {
	return sim.discarded
}
