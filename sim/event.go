package sim

import "time"

// Action is the work carried by an event. It runs to completion on the
// simulator goroutine and may schedule further events.
type Action func()

// Event is a pending action paired with its fire time and insertion order.
// Events are owned by the EventQueue until they fire.
type Event struct {
	fireTime time.Duration // Simulated time at which the action runs
	seq      uint64        // Insertion counter, breaks fireTime ties FIFO
	action   Action
}

// FireTime returns the simulated time the event is due.
func (e *Event) FireTime() time.Duration {
	return e.fireTime
}

// Seq returns the insertion sequence number of the event.
func (e *Event) Seq() uint64 {
	return e.seq
}

// EventQueue implements heap.Interface and orders events by (fireTime, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []*Event

func (eq EventQueue) Len() int { return len(eq) }

// Less orders by fire time first, then by insertion order so that events
// scheduled for the same instant run in the order they were scheduled.
func (eq EventQueue) Less(i, j int) bool {
	if eq[i].fireTime != eq[j].fireTime {
		return eq[i].fireTime < eq[j].fireTime
	}
	return eq[i].seq < eq[j].seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(*Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eq = old[0 : n-1]
	return item
}
