package wave

import (
	"fmt"
	"strings"
)

// frameQueue is the drop-tail FIFO of frames waiting for the medium on one
// device.
type frameQueue struct {
	frames []*Packet
	limit  int // 0 means unlimited
}

// Enqueue appends p, or reports false if the queue is at its limit.
func (q *frameQueue) Enqueue(p *Packet) bool {
	if q.limit > 0 && len(q.frames) >= q.limit {
		return false
	}
	q.frames = append(q.frames, p)
	return true
}

// Dequeue removes and returns the head frame, or nil if the queue is empty.
func (q *frameQueue) Dequeue() *Packet {
	if len(q.frames) == 0 {
		return nil
	}
	p := q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]
	return p
}

// Len returns the number of frames in the queue.
func (q *frameQueue) Len() int {
	return len(q.frames)
}

func (q *frameQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range q.frames {
		sb.WriteString(fmt.Sprint(p.ID))
		if i < len(q.frames)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
