// Package testutil provides shared test infrastructure for the simulator:
// a recording trace observer and tolerance assertions used across the sim/
// test packages.
package testutil

import (
	"bytes"
	"math"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanet-sim/vanet-sim/sim"
)

// TxEvent is one notification seen by a TxRecorder.
type TxEvent struct {
	Kind string // "enqueue", "begin" or "end"
	PID  sim.PacketID
	At   time.Duration
}

// TxRecorder is a trace observer that keeps every notification in arrival order.
type TxRecorder struct {
	Events []TxEvent
}

func (r *TxRecorder) OnMacEnqueue(pid sim.PacketID, t time.Duration) {
	r.Events = append(r.Events, TxEvent{"enqueue", pid, t})
}

func (r *TxRecorder) OnPhyTxBegin(pid sim.PacketID, t time.Duration, _ float64) {
	r.Events = append(r.Events, TxEvent{"begin", pid, t})
}

func (r *TxRecorder) OnPhyTxEnd(pid sim.PacketID, t time.Duration) {
	r.Events = append(r.Events, TxEvent{"end", pid, t})
}

// At returns the time of the first kind notification for pid, failing the
// test if there is none.
func (r *TxRecorder) At(t *testing.T, kind string, pid sim.PacketID) time.Duration {
	t.Helper()
	for _, e := range r.Events {
		if e.Kind == kind && e.PID == pid {
			return e.At
		}
	}
	t.Fatalf("no %s notification for packet %d", kind, pid)
	return 0
}

// Count returns the number of kind notifications.
func (r *TxRecorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// CaptureLogs redirects the standard logrus logger into the returned buffer at
// level until the test ends.
func CaptureLogs(t *testing.T, level logrus.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(level)
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(prev)
	})
	return &buf
}
