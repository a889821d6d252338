// Package sim provides the discrete-event simulation kernel for vanet-sim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Event and the (fireTime, seq) ordered EventQueue
//   - simulator.go: the event loop, Schedule/Stop/Run and simulated time
//   - metrics.go: reduction of MAC access delay samples to a summary
//
// # Architecture
//
// The kernel knows nothing about radios. Sub-packages build on it:
//   - sim/wave/: a simple 802.11p/WAVE stand-in (shared channel, EDCA-style
//     contention, OFDM airtime) that emits per-packet lifecycle notifications
//   - sim/trace/: the Correlator turning MacEnqueue/PhyTxBegin/PhyTxEnd
//     notifications into delay samples
//   - sim/workload/: self-rescheduling broadcast traffic generators
//   - sim/scenario/: wiring of a linear topology run from a Config
//
// Everything runs on simulated time; nothing blocks on wall-clock I/O.
package sim
