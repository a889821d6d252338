package scenario

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/vanet-sim/vanet-sim/sim"
	"github.com/vanet-sim/vanet-sim/sim/trace"
)

// simEpoch is the wall-clock instant simulated time zero is mapped to when
// evaluating cron schedules.
var simEpoch = time.Unix(0, 0).UTC()

func parseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", spec, err)
	}
	return schedule, nil
}

// ProgressReporter logs the delay statistics gathered so far on a cron
// schedule evaluated in simulated time.
type ProgressReporter struct {
	sim      *sim.Simulator
	schedule cron.Schedule
	corr     *trace.Correlator
	reports  int
}

// NewProgressReporter parses spec ("@every 1s", "*/5 * * * *", ...).
func NewProgressReporter(s *sim.Simulator, spec string, corr *trace.Correlator) (*ProgressReporter, error) {
	schedule, err := parseSchedule(spec)
	if err != nil {
		return nil, err
	}
	return &ProgressReporter{sim: s, schedule: schedule, corr: corr}, nil
}

// Start arms the first report.
func (r *ProgressReporter) Start() {
	r.arm()
}

// Reports returns how many reports have been logged.
func (r *ProgressReporter) Reports() int { return r.reports }

func (r *ProgressReporter) arm() {
	now := simEpoch.Add(r.sim.Now())
	next := r.schedule.Next(now)
	if next.IsZero() {
		return
	}
	r.sim.MustSchedule(next.Sub(now), r.report)
}

func (r *ProgressReporter) report() {
	r.reports++
	stats := sim.Summarize(r.corr.Delays())
	logrus.Infof("[t %s] %d packets transmitted, mean MAC access delay %s",
		r.sim.Now(), stats.Count, stats.Mean)
	r.arm()
}
