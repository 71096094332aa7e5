package flight

import "rocket-logger/internal/ticks"

// Scheduler produces fixed-rate "sample due" decisions without cumulative
// drift: each deadline advances by exactly one interval from the previous
// deadline, never from "now", so late loop iterations cannot stretch the
// long-run rate.
//
// At most one slot fires per call. If the loop falls far behind, missed slots
// merge instead of bursting to catch up.
type Scheduler struct {
	interval int32
	next     ticks.T
}

func NewScheduler(intervalMs int32) *Scheduler {
	return &Scheduler{interval: intervalMs}
}

// Start anchors the first deadline at now.
func (s *Scheduler) Start(now ticks.T) {
	s.next = now
}

// Due reports whether a sample slot has been reached and, if so, advances the
// deadline by one interval.
func (s *Scheduler) Due(now ticks.T) bool {
	if ticks.Diff(now, s.next) < 0 {
		return false
	}
	s.next = ticks.Add(s.next, s.interval)
	return true
}
