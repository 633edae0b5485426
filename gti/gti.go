// Package gti tracks good-time intervals: the wall-clock stretches during
// which an observation's data is valid. Stacked datasets carry the union of
// their operands' intervals.
package gti

import (
	"fmt"
	"sort"
)

// Interval is a half-open [Start, Stop) stretch of valid time, in seconds
// relative to the dataset's reference epoch.
type Interval struct {
	Start float64
	Stop  float64
}

// GTI is an ordered set of good-time intervals.
type GTI struct {
	intervals []Interval
}

// New creates a GTI from intervals. Every interval must have Stop > Start.
func New(intervals []Interval) (*GTI, error) {
	for i, iv := range intervals {
		if !(iv.Stop > iv.Start) {
			return nil, fmt.Errorf("gti: interval %d has stop %g <= start %g", i, iv.Stop, iv.Start)
		}
	}
	out := make([]Interval, len(intervals))
	copy(out, intervals)
	return &GTI{intervals: out}, nil
}

// Empty creates a GTI with no intervals.
func Empty() *GTI { return &GTI{} }

// Len returns the number of intervals.
func (g *GTI) Len() int { return len(g.intervals) }

// Intervals returns a copy of the intervals.
func (g *GTI) Intervals() []Interval {
	out := make([]Interval, len(g.intervals))
	copy(out, g.intervals)
	return out
}

// Copy returns a deep copy.
func (g *GTI) Copy() *GTI {
	return &GTI{intervals: g.Intervals()}
}

// Stack appends other's intervals to g in place. Call Union afterwards to
// merge overlaps.
func (g *GTI) Stack(other *GTI) {
	g.intervals = append(g.intervals, other.intervals...)
}

// Union returns a new GTI with overlapping or touching intervals merged and
// the result sorted by start time.
func (g *GTI) Union() *GTI {
	if len(g.intervals) == 0 {
		return Empty()
	}
	sorted := g.Intervals()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.Stop {
			if iv.Stop > last.Stop {
				last.Stop = iv.Stop
			}
			continue
		}
		merged = append(merged, iv)
	}
	return &GTI{intervals: merged}
}

// TimeSum returns the total valid time in seconds.
func (g *GTI) TimeSum() float64 {
	sum := 0.0
	for _, iv := range g.intervals {
		sum += iv.Stop - iv.Start
	}
	return sum
}
