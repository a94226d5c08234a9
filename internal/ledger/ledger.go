// Package ledger implements the time-indexed residual-capacity ledger: for
// every directed edge, a piecewise-constant function of residual bandwidth
// over time, represented as a sorted sequence of (time, rate) breakpoints.
// Reading is left-closed, right-open — the stored rate holds from a
// breakpoint's time up to (but not including) the next one.
//
// The ledger also tracks the global set of event times at which any edge's
// breakpoints change, since path validation only samples bottleneck rates
// at those instants.
package ledger

import (
	"sort"

	"flowsched/internal/topology"
	"flowsched/pkg/domain"
)

// Ledger is the mutable residual-capacity state the scheduler commits
// admitted flows into. A Ledger is built once per topology and Reset
// between independent scheduling runs so that results never leak across
// runs (batches are scheduled against a clean ledger each time).
type Ledger struct {
	topo        *topology.Topology
	breakpoints map[domain.EdgeKey][]domain.Breakpoint
	eventTimes  []float64
}

// New builds a ledger over topo with every edge initialized to full
// capacity: one breakpoint at time 0 holding the edge's static capacity,
// and a terminal breakpoint at +Inf holding rate 0, so that every lookup
// past the last real event resolves to "no more capacity" rather than
// running off the end of the sequence.
func New(topo *topology.Topology) *Ledger {
	l := &Ledger{topo: topo}
	l.Reset()
	return l
}

// Reset reinitializes the ledger to the all-edges-full-capacity state,
// discarding every committed flow. Used between independent batch runs
// over the same topology.
func (l *Ledger) Reset() {
	l.eventTimes = []float64{0, domain.Infinity}
	l.breakpoints = make(map[domain.EdgeKey][]domain.Breakpoint)
	for _, e := range l.topo.Edges() {
		l.breakpoints[e.Key] = []domain.Breakpoint{
			{Time: 0, Rate: e.Attrs.Capacity},
			{Time: domain.Infinity, Rate: 0},
		}
	}
}

// EventTimes returns the sorted, de-duplicated set of times at which any
// edge's residual capacity changes.
func (l *Ledger) EventTimes() []float64 {
	out := make([]float64, len(l.eventTimes))
	copy(out, l.eventTimes)
	return out
}

// Breakpoints returns a copy of edge key's sorted breakpoint sequence.
func (l *Ledger) Breakpoints(key domain.EdgeKey) []domain.Breakpoint {
	bps := l.breakpoints[key]
	out := make([]domain.Breakpoint, len(bps))
	copy(out, bps)
	return out
}

// ResidualAt returns the residual capacity of edge key holding at time t:
// the rate of the last breakpoint with time <= t.
func (l *Ledger) ResidualAt(key domain.EdgeKey, t float64) float64 {
	bps := l.breakpoints[key]
	idx := sort.Search(len(bps), func(i int) bool { return bps[i].Time > t })
	if idx == 0 {
		return 0
	}
	return bps[idx-1].Rate
}

// exactRateAt returns the rate of the breakpoint at exactly time t for edge
// key, and whether such a breakpoint exists. Bottleneck sampling only
// considers exact breakpoint instants, matching the reference scheduler.
func (l *Ledger) exactRateAt(key domain.EdgeKey, t float64) (float64, bool) {
	bps := l.breakpoints[key]
	idx := sort.Search(len(bps), func(i int) bool { return bps[i].Time >= t })
	if idx < len(bps) && bps[idx].Time == t {
		return bps[idx].Rate, true
	}
	return 0, false
}

// setBreakpoint inserts or overwrites the breakpoint at time t on edge key
// with the given rate, keeping the per-edge sequence sorted by time.
func (l *Ledger) setBreakpoint(key domain.EdgeKey, t, rate float64) {
	bps := l.breakpoints[key]
	idx := sort.Search(len(bps), func(i int) bool { return bps[i].Time >= t })
	if idx < len(bps) && bps[idx].Time == t {
		bps[idx].Rate = rate
		return
	}
	bps = append(bps, domain.Breakpoint{})
	copy(bps[idx+1:], bps[idx:])
	bps[idx] = domain.Breakpoint{Time: t, Rate: rate}
	l.breakpoints[key] = bps
}

// insertEventTime adds t to the global event set if not already present.
func (l *Ledger) insertEventTime(t float64) {
	idx := sort.SearchFloat64s(l.eventTimes, t)
	if idx < len(l.eventTimes) && l.eventTimes[idx] == t {
		return
	}
	l.eventTimes = append(l.eventTimes, 0)
	copy(l.eventTimes[idx+1:], l.eventTimes[idx:])
	l.eventTimes[idx] = t
}

// BottleneckRatePlan samples the pointwise-minimum residual rate across
// edges at every known event time, returning only the samples where at
// least one edge has an exact breakpoint. This is the raw bottleneck
// function the validator integrates and trims into a rate plan.
func (l *Ledger) BottleneckRatePlan(edges []domain.EdgeKey) domain.RatePlan {
	var plan domain.RatePlan
	for _, evt := range l.eventTimes {
		minRate := domain.Infinity
		found := false
		for _, e := range edges {
			if rate, ok := l.exactRateAt(e, evt); ok {
				found = true
				if rate < minRate {
					minRate = rate
				}
			}
		}
		if found && minRate < domain.Infinity {
			plan = append(plan, domain.Breakpoint{Time: evt, Rate: minRate})
		}
	}
	return plan
}

// FindMinimalEdge identifies, among edges, the one with the least
// cumulative deliverable volume between flow's arrival and deadline,
// integrating each edge's own residual-rate function independently. It is
// the fallback used when a candidate path cannot carry the flow's full
// size: the returned edge is excluded from the next path search attempt.
func (l *Ledger) FindMinimalEdge(flow domain.Flow, edges []domain.EdgeKey) (domain.EdgeKey, float64) {
	arrTime := flow.Arrival
	endTime := flow.EndTime()
	minCum := domain.Infinity
	var minEdge domain.EdgeKey

	for _, e := range edges {
		prevTime := arrTime
		prevRate := 0.0
		cum := 0.0
		for _, bp := range l.breakpoints[e] {
			t, rate := bp.Time, bp.Rate
			if t > arrTime {
				if t < endTime {
					cum += prevRate * (t - prevTime)
				} else {
					cum += prevRate * (endTime - prevTime)
					break
				}
			}
			if cum >= minCum {
				break
			} else if t >= endTime {
				break
			}
			prevTime = t
			prevRate = rate
		}
		if cum < minCum {
			minCum = cum
			minEdge = e
		}
	}
	return minEdge, minCum
}

// Commit subtracts plan's allocated rate from every edge in edges over
// time, and folds plan's breakpoint times into the global event set. plan
// must be normalized (AllocTrim'd): its first entry is the (-1, 0)
// sentinel and its last is a (finishTime, 0) entry.
//
// The per-edge update is a three-way merge between the edge's existing
// breakpoint cursor and the plan's breakpoint cursor: wherever the edge
// has a breakpoint before the plan's next one, that breakpoint absorbs the
// plan's current rate; wherever the plan's next breakpoint falls strictly
// between two edge breakpoints, a new edge breakpoint is inserted there
// carrying the residual capacity in effect at that instant.
func (l *Ledger) Commit(edges []domain.EdgeKey, plan domain.RatePlan) {
	for _, bp := range plan {
		l.insertEventTime(bp.Time)
	}
	for _, e := range edges {
		l.commitEdge(e, plan)
	}
}

func (l *Ledger) commitEdge(key domain.EdgeKey, plan domain.RatePlan) {
	bps := l.Breakpoints(key) // fixed snapshot, matching the reference cursor semantics
	allocHdr := 0
	lstHdr := 0
	curCap := 0.0
	if len(bps) > 0 {
		curCap = bps[0].Rate
	}

	for lstHdr < len(bps) && allocHdr < len(plan)-1 {
		t := bps[lstHdr].Time
		rate := bps[lstHdr].Rate
		nextTime := plan[allocHdr+1].Time

		switch {
		case t < nextTime:
			l.setBreakpoint(key, t, rate-plan[allocHdr].Rate)
			curCap = rate
			lstHdr++
		case t == nextTime:
			allocHdr++
			l.setBreakpoint(key, t, rate-plan[allocHdr].Rate)
			curCap = rate
			lstHdr++
		default:
			l.setBreakpoint(key, nextTime, curCap-plan[allocHdr+1].Rate)
			allocHdr++
		}
	}
}
