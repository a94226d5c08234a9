// Package validator turns a candidate path into either a committed rate
// plan or a reason it cannot carry the flow: it samples the path's
// bottleneck rate over time, integrates cumulative deliverable volume, and
// either produces a normalized allocation that finishes the flow before its
// deadline or identifies the path's weakest edge so the caller can exclude
// it and search again.
package validator

import (
	"flowsched/internal/ledger"
	"flowsched/pkg/domain"
)

// Result is the outcome of validating one candidate path against a flow's
// deadline.
type Result struct {
	Admitted bool

	// Set when Admitted is true.
	Edges      []domain.EdgeKey
	Plan       domain.RatePlan
	FinishTime float64

	// Set when Admitted is false: the path's bottleneck edge and the
	// cumulative volume it could deliver, for the caller to exclude and
	// retry the search.
	BottleneckEdge domain.EdgeKey
	BottleneckSize float64
}

// Validate samples path's bottleneck rate at every ledger event time,
// integrates cumulative volume from flow's arrival, and checks whether the
// full flow size is deliverable before the deadline.
//
// If the path can carry the flow, the returned plan is already normalized
// (AllocTrim'd): a leading (-1, 0) sentinel followed by the rate steps that
// actually move data, ending in a (finishTime, 0) entry. If it cannot, the
// path's minimal-capacity edge is identified via l.FindMinimalEdge so the
// caller can mask it out of the next search attempt.
func Validate(l *ledger.Ledger, flow domain.Flow, path domain.Path) Result {
	edges := path.Edges()
	bottleneck := l.BottleneckRatePlan(edges)

	arrTime := flow.Arrival
	endTime := flow.EndTime()

	prevTime := arrTime
	prevRate := 0.0
	cum := 0.0
	curEndTime := arrTime
	alloc := domain.RatePlan{{Time: -1, Rate: 0}}

	for _, bp := range bottleneck {
		t, rate := bp.Time, bp.Rate
		if t > prevTime {
			if t < endTime {
				cum += prevRate * (t - prevTime)
				curEndTime = t
			} else {
				cum += prevRate * (endTime - prevTime)
				curEndTime = endTime
			}
			alloc = append(alloc, domain.Breakpoint{Time: prevTime, Rate: prevRate})

			if cum >= flow.SizeMbit {
				break
			} else if t >= endTime {
				break
			}
		}
		prevTime = t
		prevRate = rate
	}

	if cum >= flow.SizeMbit {
		cum -= prevRate * (curEndTime - prevTime)
		finishTime := (flow.SizeMbit-cum)/prevRate + prevTime
		alloc = append(alloc, domain.Breakpoint{Time: finishTime, Rate: 0})

		return Result{
			Admitted:   true,
			Edges:      edges,
			Plan:       AllocTrim(alloc),
			FinishTime: finishTime,
		}
	}

	edge, size := l.FindMinimalEdge(flow, edges)
	return Result{
		Admitted:       false,
		BottleneckEdge: edge,
		BottleneckSize: size,
	}
}

// AllocTrim cuts alloc at its last positive-rate breakpoint, dropping every
// entry before it, and puts the (-1, 0) sentinel in front, so that a plan
// like [(-1,0), (0,0), (2,0), (5,3), (8,0)] becomes [(-1,0), (5,3), (8,0)].
// A plan with no positive rate is kept whole; the sentinel is added only if
// it does not already start with one.
//
// The cut point is the index of the last positive-rate entry, tracked
// explicitly rather than located by value — a plan can contain duplicate
// (time, rate) pairs, so searching for one by value would find the wrong
// occurrence.
func AllocTrim(alloc domain.RatePlan) domain.RatePlan {
	cut := -1
	for i, bp := range alloc {
		if bp.Rate > 0 {
			cut = i
		}
	}

	trimmed := alloc
	if cut > 0 {
		trimmed = alloc[cut:]
	}

	sentinel := domain.Breakpoint{Time: -1, Rate: 0}
	out := make(domain.RatePlan, 0, len(trimmed)+1)
	if len(trimmed) == 0 || trimmed[0] != sentinel {
		out = append(out, sentinel)
	}
	out = append(out, trimmed...)
	return out
}
