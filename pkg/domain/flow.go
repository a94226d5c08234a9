// Package domain holds the value types shared across the topology, ledger,
// path-search, validator and scheduler packages: flows, nodes, edges,
// piecewise-constant rate breakpoints and the records the scheduler emits.
// Nothing in this package mutates state; every type here is a value object.
package domain

import (
	"fmt"

	"flowsched/pkg/apperror"
)

// Flow is a single transfer request: src, dst, size (Mbit), arrival time and
// deadline duration (both ms). Flows are immutable once constructed.
//
// Rates throughout the system are expressed in Gbps, times in ms and sizes
// in Mbit, so that ms * Gbps = Mbit without unit conversion at the
// integration sites (§3 of the scheduling spec this package implements).
type Flow struct {
	Src              string
	Dst              string
	SizeMbit         float64
	Arrival          float64
	DeadlineDuration float64
}

// EndTime returns arrival + deadline duration, the instant by which the
// flow's size must have been fully delivered.
func (f Flow) EndTime() float64 {
	return f.Arrival + f.DeadlineDuration
}

// String renders a flow the way the batch driver logs it.
func (f Flow) String() string {
	return fmt.Sprintf("%s->%s: %g Mbit in [%g, %g]", f.Src, f.Dst, f.SizeMbit, f.Arrival, f.EndTime())
}

// Node identifies a topology vertex and its layer.
type Node struct {
	ID    string
	Layer Layer
}

// EdgeKey identifies a directed edge by its endpoints. It is the map key
// used by the topology and the ledger so that both can be indexed without
// repeating attribute data.
type EdgeKey struct {
	From string
	To   string
}

// String renders an edge key as "from->to".
func (k EdgeKey) String() string {
	return fmt.Sprintf("%s->%s", k.From, k.To)
}

// EdgeAttrs holds the static, read-only attributes of a directed edge.
// Attributes never change after topology construction (§3 invariant).
type EdgeAttrs struct {
	Capacity float64 // Gbps
	Delay    float64 // ms
	Cost     float64
}

// Path is an ordered sequence of node IDs from source to destination.
type Path []string

// Edges returns the induced directed edge list of the path: for path
// [v0, v1, ..., vk] it returns [(v0,v1), (v1,v2), ..., (v(k-1),vk)].
func (p Path) Edges() []EdgeKey {
	if len(p) < 2 {
		return nil
	}
	edges := make([]EdgeKey, 0, len(p)-1)
	for i := 0; i < len(p)-1; i++ {
		edges = append(edges, EdgeKey{From: p[i], To: p[i+1]})
	}
	return edges
}

// Breakpoint is one (time, rate) sample of a piecewise-constant function.
// Interpretation is always left-closed, right-open: the rate holds from
// this breakpoint's time up to (but not including) the next one.
type Breakpoint struct {
	Time float64
	Rate float64
}

// RatePlan is the ordered sequence of breakpoints describing the rate
// assigned to one flow along its chosen path. A normalized plan (see the
// validator's AllocTrim) always starts with the sentinel (-1, 0) and ends
// with a (finishTime, 0) breakpoint.
type RatePlan []Breakpoint

// IntegratedVolume returns the cumulative volume delivered by the plan from
// its first to its last breakpoint. Used by tests to check conservation
// (§8, testable property 2).
func (p RatePlan) IntegratedVolume() float64 {
	var total float64
	for i := 0; i < len(p)-1; i++ {
		total += p[i].Rate * (p[i+1].Time - p[i].Time)
	}
	return total
}

// FinishTime returns the time of the plan's final breakpoint, i.e. the
// flow's computed finish time. Returns 0 for an empty plan.
func (p RatePlan) FinishTime() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].Time
}

// SuccessRecord is the outcome of an admitted flow.
type SuccessRecord struct {
	Flow       Flow
	Path       Path
	Plan       RatePlan
	FinishTime float64
}

// FailureRecord is the outcome of a rejected flow: the flow plus why no path
// was committed for it. Reason is apperror.CodeNoPath when the routing
// algorithm found no candidate path at all (DR exhausted every path via
// bottleneck exclusion, or ECMP's topology has none to begin with), and
// apperror.CodeInfeasible when a candidate path existed but could not
// deliver the flow's size before its deadline.
type FailureRecord struct {
	Flow   Flow
	Reason apperror.ErrorCode
}
