// Package scheduler implements the batch flow-admission loop: for each flow
// in a sorted order, search for a path and validate it against the ledger.
// DR retries iteratively, excluding the validated path's bottleneck edge and
// searching again, until a path is found or none remain. ECMP routes a flow
// over a single randomly chosen shortest path and fails it immediately on a
// failed validation, with no exclusion-and-retry loop.
//
// Scheduler is NOT safe for concurrent use — a single run mutates its
// ledger and should be driven by one goroutine. Run a batch to completion,
// inspect the result, then Reset before the next independent run.
package scheduler

import (
	"context"
	"sort"
	"time"

	"flowsched/internal/ledger"
	"flowsched/internal/search"
	"flowsched/internal/topology"
	"flowsched/internal/validator"
	"flowsched/pkg/apperror"
	"flowsched/pkg/domain"
)

// Algorithm selects the routing strategy used to admit flows.
type Algorithm int

const (
	// DR routes every flow over a single min-hop path, excluding the
	// bottleneck edge and retrying when that path can't carry the flow.
	DR Algorithm = iota
	// ECMP routes every flow over one path drawn at random from the full
	// set of min-hop paths, validated once with no retry on failure.
	ECMP
)

// Order selects how a batch's flows are sorted before routing.
type Order int

const (
	// OrderBySize sorts ascending by flow size (DR offline).
	OrderBySize Order = iota
	// OrderByArrival sorts ascending by (arrival, end time) (DR online).
	OrderByArrival
	// OrderByArrivalThenSize sorts ascending by (arrival, size) (ECMP).
	OrderByArrivalThenSize
	// OrderNone preserves input order.
	OrderNone
)

// Options configures a Scheduler's behavior.
//
// A nil *Options passed to New is replaced by DefaultOptions(); a zero
// Options value is also usable (DR, OrderBySize, no timeout).
// Options are chained with the builder pattern:
//
//	opts := DefaultOptions().WithAlgorithm(ECMP).WithTimeout(5 * time.Second)
type Options struct {
	// Algorithm selects DR or ECMP routing. Default: DR.
	Algorithm Algorithm

	// Order selects the flow sort order applied before routing. Default:
	// OrderBySize.
	Order Order

	// Timeout bounds the wall-clock time a single RunBatch call may take.
	// Zero means no timeout beyond ctx's own deadline. Default: 30s.
	Timeout time.Duration

	// RandSource supplies the randomness ECMP uses to pick among equal-cost
	// paths. Default: nil, in which case ECMP always takes the first
	// enumerated path. Set it with WithRandSource; a seeded source makes
	// runs reproducible.
	RandSource RandSource
}

// RandSource is the minimal randomness surface the scheduler needs; it is
// satisfied by *rand.Rand (golang.org/x/exp/rand) as used by the workload
// generator, so callers can share one seeded source across both.
type RandSource interface {
	Intn(n int) int
}

// DefaultOptions returns an Options with DR routing, ascending-size
// ordering, and a 30 second timeout.
func DefaultOptions() *Options {
	return &Options{
		Algorithm: DR,
		Order:     OrderBySize,
		Timeout:   30 * time.Second,
	}
}

// WithAlgorithm sets Algorithm and returns the options for chaining.
func (o *Options) WithAlgorithm(a Algorithm) *Options {
	o.Algorithm = a
	return o
}

// WithOrder sets Order and returns the options for chaining.
func (o *Options) WithOrder(order Order) *Options {
	o.Order = order
	return o
}

// WithTimeout sets Timeout and returns the options for chaining.
func (o *Options) WithTimeout(d time.Duration) *Options {
	o.Timeout = d
	return o
}

// WithRandSource sets RandSource and returns the options for chaining.
func (o *Options) WithRandSource(r RandSource) *Options {
	o.RandSource = r
	return o
}

// Result is the outcome of scheduling a batch of flows.
type Result struct {
	Admitted []domain.SuccessRecord
	Rejected []domain.FailureRecord
}

// Scheduler admits a batch of flows against a topology's shared ledger.
type Scheduler struct {
	topo   *topology.Topology
	ledger *ledger.Ledger
	opts   *Options
}

// New creates a Scheduler over topo with a fresh ledger. opts may be nil to
// use DefaultOptions().
func New(topo *topology.Topology, opts *Options) *Scheduler {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Scheduler{
		topo:   topo,
		ledger: ledger.New(topo),
		opts:   opts,
	}
}

// Reset discards all committed flows, returning the scheduler's ledger to
// full capacity. Call between independent batch runs over the same
// topology so results never leak across runs.
func (s *Scheduler) Reset() {
	s.ledger.Reset()
}

// Ledger exposes the scheduler's residual-capacity ledger, mainly for
// inspection in tests and reporting.
func (s *Scheduler) Ledger() *ledger.Ledger {
	return s.ledger
}

// RunBatch sorts flows per opts.Order, routes each with opts.Algorithm,
// commits every admitted flow into the scheduler's ledger, and returns the
// full admitted/rejected split. It does not reset the ledger first — call
// Reset beforehand for an isolated run.
func (s *Scheduler) RunBatch(ctx context.Context, flows []domain.Flow) (Result, error) {
	timeout := s.opts.Timeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sorted := sortFlows(flows, s.opts.Order)

	var result Result
	for _, flow := range sorted {
		if err := ctx.Err(); err != nil {
			return result, apperror.Wrap(apperror.CodeTimeout, err, "batch run did not complete before its deadline")
		}

		rec, ok, reason, err := s.routeOne(flow)
		if err != nil {
			return result, err
		}
		if ok {
			result.Admitted = append(result.Admitted, rec)
		} else {
			result.Rejected = append(result.Rejected, domain.FailureRecord{Flow: flow, Reason: reason})
		}
	}
	return result, nil
}

func (s *Scheduler) routeOne(flow domain.Flow) (domain.SuccessRecord, bool, apperror.ErrorCode, error) {
	mask := search.NewEdgeMask()

	switch s.opts.Algorithm {
	case ECMP:
		return s.routeECMP(flow, mask)
	default:
		return s.routeDR(flow, mask)
	}
}

func (s *Scheduler) routeDR(flow domain.Flow, mask search.EdgeMask) (domain.SuccessRecord, bool, apperror.ErrorCode, error) {
	for {
		path, ok := search.BFS(s.topo, flow, mask)
		if !ok {
			return domain.SuccessRecord{}, false, apperror.CodeNoPath, nil
		}

		res := validator.Validate(s.ledger, flow, path)
		if res.Admitted {
			s.ledger.Commit(res.Edges, res.Plan)
			return domain.SuccessRecord{Flow: flow, Path: path, Plan: res.Plan, FinishTime: res.FinishTime}, true, "", nil
		}
		mask[res.BottleneckEdge] = true
	}
}

// routeECMP picks one path at random from the full set of equal-cost
// shortest paths and validates it once. Unlike routeDR, a failed validation
// is not retried against a masked topology — ECMP routes a flow over a
// single path and fails it immediately if that path can't carry it.
func (s *Scheduler) routeECMP(flow domain.Flow, mask search.EdgeMask) (domain.SuccessRecord, bool, apperror.ErrorCode, error) {
	paths := search.AllShortestPaths(s.topo, flow, mask)
	if len(paths) == 0 {
		return domain.SuccessRecord{}, false, apperror.CodeNoPath, nil
	}

	idx := 0
	if s.opts.RandSource != nil && len(paths) > 1 {
		idx = s.opts.RandSource.Intn(len(paths))
	}
	path := paths[idx]

	res := validator.Validate(s.ledger, flow, path)
	if !res.Admitted {
		return domain.SuccessRecord{}, false, apperror.CodeInfeasible, nil
	}
	s.ledger.Commit(res.Edges, res.Plan)
	return domain.SuccessRecord{Flow: flow, Path: path, Plan: res.Plan, FinishTime: res.FinishTime}, true, "", nil
}

func sortFlows(flows []domain.Flow, order Order) []domain.Flow {
	sorted := make([]domain.Flow, len(flows))
	copy(sorted, flows)

	switch order {
	case OrderBySize:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SizeMbit < sorted[j].SizeMbit })
	case OrderByArrival:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Arrival != sorted[j].Arrival {
				return sorted[i].Arrival < sorted[j].Arrival
			}
			return sorted[i].EndTime() < sorted[j].EndTime()
		})
	case OrderByArrivalThenSize:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Arrival != sorted[j].Arrival {
				return sorted[i].Arrival < sorted[j].Arrival
			}
			return sorted[i].SizeMbit < sorted[j].SizeMbit
		})
	case OrderNone:
	}
	return sorted
}
