// Package workload generates synthetic query-aggregation batches: many
// senders transmitting toward one receiver, with exponentially distributed
// deadlines and uniformly distributed sizes, the traffic pattern an
// incast-heavy data-center job (a distributed join or reduce phase)
// produces.
package workload

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"flowsched/pkg/domain"
)

// Defaults mirror the reference generator's constants.
const (
	DefaultMinFlowNumber = 1
	DefaultMaxFlowNumber = 35

	DefaultAverageDeadlineMs = 20.0
	DefaultMinDeadlineMs     = 5.0

	DefaultMinFlowSizeKB = 2.0
	DefaultMaxFlowSizeKB = 50.0

	// kbitPerMbit converts a flow size in KBytes to Mbit so that, with rates
	// in Gbps and times in ms, ms * Gbps = Mbit without further conversion.
	kbitPerMbit = 125.0
)

// QueryAggrOptions configures one QueryAggr generation. Zero values fall
// back to the package defaults.
type QueryAggrOptions struct {
	FlowNum                    int // 0 selects a random count in [MinFlowNum, MaxFlowNum)
	MinFlowNum, MaxFlowNum     int
	AverageDeadlineMs          float64
	MinFlowSizeKB, MaxFlowSizeKB float64
	Receiver                   string // "" selects a random host
}

func (o QueryAggrOptions) withDefaults() QueryAggrOptions {
	if o.MinFlowNum == 0 {
		o.MinFlowNum = DefaultMinFlowNumber
	}
	if o.MaxFlowNum == 0 {
		o.MaxFlowNum = DefaultMaxFlowNumber
	}
	if o.AverageDeadlineMs == 0 {
		o.AverageDeadlineMs = DefaultAverageDeadlineMs
	}
	if o.MinFlowSizeKB == 0 {
		o.MinFlowSizeKB = DefaultMinFlowSizeKB
	}
	if o.MaxFlowSizeKB == 0 {
		o.MaxFlowSizeKB = DefaultMaxFlowSizeKB
	}
	return o
}

// QueryAggr generates one query-aggregation batch over hosts: a receiver is
// chosen (or taken from opts.Receiver), every other listed host is a
// candidate sender, and opts.FlowNum flows are generated (or a random count
// in [MinFlowNum, MaxFlowNum) if unset). All flows share arrival time 0.
//
// rng must not be nil; callers share one seeded source across a run to make
// generated batches reproducible.
func QueryAggr(hosts []string, opts QueryAggrOptions, rng *rand.Rand) ([]domain.Flow, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("workload: host list is empty")
	}
	opts = opts.withDefaults()

	receiver := opts.Receiver
	senders := make([]string, len(hosts))
	copy(senders, hosts)
	if receiver == "" {
		receiver = hosts[rng.Intn(len(hosts))]
	}
	senders = removeHost(senders, receiver)
	if len(senders) == 0 {
		return nil, fmt.Errorf("workload: no candidate senders left after excluding receiver %q", receiver)
	}

	flowNum := opts.FlowNum
	if flowNum == 0 {
		flowNum = opts.MinFlowNum + rng.Intn(opts.MaxFlowNum-opts.MinFlowNum)
	}

	deadlineDist := distuv.Exponential{Rate: 1 / opts.AverageDeadlineMs, Src: rng}
	sizeDist := distuv.Uniform{Min: opts.MinFlowSizeKB, Max: opts.MaxFlowSizeKB, Src: rng}

	flows := make([]domain.Flow, 0, flowNum)
	for i := 0; i < flowNum; i++ {
		deadline := deadlineDist.Rand()
		if deadline < DefaultMinDeadlineMs {
			deadline = DefaultMinDeadlineMs
		}
		sizeKB := sizeDist.Rand()
		sender := senders[rng.Intn(len(senders))]

		flows = append(flows, domain.Flow{
			Src:              sender,
			Dst:              receiver,
			SizeMbit:         sizeKB / kbitPerMbit,
			Arrival:          0,
			DeadlineDuration: deadline,
		})
	}
	return flows, nil
}

func removeHost(hosts []string, target string) []string {
	out := hosts[:0]
	for _, h := range hosts {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}
