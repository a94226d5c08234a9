package topology

import (
	"fmt"

	"flowsched/pkg/apperror"
	"flowsched/pkg/domain"
)

// Default bandwidth (Gbps), delay (ms) and cost for fat-tree links when an
// attribute override map doesn't specify one.
const (
	DefaultBandwidth = 1.0
	DefaultDelay     = 1.0
	DefaultCost      = 1.0
)

// FatTreeAttrs overrides per-tier link attributes when building a fat-tree.
// A zero value for any tier-specific field falls back to the matching
// "All*" field, then to the package default, mirroring the reference
// generator's edge_bw/aggr_bw/core_bw over bw-over-default cascade.
type FatTreeAttrs struct {
	EdgeBandwidth, AggrBandwidth, CoreBandwidth float64
	EdgeDelay, AggrDelay, CoreDelay             float64
	EdgeCost, AggrCost, CoreCost                float64

	AllBandwidth, AllDelay, AllCost float64
}

func (a FatTreeAttrs) resolve() (edgeBW, aggrBW, coreBW, edgeDL, aggrDL, coreDL, edgeCT, aggrCT, coreCT float64) {
	pick := func(tier, all, def float64) float64 {
		if tier != 0 {
			return tier
		}
		if all != 0 {
			return all
		}
		return def
	}
	edgeBW = pick(a.EdgeBandwidth, a.AllBandwidth, DefaultBandwidth)
	aggrBW = pick(a.AggrBandwidth, a.AllBandwidth, DefaultBandwidth)
	coreBW = pick(a.CoreBandwidth, a.AllBandwidth, DefaultBandwidth)
	edgeDL = pick(a.EdgeDelay, a.AllDelay, DefaultDelay)
	aggrDL = pick(a.AggrDelay, a.AllDelay, DefaultDelay)
	coreDL = pick(a.CoreDelay, a.AllDelay, DefaultDelay)
	edgeCT = pick(a.EdgeCost, a.AllCost, DefaultCost)
	aggrCT = pick(a.AggrCost, a.AllCost, DefaultCost)
	coreCT = pick(a.CoreCost, a.AllCost, DefaultCost)
	return
}

// FatTree builds a k-ary fat-tree: k pods, each with k/2 edge switches and
// k/2 aggregation switches, k/2 hosts per edge switch, and k*k/4 core
// switches. k must be even and positive.
//
// Node naming follows the reference generator: core switches "C-i",
// aggregation switches "A-pod-slot", edge switches "E-pod-slot", hosts
// "H-pod-edgeslot-hostslot". Every link is added in both directions since
// the reference topology is built as an undirected graph before use.
func FatTree(k int, attrs FatTreeAttrs) (*Topology, error) {
	if k <= 0 || k%2 != 0 {
		return nil, apperror.New(apperror.CodeInvalidFatTreeK, fmt.Sprintf("k must be a positive even number, got %d", k))
	}
	edgeBW, aggrBW, coreBW, edgeDL, aggrDL, coreDL, edgeCT, aggrCT, coreCT := attrs.resolve()
	half := k / 2

	t := New()

	for i := 0; i < k*k/4; i++ {
		t.AddNode(fmt.Sprintf("C-%d", i), domain.Core)
	}
	for i := 0; i < k; i++ {
		for j := 0; j < half; j++ {
			t.AddNode(fmt.Sprintf("A-%d-%d", i, j), domain.Aggr)
			t.AddNode(fmt.Sprintf("E-%d-%d", i, j), domain.Edge)
		}
	}
	for i := 0; i < k; i++ {
		for j := 0; j < half; j++ {
			for l := 0; l < half; l++ {
				t.AddNode(fmt.Sprintf("H-%d-%d-%d", i, j, l), domain.Host)
			}
		}
	}

	addBidi := func(a, b string, attrs domain.EdgeAttrs) {
		t.AddEdge(a, b, attrs)
		t.AddEdge(b, a, attrs)
	}

	for i := 0; i < k; i++ {
		for j := 0; j < half; j++ {
			esw := fmt.Sprintf("E-%d-%d", i, j)
			for l := 0; l < half; l++ {
				h := fmt.Sprintf("H-%d-%d-%d", i, j, l)
				addBidi(esw, h, domain.EdgeAttrs{Capacity: edgeBW, Delay: edgeDL, Cost: edgeCT})

				asw := fmt.Sprintf("A-%d-%d", i, l)
				addBidi(asw, esw, domain.EdgeAttrs{Capacity: aggrBW, Delay: aggrDL, Cost: aggrCT})
			}
			asw := fmt.Sprintf("A-%d-%d", i, j)
			for l := 0; l < half; l++ {
				csw := fmt.Sprintf("C-%d", j*half+l)
				addBidi(csw, asw, domain.EdgeAttrs{Capacity: coreBW, Delay: coreDL, Cost: coreCT})
			}
		}
	}

	return t, nil
}
