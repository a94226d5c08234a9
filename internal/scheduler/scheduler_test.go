package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsched/internal/topology"
	"flowsched/pkg/domain"
)

func line(cap float64) *topology.Topology {
	topo := topology.New()
	topo.AddEdge("a", "b", domain.EdgeAttrs{Capacity: cap})
	topo.AddEdge("b", "c", domain.EdgeAttrs{Capacity: cap})
	return topo
}

func diamond(cap float64) *topology.Topology {
	topo := topology.New()
	topo.AddEdge("s", "a", domain.EdgeAttrs{Capacity: cap})
	topo.AddEdge("s", "b", domain.EdgeAttrs{Capacity: cap})
	topo.AddEdge("a", "t", domain.EdgeAttrs{Capacity: cap})
	topo.AddEdge("b", "t", domain.EdgeAttrs{Capacity: cap})
	return topo
}

func TestRunBatchAdmitsSingleFlow(t *testing.T) {
	s := New(line(10), DefaultOptions())
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 5, Arrival: 0, DeadlineDuration: 2}}
	res, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, res.Admitted, 1)
	assert.Empty(t, res.Rejected)
}

func TestRunBatchRejectsOversizedFlow(t *testing.T) {
	s := New(line(1), DefaultOptions())
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 1000, Arrival: 0, DeadlineDuration: 1}}
	res, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Empty(t, res.Admitted)
	assert.Len(t, res.Rejected, 1)
}

func TestRunBatchCompetingFlowsSecondRejected(t *testing.T) {
	s := New(line(10), DefaultOptions().WithOrder(OrderNone))
	flows := []domain.Flow{
		{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 1},
		{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 1},
	}
	res, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, res.Admitted, 1)
	assert.Len(t, res.Rejected, 1)
}

func TestResetIsolatesRuns(t *testing.T) {
	s := New(line(10), DefaultOptions())
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 1}}

	res1, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, res1.Admitted, 1)

	s.Reset()
	res2, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, res2.Admitted, 1, "after Reset the ledger must be back at full capacity")
}

func TestECMPRoutesOverEitherDiamondLeg(t *testing.T) {
	s := New(diamond(10), DefaultOptions().WithAlgorithm(ECMP))
	flows := []domain.Flow{{Src: "s", Dst: "t", SizeMbit: 5, Arrival: 0, DeadlineDuration: 2}}
	res, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	require.Len(t, res.Admitted, 1)
	assert.Len(t, res.Admitted[0].Path, 3)
}

func TestOrderSensitivityChangesWhichFlowIsAdmitted(t *testing.T) {
	flows := []domain.Flow{
		{Src: "a", Dst: "c", SizeMbit: 8, Arrival: 0, DeadlineDuration: 1}, // listed first, larger
		{Src: "a", Dst: "c", SizeMbit: 3, Arrival: 0, DeadlineDuration: 1}, // listed second, smaller
	}

	// OrderNone preserves input order: the 8 Mbit flow is routed first and
	// consumes enough residual capacity that the 3 Mbit flow can't fit.
	none := New(line(10), DefaultOptions().WithOrder(OrderNone))
	resNone, err := none.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	require.Len(t, resNone.Admitted, 1)
	require.Len(t, resNone.Rejected, 1)
	assert.Equal(t, 8.0, resNone.Admitted[0].Flow.SizeMbit)
	assert.Equal(t, 3.0, resNone.Rejected[0].Flow.SizeMbit)

	// OrderBySize routes the 3 Mbit flow first instead, so the same batch
	// admits the opposite flow — the outcome depends on order, not just on
	// the flows themselves.
	bySize := New(line(10), DefaultOptions().WithOrder(OrderBySize))
	resBySize, err := bySize.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	require.Len(t, resBySize.Admitted, 1)
	require.Len(t, resBySize.Rejected, 1)
	assert.Equal(t, 3.0, resBySize.Admitted[0].Flow.SizeMbit)
	assert.Equal(t, 8.0, resBySize.Rejected[0].Flow.SizeMbit)
}

func TestResetIsolatesRunsAcrossDifferentAlgorithms(t *testing.T) {
	s := New(line(10), DefaultOptions().WithOrder(OrderBySize))
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 1}}

	// DR offline.
	resDROffline, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, resDROffline.Admitted, 1, "DR offline must admit the flow against a full ledger")

	// DR online: same algorithm, different order, after a Reset.
	s.Reset()
	s.opts.Order = OrderByArrival
	resDROnline, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, resDROnline.Admitted, 1, "DR online must admit the flow against a ledger reset back to full capacity")

	// ECMP offline: a different algorithm entirely, after another Reset.
	s.Reset()
	s.opts.Algorithm = ECMP
	s.opts.Order = OrderBySize
	resECMPOffline, err := s.RunBatch(context.Background(), flows)
	require.NoError(t, err)
	assert.Len(t, resECMPOffline.Admitted, 1, "ECMP offline must admit the flow against a ledger reset back to full capacity, with no leftover commitment from the earlier DR runs")
}

func TestOrderBySizeSortsAscending(t *testing.T) {
	flows := []domain.Flow{
		{SizeMbit: 5},
		{SizeMbit: 1},
		{SizeMbit: 3},
	}
	sorted := sortFlows(flows, OrderBySize)
	assert.Equal(t, []float64{1, 3, 5}, []float64{sorted[0].SizeMbit, sorted[1].SizeMbit, sorted[2].SizeMbit})
}
