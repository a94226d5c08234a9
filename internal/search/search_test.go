package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsched/internal/topology"
	"flowsched/pkg/domain"
)

func diamond() *topology.Topology {
	topo := topology.New()
	topo.AddEdge("s", "a", domain.EdgeAttrs{Capacity: 10})
	topo.AddEdge("s", "b", domain.EdgeAttrs{Capacity: 10})
	topo.AddEdge("a", "t", domain.EdgeAttrs{Capacity: 10})
	topo.AddEdge("b", "t", domain.EdgeAttrs{Capacity: 10})
	return topo
}

func TestBFSFindsPath(t *testing.T) {
	topo := diamond()
	flow := domain.Flow{Src: "s", Dst: "t"}
	path, ok := BFS(topo, flow, NewEdgeMask())
	require.True(t, ok)
	assert.Len(t, path, 3)
	assert.Equal(t, "s", path[0])
	assert.Equal(t, "t", path[2])
}

func TestBFSNoPathWhenMasked(t *testing.T) {
	topo := diamond()
	flow := domain.Flow{Src: "s", Dst: "t"}
	mask := NewEdgeMask()
	mask[domain.EdgeKey{From: "s", To: "a"}] = true
	mask[domain.EdgeKey{From: "s", To: "b"}] = true
	_, ok := BFS(topo, flow, mask)
	assert.False(t, ok)
}

func TestBFSUnreachable(t *testing.T) {
	topo := topology.New()
	topo.AddNode("s", domain.Unknown)
	topo.AddNode("t", domain.Unknown)
	flow := domain.Flow{Src: "s", Dst: "t"}
	_, ok := BFS(topo, flow, NewEdgeMask())
	assert.False(t, ok)
}

func TestAllShortestPathsFindsBothDiamondLegs(t *testing.T) {
	topo := diamond()
	flow := domain.Flow{Src: "s", Dst: "t"}
	paths := AllShortestPaths(topo, flow, NewEdgeMask())
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.Len(t, p, 3)
	}
}

func TestAllShortestPathsExcludesMaskedLeg(t *testing.T) {
	topo := diamond()
	flow := domain.Flow{Src: "s", Dst: "t"}
	mask := NewEdgeMask()
	mask[domain.EdgeKey{From: "a", To: "t"}] = true
	paths := AllShortestPaths(topo, flow, mask)
	require.Len(t, paths, 1)
	assert.Equal(t, domain.Path{"s", "b", "t"}, paths[0])
}
