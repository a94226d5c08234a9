package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsched/pkg/domain"
)

func TestAddEdgeImplicitNodes(t *testing.T) {
	topo := New()
	topo.AddEdge("a", "b", domain.EdgeAttrs{Capacity: 10})
	assert.True(t, topo.HasNode("a"))
	assert.True(t, topo.HasNode("b"))
	attrs, ok := topo.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 10.0, attrs.Capacity)
}

func TestNeighborsDeterministicOrder(t *testing.T) {
	topo := New()
	topo.AddEdge("a", "c", domain.EdgeAttrs{Capacity: 1})
	topo.AddEdge("a", "b", domain.EdgeAttrs{Capacity: 1})
	assert.Equal(t, []string{"c", "b"}, topo.Neighbors("a"))
}

func TestValidateRejectsNegativeCapacity(t *testing.T) {
	topo := New()
	topo.AddEdge("a", "b", domain.EdgeAttrs{Capacity: -1})
	assert.Error(t, topo.Validate())
}

func TestParseDirected(t *testing.T) {
	text := `
[DIRECTED]
[NODES]
a HOST
b EDGE
[EDGES]
a b 10 2 1
`
	topo, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	n, ok := topo.Node("a")
	require.True(t, ok)
	assert.Equal(t, domain.Host, n.Layer)
	attrs, ok := topo.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 10.0, attrs.Capacity)
	assert.Equal(t, 2.0, attrs.Delay)
	_, reverse := topo.Edge("b", "a")
	assert.False(t, reverse)
}

func TestParseUndirectedAddsBothDirections(t *testing.T) {
	text := `
[UNDIRECTED]
[NODES]
a
b
[EDGES]
a b
`
	topo, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	_, fwd := topo.Edge("a", "b")
	_, rev := topo.Edge("b", "a")
	assert.True(t, fwd)
	assert.True(t, rev)
}

func TestParseDefaultsLayerUnknown(t *testing.T) {
	text := `
[NODES]
solo
[EDGES]
`
	topo, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	n, _ := topo.Node("solo")
	assert.Equal(t, domain.Unknown, n.Layer)
}

func TestFatTreeK4Shape(t *testing.T) {
	topo, err := FatTree(4, FatTreeAttrs{})
	require.NoError(t, err)

	// k=4: 4 core, 4*2=8 aggr, 8 edge, 4*2*2=16 hosts.
	assert.Len(t, topo.NodesByLayer(domain.Core), 4)
	assert.Len(t, topo.NodesByLayer(domain.Aggr), 8)
	assert.Len(t, topo.NodesByLayer(domain.Edge), 8)
	assert.Len(t, topo.NodesByLayer(domain.Host), 16)

	attrs, ok := topo.Edge("E-0-0", "H-0-0-0")
	require.True(t, ok)
	assert.Equal(t, DefaultBandwidth, attrs.Capacity)

	_, back := topo.Edge("H-0-0-0", "E-0-0")
	assert.True(t, back, "fat-tree links must be bidirectional")
}

func TestFatTreeRejectsOddK(t *testing.T) {
	_, err := FatTree(3, FatTreeAttrs{})
	assert.Error(t, err)
}

func TestWriteParseRoundTrip(t *testing.T) {
	topo := New()
	topo.AddNode("solo", domain.Host)
	topo.AddEdge("a", "b", domain.EdgeAttrs{Capacity: 10, Delay: 2, Cost: 1})
	topo.AddEdge("b", "c", domain.EdgeAttrs{Capacity: 5.5, Delay: 0.5, Cost: 3})

	var buf strings.Builder
	require.NoError(t, Write(&buf, topo))

	reparsed, err := Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, topo.Nodes(), reparsed.Nodes())
	for _, id := range topo.Nodes() {
		want, _ := topo.Node(id)
		got, ok := reparsed.Node(id)
		require.True(t, ok)
		assert.Equal(t, want.Layer, got.Layer)
	}
	assert.Equal(t, topo.Edges(), reparsed.Edges())
}

func TestFatTreeAttrCascade(t *testing.T) {
	topo, err := FatTree(2, FatTreeAttrs{AllBandwidth: 40, CoreBandwidth: 100})
	require.NoError(t, err)
	edgeAttrs, _ := topo.Edge("E-0-0", "H-0-0-0")
	assert.Equal(t, 40.0, edgeAttrs.Capacity)
	coreAttrs, _ := topo.Edge("C-0", "A-0-0")
	assert.Equal(t, 100.0, coreAttrs.Capacity)
}
