package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowEndTime(t *testing.T) {
	f := Flow{Src: "H-0-0-0", Dst: "H-1-1-1", SizeMbit: 0.8, Arrival: 0, DeadlineDuration: 1}
	assert.Equal(t, 1.0, f.EndTime())
}

func TestPathEdges(t *testing.T) {
	p := Path{"a", "b", "c"}
	edges := p.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, EdgeKey{From: "a", To: "b"}, edges[0])
	assert.Equal(t, EdgeKey{From: "b", To: "c"}, edges[1])
}

func TestPathEdgesShort(t *testing.T) {
	assert.Nil(t, Path{"a"}.Edges())
	assert.Nil(t, Path(nil).Edges())
}

func TestRatePlanIntegratedVolume(t *testing.T) {
	plan := RatePlan{
		{Time: -1, Rate: 0},
		{Time: 0, Rate: 2},
		{Time: 0.5, Rate: 0},
	}
	assert.InDelta(t, 1.0, plan.IntegratedVolume(), Epsilon)
	assert.Equal(t, 0.5, plan.FinishTime())
}

func TestLayerRoundTrip(t *testing.T) {
	for _, l := range []Layer{Host, Edge, Aggr, Core} {
		assert.Equal(t, l, ParseLayer(l.String()))
	}
	assert.Equal(t, Unknown, ParseLayer(""))
	assert.Equal(t, Unknown, ParseLayer("bogus"))
}
