package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsched/pkg/domain"
)

func TestScheduleCacheSetGet(t *testing.T) {
	mem := NewMemoryCache(nil)
	defer mem.Close()

	sc := NewScheduleCache(mem, 5*time.Minute)
	ctx := context.Background()
	topo := buildTestTopology()
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 5}}

	_, hit, err := sc.Get(ctx, topo, flows, "dr", "size", 1)
	require.NoError(t, err)
	assert.False(t, hit, "nothing stored yet")

	want := &CachedBatchResult{
		Admitted: []CachedPlan{{
			Flow:       flows[0],
			Path:       []string{"a", "b", "c"},
			Plan:       []domain.Breakpoint{{Time: -1, Rate: 0}, {Time: 5, Rate: 2}},
			FinishTime: 5,
		}},
	}
	require.NoError(t, sc.Set(ctx, topo, flows, "dr", "size", 1, want, 0))

	got, hit, err := sc.Get(ctx, topo, flows, "dr", "size", 1)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want.Admitted, got.Admitted)
}

func TestScheduleCacheMissOnDifferentSeed(t *testing.T) {
	mem := NewMemoryCache(nil)
	defer mem.Close()

	sc := NewScheduleCache(mem, 5*time.Minute)
	ctx := context.Background()
	topo := buildTestTopology()
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 5}}

	require.NoError(t, sc.Set(ctx, topo, flows, "dr", "size", 1, &CachedBatchResult{}, 0))

	_, hit, err := sc.Get(ctx, topo, flows, "dr", "size", 2)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestScheduleCacheInvalidateAll(t *testing.T) {
	mem := NewMemoryCache(nil)
	defer mem.Close()

	sc := NewScheduleCache(mem, 5*time.Minute)
	ctx := context.Background()
	topo := buildTestTopology()
	flows := []domain.Flow{{Src: "a", Dst: "c", SizeMbit: 10, Arrival: 0, DeadlineDuration: 5}}

	require.NoError(t, sc.Set(ctx, topo, flows, "dr", "size", 1, &CachedBatchResult{}, 0))
	n, err := sc.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, hit, err := sc.Get(ctx, topo, flows, "dr", "size", 1)
	require.NoError(t, err)
	assert.False(t, hit)
}
