package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"flowsched/internal/topology"
	"flowsched/pkg/domain"
)

// TopologyHash computes a deterministic hash of a topology's nodes and
// edges, for use as a cache key component.
func TopologyHash(t *topology.Topology) string {
	if t == nil {
		return ""
	}
	data := topologyToCanonical(t)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func topologyToCanonical(t *topology.Topology) []byte {
	nodes := t.Nodes() // already sorted
	edges := t.Edges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Key.From != edges[j].Key.From {
			return edges[i].Key.From < edges[j].Key.From
		}
		return edges[i].Key.To < edges[j].Key.To
	})

	var result []byte
	for _, id := range nodes {
		n, _ := t.Node(id)
		result = append(result, []byte(fmt.Sprintf("n:%s:%d;", n.ID, n.Layer))...)
	}
	for _, e := range edges {
		result = append(result, []byte(fmt.Sprintf("e:%s:%s:%.6f:%.6f:%.6f;",
			e.Key.From, e.Key.To, e.Attrs.Capacity, e.Attrs.Delay, e.Attrs.Cost))...)
	}
	return result
}

// FlowBatchHash computes a deterministic hash of an ordered batch of flows.
// Flow order is part of the hash: reordering a batch changes the admission
// outcome under the DR and ECMP schedulers, so it must change the key too.
func FlowBatchHash(flows []domain.Flow) string {
	var result []byte
	for _, f := range flows {
		result = append(result, []byte(fmt.Sprintf("f:%s:%s:%.6f:%.6f:%.6f;",
			f.Src, f.Dst, f.SizeMbit, f.Arrival, f.DeadlineDuration))...)
	}
	hash := sha256.Sum256(result)
	return hex.EncodeToString(hash[:16])
}

// BuildScheduleKey builds a cache key for a batch scheduling run, scoped by
// topology, flow batch, algorithm, ordering and RNG seed.
func BuildScheduleKey(topologyHash, flowBatchHash, algorithm, order string, seed int64) string {
	return fmt.Sprintf("schedule:%s:%s:%s:%s:%d", algorithm, order, topologyHash, flowBatchHash, seed)
}

// QuickHash is a general-purpose hash for arbitrary byte payloads.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a truncated 16-character hash for compact cache keys.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
