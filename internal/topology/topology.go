// Package topology implements the immutable directed graph the scheduler
// routes over: nodes labeled by layer, edges carrying static Capacity/Delay/
// Cost attributes. It supplies adjacency iteration for the path-search
// package and per-edge capacity for the ledger, but never mutates an edge's
// attributes after construction.
//
// Adjacency is kept in both a map (O(1) lookup) and a slice (deterministic,
// insertion-ordered iteration), the same split used by the teacher's
// residual-graph adjacency structure, because flow algorithms that iterate
// over Go maps directly produce non-reproducible results.
package topology

import (
	"fmt"
	"sort"

	"flowsched/pkg/apperror"
	"flowsched/pkg/domain"
)

// Topology is an immutable directed graph of data-center nodes and links.
//
// Call AddNode/AddEdge only while building the graph (fat-tree construction
// or the text-format parser); once handed to a scheduler, a Topology should
// be treated as read-only — its attributes never change after construction.
type Topology struct {
	nodes map[string]domain.Node

	// adjacency provides O(1) edge lookup by (from, to).
	adjacency map[string]map[string]domain.EdgeAttrs

	// order preserves insertion order per source node for deterministic BFS.
	order map[string][]string

	sortedNodes      []string
	sortedNodesDirty bool
}

// New creates an empty topology.
func New() *Topology {
	return &Topology{
		nodes:            make(map[string]domain.Node),
		adjacency:        make(map[string]map[string]domain.EdgeAttrs),
		order:            make(map[string][]string),
		sortedNodesDirty: true,
	}
}

// AddNode registers a node with the given layer. Re-adding an existing node
// overwrites its stored layer.
func (t *Topology) AddNode(id string, layer domain.Layer) {
	if _, exists := t.nodes[id]; !exists {
		t.sortedNodesDirty = true
	}
	t.nodes[id] = domain.Node{ID: id, Layer: layer}
	if t.adjacency[id] == nil {
		t.adjacency[id] = make(map[string]domain.EdgeAttrs)
	}
}

// AddEdge adds a directed edge (from, to) with the given attributes,
// implicitly registering both endpoints with domain.Unknown layer if they
// are not already known. Adding the same (from,to) pair twice overwrites
// the attributes, matching the text parser's last-write-wins behavior for
// duplicate edge lines.
func (t *Topology) AddEdge(from, to string, attrs domain.EdgeAttrs) {
	if _, ok := t.nodes[from]; !ok {
		t.AddNode(from, domain.Unknown)
	}
	if _, ok := t.nodes[to]; !ok {
		t.AddNode(to, domain.Unknown)
	}

	if _, exists := t.adjacency[from][to]; !exists {
		t.order[from] = append(t.order[from], to)
	}
	t.adjacency[from][to] = attrs
}

// Node returns the node with the given ID and whether it exists.
func (t *Topology) Node(id string) (domain.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// HasNode reports whether id has been registered.
func (t *Topology) HasNode(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Edge returns the attributes of edge (from, to) and whether it exists.
func (t *Topology) Edge(from, to string) (domain.EdgeAttrs, bool) {
	attrs, ok := t.adjacency[from][to]
	return attrs, ok
}

// Capacity returns the static capacity of edge (from, to), or 0 if the edge
// does not exist.
func (t *Topology) Capacity(from, to string) float64 {
	return t.adjacency[from][to].Capacity
}

// Neighbors returns the destination nodes of from's outgoing edges in
// deterministic (insertion) order.
func (t *Topology) Neighbors(from string) []string {
	return t.order[from]
}

// Nodes returns every node ID in ascending sorted order.
func (t *Topology) Nodes() []string {
	if t.sortedNodesDirty {
		t.sortedNodes = make([]string, 0, len(t.nodes))
		for id := range t.nodes {
			t.sortedNodes = append(t.sortedNodes, id)
		}
		sort.Strings(t.sortedNodes)
		t.sortedNodesDirty = false
	}
	return t.sortedNodes
}

// NodesByLayer returns all node IDs with the given layer, in sorted order.
func (t *Topology) NodesByLayer(layer domain.Layer) []string {
	var out []string
	for _, id := range t.Nodes() {
		if t.nodes[id].Layer == layer {
			out = append(out, id)
		}
	}
	return out
}

// Edges returns every directed edge in the topology as (EdgeKey, attrs)
// pairs, in deterministic order (sorted source, then insertion order of
// destinations).
func (t *Topology) Edges() []struct {
	Key   domain.EdgeKey
	Attrs domain.EdgeAttrs
} {
	var out []struct {
		Key   domain.EdgeKey
		Attrs domain.EdgeAttrs
	}
	for _, from := range t.Nodes() {
		for _, to := range t.order[from] {
			out = append(out, struct {
				Key   domain.EdgeKey
				Attrs domain.EdgeAttrs
			}{domain.EdgeKey{From: from, To: to}, t.adjacency[from][to]})
		}
	}
	return out
}

// NodeCount returns the number of nodes in the topology.
func (t *Topology) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of directed edges in the topology.
func (t *Topology) EdgeCount() int {
	n := 0
	for _, m := range t.adjacency {
		n += len(m)
	}
	return n
}

// Validate checks that the topology has at least one node, that every
// edge's endpoints are registered nodes, and that no edge has negative
// capacity. It is the caller's responsibility to call this after building a
// topology from untrusted input (e.g. a parsed file).
func (t *Topology) Validate() error {
	if len(t.nodes) == 0 {
		return apperror.New(apperror.CodeInvalidTopology, "topology has no nodes")
	}
	for from, dests := range t.adjacency {
		if _, ok := t.nodes[from]; !ok {
			return apperror.New(apperror.CodeDanglingEdge, fmt.Sprintf("dangling edge source %q", from)).WithField(from)
		}
		for to, attrs := range dests {
			if _, ok := t.nodes[to]; !ok {
				return apperror.New(apperror.CodeDanglingEdge, fmt.Sprintf("dangling edge destination %q", to)).WithField(to)
			}
			if attrs.Capacity < 0 {
				return apperror.New(apperror.CodeNegativeCapacity, fmt.Sprintf("negative capacity on edge %s->%s", from, to))
			}
		}
	}
	return nil
}
