package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys used across scheduler spans.
const (
	AttrTopologyNodes = "topology.nodes"
	AttrTopologyEdges = "topology.edges"
	AttrFatTreeK      = "topology.fattree_k"

	AttrAlgorithm   = "scheduler.algorithm"
	AttrOrder       = "scheduler.order"
	AttrFlowsTotal  = "scheduler.flows_total"
	AttrAdmitted    = "scheduler.admitted"
	AttrRejected    = "scheduler.rejected"

	AttrFlowSrc      = "flow.src"
	AttrFlowDst      = "flow.dst"
	AttrFlowSizeMbit = "flow.size_mbit"
	AttrFlowRetries  = "flow.retries"
)

// TopologyAttributes returns the span attributes describing a topology.
func TopologyAttributes(nodes, edges, fatTreeK int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrTopologyNodes, nodes),
		attribute.Int(AttrTopologyEdges, edges),
		attribute.Int(AttrFatTreeK, fatTreeK),
	}
}

// BatchAttributes returns the span attributes describing a batch run.
func BatchAttributes(algorithm, order string, total, admitted, rejected int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.String(AttrOrder, order),
		attribute.Int(AttrFlowsTotal, total),
		attribute.Int(AttrAdmitted, admitted),
		attribute.Int(AttrRejected, rejected),
	}
}

// FlowAttributes returns the span attributes describing a single flow.
func FlowAttributes(src, dst string, sizeMbit float64, retries int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrFlowSrc, src),
		attribute.String(AttrFlowDst, dst),
		attribute.Float64(AttrFlowSizeMbit, sizeMbit),
		attribute.Int(AttrFlowRetries, retries),
	}
}
