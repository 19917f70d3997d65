package graph

import "radioflow/block"
import "radioflow/types"

// Plan is the frozen, immutable DAG produced by Infer. Only a *Plan is
// accepted by the scheduler; it is never mutated after construction.
type Plan struct {
	// Order lists every node in a valid topological order.
	Order []NodeID
	// Blocks maps each node to its concrete Block.
	Blocks map[NodeID]block.Block
	// OutEdges maps a source port to every destination port it fans out to.
	OutEdges map[PortRef][]PortRef
	// InEdge maps a destination port to its single source port.
	InEdge map[PortRef]PortRef
	// EdgeType maps a source port to the edge's resolved sample type.
	EdgeType map[PortRef]types.SampleType
	// EdgeRate maps a source port to the edge's resolved sample rate (Hz).
	EdgeRate map[PortRef]float64
	// EdgeQuantum maps a source port to the edge's per-read sample quantum,
	// resolved by rational-rate alignment at inference time.
	EdgeQuantum map[PortRef]int
	// Selected records which Signature index each node resolved to (-1 if
	// the block declared none).
	Selected map[NodeID]int
}

// InputsOf returns the ordered list of source ports feeding node's
// declared input ports, in the same order as its Block.InputPorts().
func (p *Plan) InputsOf(node NodeID) []PortRef {
	b := p.Blocks[node]
	out := make([]PortRef, 0, len(b.InputPorts()))
	for _, port := range b.InputPorts() {
		dst := PortRef{Node: node, Port: port.Name}
		out = append(out, p.InEdge[dst])
	}
	return out
}

// OutputsOf returns node's declared output ports paired with every
// downstream fan-out destination.
func (p *Plan) OutputsOf(node NodeID) map[string][]PortRef {
	b := p.Blocks[node]
	out := make(map[string][]PortRef, len(b.OutputPorts()))
	for _, port := range b.OutputPorts() {
		src := PortRef{Node: node, Port: port.Name}
		out[port.Name] = p.OutEdges[src]
	}
	return out
}
