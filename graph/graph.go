// Package graph assembles blocks into a directed acyclic flow graph,
// resolves composite blocks, performs type inference over the polymorphic
// block calculus in package block, computes per-edge sample rates, and
// freezes the result into an immutable Plan for the scheduler to execute.
package graph

import (
	"fmt"

	"radioflow/block"
	"radioflow/errs"
)

// NodeID identifies one block instance within a Graph.
type NodeID int

func (n NodeID) String() string { return fmt.Sprintf("%d", int(n)) }

// PortRef identifies one port of one node.
type PortRef struct {
	Node NodeID
	Port string
}

func (p PortRef) String() string { return fmt.Sprintf("%d:%s", p.Node, p.Port) }

type edge struct {
	src PortRef
	dst PortRef
}

// Graph is the mutable builder. Build it up with AddBlock/Connect, then
// pass it to Infer to produce a frozen Plan.
type Graph struct {
	nodes   []block.Block
	classes map[NodeID]string
	edges   []edge
	// inbound tracks, for each (node,port), how many edges target it —
	// used to enforce that every input is connected exactly once.
	inbound map[PortRef]int
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{classes: map[NodeID]string{}, inbound: map[PortRef]int{}}
}

// AddBlock registers b as a new node and returns its NodeID.
func (g *Graph) AddBlock(b block.Block) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, b)
	g.classes[id] = b.ClassName()
	return id
}

// Connect wires one output port of src to one input port of dst. Fan-out
// (one output to many inputs) is allowed; fan-in (one input fed by more
// than one output) is rejected immediately.
func (g *Graph) Connect(src NodeID, srcPort string, dst NodeID, dstPort string) error {
	if err := g.checkNode(src); err != nil {
		return err
	}
	if err := g.checkNode(dst); err != nil {
		return err
	}
	if !hasPort(g.nodes[src].OutputPorts(), srcPort) {
		return &errs.GraphError{Kind: errs.CodePortMismatch, Detail: "unknown output port", Nodes: []string{srcPort}}
	}
	if !hasPort(g.nodes[dst].InputPorts(), dstPort) {
		return &errs.GraphError{Kind: errs.CodePortMismatch, Detail: "unknown input port", Nodes: []string{dstPort}}
	}
	dstRef := PortRef{Node: dst, Port: dstPort}
	if g.inbound[dstRef] > 0 {
		return &errs.GraphError{Kind: errs.CodePortMismatch, Detail: "fan-in not allowed, input already connected", Nodes: []string{dstRef.String()}}
	}
	g.inbound[dstRef]++
	g.edges = append(g.edges, edge{src: PortRef{Node: src, Port: srcPort}, dst: dstRef})
	return nil
}

// ConnectChain auto-wires each block's sole output to the next block's
// sole input, in declaration order.
func (g *Graph) ConnectChain(blocks ...block.Block) error {
	ids := make([]NodeID, len(blocks))
	for i, b := range blocks {
		ids[i] = g.AddBlock(b)
	}
	for i := 0; i+1 < len(ids); i++ {
		outs := g.nodes[ids[i]].OutputPorts()
		ins := g.nodes[ids[i+1]].InputPorts()
		if len(outs) != 1 || len(ins) != 1 {
			return fmt.Errorf("graph: ConnectChain requires single in/out ports, node %d has %d outputs, node %d has %d inputs",
				ids[i], len(outs), ids[i+1], len(ins))
		}
		if err := g.Connect(ids[i], outs[0].Name, ids[i+1], ins[0].Name); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) checkNode(id NodeID) error {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		return fmt.Errorf("graph: node id %d out of range", id)
	}
	return nil
}

func hasPort(ports []block.Port, name string) bool {
	for _, p := range ports {
		if p.Name == name {
			return true
		}
	}
	return false
}

// unconnectedInputs returns every declared input port with no incoming
// edge, across all nodes.
func (g *Graph) unconnectedInputs() []PortRef {
	var missing []PortRef
	for id, b := range g.nodes {
		for _, p := range b.InputPorts() {
			ref := PortRef{Node: NodeID(id), Port: p.Name}
			if g.inbound[ref] == 0 {
				missing = append(missing, ref)
			}
		}
	}
	return missing
}
