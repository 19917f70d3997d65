package graph

import (
	"context"
	"fmt"

	"radioflow/block"
	"radioflow/types"
)

// Composite is a block whose implementation is another flow graph. It is
// a graph macro, not a runtime indirection: Flatten inlines it away
// before a Plan is ever produced, so no Composite exists at execution
// time.
type Composite struct {
	block.Base
	Inner *Graph

	// InPortMap maps each external input port name to the inner PortRef
	// it feeds.
	InPortMap map[string]PortRef
	// OutPortMap maps each external output port name to the inner PortRef
	// that produces it.
	OutPortMap map[string]PortRef
}

// NewComposite builds a Composite with the given external ports, backed
// by inner. inPortMap/outPortMap rename inner ports onto the composite's
// own external ports.
func NewComposite(id, class string, inner *Graph, inputs, outputs []block.Port, inPortMap, outPortMap map[string]PortRef) *Composite {
	return &Composite{
		Base:       block.NewBase(id, class, inputs, outputs),
		Inner:      inner,
		InPortMap:  inPortMap,
		OutPortMap: outPortMap,
	}
}

// Initialize/Process/Cleanup are never invoked on a Composite in practice
// — Flatten always removes it before a Plan reaches the scheduler — but
// are implemented defensively so Composite still satisfies block.Block.
func (c *Composite) Initialize(ctx context.Context) error {
	return fmt.Errorf("graph: composite %q reached a worker unflattened", c.ID())
}
func (c *Composite) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	return nil, fmt.Errorf("graph: composite %q reached a worker unflattened", c.ID())
}
func (c *Composite) Cleanup() error { return nil }

// flattenInto inlines g's nodes (recursively expanding any Composite) into
// ng, replicates g's own edges (translated into ng's node ids), and
// returns the port map from every one of g's PortRefs to its corresponding
// leaf PortRef in ng.
func flattenInto(g *Graph, ng *Graph) (map[PortRef]PortRef, error) {
	portMap := map[PortRef]PortRef{}

	for id, b := range g.nodes {
		orig := NodeID(id)
		if comp, ok := b.(*Composite); ok {
			innerMap, err := flattenInto(comp.Inner, ng)
			if err != nil {
				return nil, fmt.Errorf("graph: flattening composite %q: %w", comp.ID(), err)
			}
			for extName, innerRef := range comp.InPortMap {
				leaf, ok := innerMap[innerRef]
				if !ok {
					return nil, fmt.Errorf("graph: composite %q: dangling input port %q", comp.ID(), extName)
				}
				portMap[PortRef{Node: orig, Port: extName}] = leaf
			}
			for extName, innerRef := range comp.OutPortMap {
				leaf, ok := innerMap[innerRef]
				if !ok {
					return nil, fmt.Errorf("graph: composite %q: dangling output port %q", comp.ID(), extName)
				}
				portMap[PortRef{Node: orig, Port: extName}] = leaf
			}
			continue
		}
		newID := ng.AddBlock(b)
		for _, p := range b.InputPorts() {
			portMap[PortRef{Node: orig, Port: p.Name}] = PortRef{Node: newID, Port: p.Name}
		}
		for _, p := range b.OutputPorts() {
			portMap[PortRef{Node: orig, Port: p.Name}] = PortRef{Node: newID, Port: p.Name}
		}
	}

	for _, e := range g.edges {
		srcNew, ok1 := portMap[e.src]
		dstNew, ok2 := portMap[e.dst]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("graph: dangling edge %s -> %s after flattening", e.src, e.dst)
		}
		if err := ng.Connect(srcNew.Node, srcNew.Port, dstNew.Node, dstNew.Port); err != nil {
			return nil, err
		}
	}
	return portMap, nil
}

// Flatten recursively inlines every Composite in g, returning a new Graph
// containing only leaf blocks and direct edges between them — ready for
// Infer.
func Flatten(g *Graph) (*Graph, error) {
	ng := New()
	if _, err := flattenInto(g, ng); err != nil {
		return nil, err
	}
	return ng, nil
}
