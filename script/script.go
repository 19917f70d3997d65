// Package script parses a declarative YAML flow-graph description into a
// *graph.Graph, grounded on whitaker-io/machine's documented use of
// gopkg.in/yaml.v3 for declarative pipeline configuration — a real
// DAG-stream-processing library in the retrieved pack.
package script

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"radioflow/block"
	"radioflow/graph"
	"radioflow/x/strx"
)

// Document is the top-level YAML shape:
//
//	blocks:
//	  - id: src
//	    class: float32_const_source
//	    params: {data: [1, 2, 3, 4]}
//	connections:
//	  - from: src.out
//	    to: scale.in
type Document struct {
	Blocks      []BlockSpec      `yaml:"blocks"`
	Connections []ConnectionSpec `yaml:"connections"`
}

// BlockSpec names one block instance and the parameters its Builder needs.
type BlockSpec struct {
	ID     string         `yaml:"id"`
	Class  string         `yaml:"class"`
	Params map[string]any `yaml:"params"`
}

// ConnectionSpec names one edge as "blockID.portName" on each side.
type ConnectionSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Builder constructs one block instance from its id and declared
// parameters. Params carrying embedder-owned I/O handles (an open file,
// a socket) are looked up from handles by name rather than unmarshalled
// from YAML, since the document itself only ever carries plain data.
type Builder func(id string, params map[string]any, handles map[string]any) (block.Block, error)

// Registry maps a YAML "class" name to the Builder that constructs it.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns an empty Registry. Callers register every concrete
// block class their embedding needs before calling Load.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register associates class with a constructor. Re-registering the same
// class overwrites the previous entry.
func (r *Registry) Register(class string, b Builder) {
	r.builders = ensureMap(r.builders)
	r.builders[class] = b
}

func ensureMap(m map[string]Builder) map[string]Builder {
	if m == nil {
		return map[string]Builder{}
	}
	return m
}

// Load parses doc from r, instantiates every block via reg, and wires
// every declared connection into a fresh *graph.Graph. handles supplies
// any embedder-owned I/O objects blocks reference by name in their
// params (e.g. {"file": "device:///dev/tty"} resolving against
// handles["device:///dev/tty"]).
func Load(r io.Reader, reg *Registry, handles map[string]any) (*graph.Graph, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("script: decode: %w", err)
	}
	return Build(&doc, reg, handles)
}

// Build instantiates and wires doc against reg without touching I/O,
// useful for tests that construct a Document directly.
func Build(doc *Document, reg *Registry, handles map[string]any) (*graph.Graph, error) {
	g := graph.New()
	ids := make(map[string]graph.NodeID, len(doc.Blocks))

	for _, bs := range doc.Blocks {
		builder, ok := reg.builders[bs.Class]
		if !ok {
			return nil, fmt.Errorf("script: unknown block class %q for id %q", bs.Class, bs.ID)
		}
		id := strx.Coalesce(bs.ID, bs.Class)
		b, err := builder(id, bs.Params, handles)
		if err != nil {
			return nil, fmt.Errorf("script: building %q (%s): %w", id, bs.Class, err)
		}
		if _, dup := ids[id]; dup {
			return nil, fmt.Errorf("script: duplicate block id %q", id)
		}
		ids[id] = g.AddBlock(b)
	}

	for _, cs := range doc.Connections {
		srcID, srcPort, err := splitRef(cs.From)
		if err != nil {
			return nil, fmt.Errorf("script: connection %q -> %q: %w", cs.From, cs.To, err)
		}
		dstID, dstPort, err := splitRef(cs.To)
		if err != nil {
			return nil, fmt.Errorf("script: connection %q -> %q: %w", cs.From, cs.To, err)
		}
		srcNode, ok := ids[srcID]
		if !ok {
			return nil, fmt.Errorf("script: connection references unknown block %q", srcID)
		}
		dstNode, ok := ids[dstID]
		if !ok {
			return nil, fmt.Errorf("script: connection references unknown block %q", dstID)
		}
		if err := g.Connect(srcNode, srcPort, dstNode, dstPort); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func splitRef(ref string) (id, port string, err error) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected \"id.port\", got %q", ref)
}
