package graph

import (
	"math"

	"radioflow/block"
	"radioflow/errs"
	"radioflow/types"
)

// RateSource is implemented by blocks with no input ports that know their
// own absolute sample rate — true sources report an absolute rate rather
// than deriving one from upstream.
type RateSource interface {
	SampleRate() float64
}

// Quantized is implemented by blocks whose ports require a specific
// per-read sample quantum other than 1 — e.g. a decimate-by-N or
// interpolate-by-N block. Rate mismatches are resolved by rational-rate
// alignment at inference time rather than by unbounded dynamic input
// buffering: every edge gets an integer read quantum computed as the LCM
// of the producer's and every consumer's declared per-port quantum
// (default 1), and a multi-input block whose declared quanta are not
// reconcilable with its resolved input rates fails inference with
// *errs.TypeMismatch{Reason: "rate-mismatch"} instead of silently
// buffering. This is a firm decision, not left open.
type Quantized interface {
	PortQuantum(portName string) int
}

// Infer runs the full graph-to-plan pipeline: topological ordering,
// bottom-up type differentiation, rate propagation, and validation. It
// returns a frozen Plan or a structured error; on failure the Graph
// itself is left untouched so the caller can fix it and retry.
func Infer(g *Graph) (*Plan, error) {
	if err := g.validateConnectivity(); err != nil {
		return nil, err
	}
	if err := g.validateAcyclic(); err != nil {
		return nil, err
	}
	order := g.topoOrder()
	if len(order) != len(g.nodes) {
		// Kahn's algorithm could not consume every node — only possible if
		// validateAcyclic missed something, which would be an engine bug,
		// not a user error.
		return nil, &errs.GraphError{Kind: errs.CodeCyclic, Detail: "topological sort incomplete"}
	}

	plan := &Plan{
		Order:       order,
		Blocks:      map[NodeID]block.Block{},
		OutEdges:    map[PortRef][]PortRef{},
		InEdge:      map[PortRef]PortRef{},
		EdgeType:    map[PortRef]types.SampleType{},
		EdgeRate:    map[PortRef]float64{},
		EdgeQuantum: map[PortRef]int{},
		Selected:    map[NodeID]int{},
	}
	for id, b := range g.nodes {
		plan.Blocks[NodeID(id)] = b
	}
	for _, e := range g.edges {
		plan.OutEdges[e.src] = append(plan.OutEdges[e.src], e.dst)
		plan.InEdge[e.dst] = e.src
	}

	resolvedType := map[PortRef]types.SampleType{} // by dst port (post-propagation, same as src's)
	resolvedRate := map[PortRef]float64{}

	for _, node := range order {
		b := plan.Blocks[node]

		inTypes := make([]types.SampleType, len(b.InputPorts()))
		inRates := make([]float64, len(b.InputPorts()))
		for i, port := range b.InputPorts() {
			dst := PortRef{Node: node, Port: port.Name}
			src, ok := plan.InEdge[dst]
			if !ok {
				return nil, &errs.GraphError{Kind: errs.CodeDisconnected, Detail: "unconnected input discovered during inference", Nodes: []string{dst.String()}}
			}
			t, ok := resolvedType[src]
			if !ok {
				return nil, &errs.TypeMismatch{Node: node.String(), Reason: "upstream type not yet resolved (non-topological edge)"}
			}
			inTypes[i] = t
			inRates[i] = resolvedRate[src]
		}

		if len(b.InputPorts()) > 1 {
			if err := checkRateAlignment(b, inRates); err != nil {
				return nil, err
			}
		}

		selected, err := b.Differentiate(inTypes)
		if err != nil {
			return nil, err
		}
		plan.Selected[node] = selected

		outTypes, err := projectOutputTypes(b, selected, inTypes)
		if err != nil {
			return nil, err
		}

		rate := computeRate(b, selected, inRates)

		for i, port := range b.OutputPorts() {
			src := PortRef{Node: node, Port: port.Name}
			plan.EdgeType[src] = outTypes[i]
			plan.EdgeRate[src] = rate

			// The edge's read quantum must be a size every consumer can
			// batch cleanly out of, as well as whatever size the producer
			// itself declared for this port — the LCM of all of them is
			// the smallest quantum satisfying every party at once.
			edgeQuantum := quantumFor(b, port.Name)
			for _, dst := range plan.OutEdges[src] {
				dstBlock := plan.Blocks[dst.Node]
				edgeQuantum = lcm(edgeQuantum, quantumFor(dstBlock, dst.Port))
			}
			plan.EdgeQuantum[src] = edgeQuantum

			for _, dst := range plan.OutEdges[src] {
				resolvedType[dst] = outTypes[i]
				resolvedRate[dst] = rate
			}
		}
	}
	return plan, nil
}

// projectOutputTypes derives each output port's type from the selected
// signature, or — for a block that declared zero signatures — passes
// input types straight through positionally (requires matching arity).
func projectOutputTypes(b block.Block, selected int, in []types.SampleType) ([]types.SampleType, error) {
	outs := b.OutputPorts()
	if selected < 0 {
		if len(outs) != len(in) {
			return nil, &errs.TypeMismatch{Node: b.ID(), Reason: "signature-less block requires equal input/output arity for passthrough"}
		}
		result := make([]types.SampleType, len(outs))
		copy(result, in)
		return result, nil
	}
	sig := b.Signatures()[selected]
	result := make([]types.SampleType, len(outs))
	for i, producer := range sig.Outputs {
		t, err := producer.Produce(in)
		if err != nil {
			return nil, &errs.TypeMismatch{Node: b.ID(), Reason: err.Error()}
		}
		result[i] = t
	}
	return result, nil
}

func computeRate(b block.Block, selected int, inRates []float64) float64 {
	if rs, ok := b.(RateSource); ok && len(b.InputPorts()) == 0 {
		return rs.SampleRate()
	}
	if selected < 0 || len(b.Signatures()) == 0 {
		if len(inRates) > 0 {
			return inRates[0]
		}
		return 0
	}
	sig := b.Signatures()[selected]
	if sig.Rate == nil {
		if len(inRates) > 0 {
			return inRates[0]
		}
		return 0
	}
	return sig.Rate(inRates)
}

func quantumFor(b block.Block, portName string) int {
	if q, ok := b.(Quantized); ok {
		if n := q.PortQuantum(portName); n > 0 {
			return n
		}
	}
	return 1
}

// checkRateAlignment rejects a multi-input block whose declared per-port
// quanta don't correspond to the same wall-clock batch duration at its
// resolved input rates — quantum_i samples at rate_i must take the same
// time as quantum_j samples at rate_j for every pair of input ports, or
// synchronized reads across those ports (graph.Quantized, pipe.Aligner)
// would never land on a consistent cut. Ports with a zero resolved rate
// (not yet meaningfully constrained) are skipped rather than compared.
func checkRateAlignment(b block.Block, inRates []float64) error {
	ports := b.InputPorts()
	quanta := make([]int, len(ports))
	for i, p := range ports {
		quanta[i] = quantumFor(b, p.Name)
	}
	for i := 1; i < len(ports); i++ {
		if inRates[0] == 0 || inRates[i] == 0 {
			continue
		}
		lhs := float64(quanta[0]) * inRates[i]
		rhs := float64(quanta[i]) * inRates[0]
		tol := 1e-9 * math.Max(math.Abs(lhs), math.Abs(rhs))
		if math.Abs(lhs-rhs) > tol {
			return &errs.TypeMismatch{Node: b.ID(), Reason: "rate-mismatch"}
		}
	}
	return nil
}

// lcm returns the least common multiple of a and b, treating a
// non-positive operand as the multiplicative identity's absence (1).
func lcm(a, b int) int {
	if a <= 0 {
		a = 1
	}
	if b <= 0 {
		b = 1
	}
	return a / gcd(a, b) * b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
