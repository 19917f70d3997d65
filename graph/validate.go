package graph

import "radioflow/errs"

// validateConnectivity enforces that every input port is connected
// exactly once before inference runs — Connect() already prevents fan-in
// and double-connection, so only "never connected" can slip through.
func (g *Graph) validateConnectivity() error {
	missing := g.unconnectedInputs()
	if len(missing) == 0 {
		return nil
	}
	nodes := make([]string, len(missing))
	for i, m := range missing {
		nodes[i] = m.String()
	}
	return &errs.GraphError{Kind: errs.CodeDisconnected, Detail: "unconnected input port(s)", Nodes: nodes}
}

// adjacency returns, for every node, the set of nodes it has an outgoing
// edge to (deduplicated), used by both the topological sort and Tarjan's
// cycle check.
func (g *Graph) adjacency() map[NodeID][]NodeID {
	seen := map[NodeID]map[NodeID]bool{}
	for _, e := range g.edges {
		if seen[e.src.Node] == nil {
			seen[e.src.Node] = map[NodeID]bool{}
		}
		seen[e.src.Node][e.dst.Node] = true
	}
	adj := make(map[NodeID][]NodeID, len(g.nodes))
	for id := range seen {
		for dst := range seen[id] {
			adj[id] = append(adj[id], dst)
		}
	}
	return adj
}

// validateAcyclic runs Tarjan's strongly-connected-components algorithm
// and rejects the graph if any SCC has more than one node, or a node has
// a self-loop.
//
// The pack's one graph-theory library, katalvlaran/lvlath, is manifest-only
// (no source was retrieved for it — see DESIGN.md), so its exported API
// cannot be grounded with confidence; Tarjan's algorithm is a few dozen
// lines of standard, well-known graph theory and is implemented directly
// here instead of risking a fabricated import.
func (g *Graph) validateAcyclic() error {
	adj := g.adjacency()

	var (
		index   = 0
		stack   []NodeID
		onStack = map[NodeID]bool{}
		indices = map[NodeID]int{}
		lowlink = map[NodeID]int{}
		sccs    [][]NodeID
	)

	var strongconnect func(v NodeID)
	strongconnect = func(v NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []NodeID
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for id := range g.nodes {
		v := NodeID(id)
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}

	for _, scc := range sccs {
		if len(scc) > 1 {
			return cyclicErr(scc)
		}
		// A single-node SCC with a self-loop is also a cycle.
		v := scc[0]
		for _, w := range adj[v] {
			if w == v {
				return cyclicErr(scc)
			}
		}
	}
	return nil
}

func cyclicErr(scc []NodeID) error {
	nodes := make([]string, len(scc))
	for i, n := range scc {
		nodes[i] = n.String()
	}
	return &errs.GraphError{Kind: errs.CodeCyclic, Detail: "cycle detected among nodes", Nodes: nodes}
}

// topoOrder returns nodes in a valid topological order via Kahn's
// algorithm. Callers must first confirm the graph is acyclic; topoOrder
// does not itself detect cycles.
func (g *Graph) topoOrder() []NodeID {
	adj := g.adjacency()
	indegree := make(map[NodeID]int, len(g.nodes))
	for id := range g.nodes {
		indegree[NodeID(id)] = 0
	}
	for _, dsts := range adj {
		for _, d := range dsts {
			indegree[d]++
		}
	}
	var queue []NodeID
	for id := range g.nodes {
		if indegree[NodeID(id)] == 0 {
			queue = append(queue, NodeID(id))
		}
	}
	var order []NodeID
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, d := range adj[n] {
			indegree[d]--
			if indegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	return order
}
