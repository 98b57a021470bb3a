package kmergraph

// TopoSort renumbers Nodes into a valid topological order via Kahn's
// algorithm: source first (the unique node with no in-edges), sink
// last. Sketch's per-path construction can leave a later path's
// pre-bubble nodes with higher ids than a merge node an earlier path
// already registered downstream of it, so a straight increasing-id
// walk is not guaranteed topological until this runs. Ties among
// simultaneously-ready nodes are broken by their pre-sort id, so the
// result is deterministic given the same construction order.
func (g *Graph) TopoSort() {
	n := len(g.Nodes)
	indegree := make([]int, n)
	for _, node := range g.Nodes {
		indegree[node.ID] = len(node.In)
	}

	ready := make([]int, 0, n)
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		// smallest pre-sort id among ready nodes, for determinism
		minIdx := 0
		for i := 1; i < len(ready); i++ {
			if ready[i] < ready[minIdx] {
				minIdx = i
			}
		}
		id := ready[minIdx]
		ready = append(ready[:minIdx], ready[minIdx+1:]...)
		order = append(order, id)

		for _, out := range g.Nodes[id].Out {
			indegree[out]--
			if indegree[out] == 0 {
				ready = append(ready, out)
			}
		}
	}

	oldToNew := make([]int, n)
	newNodes := make([]*Node, n)
	for newID, oldID := range order {
		oldToNew[oldID] = newID
		newNodes[newID] = g.Nodes[oldID]
	}

	for newID, node := range newNodes {
		node.ID = newID
		for i, o := range node.Out {
			node.Out[i] = oldToNew[o]
		}
		for i, in := range node.In {
			node.In[i] = oldToNew[in]
		}
	}

	g.Nodes = newNodes
	g.byPath = make(map[string]int, len(g.byPath))
	for _, node := range g.Nodes {
		if len(node.Path) > 0 {
			g.byPath[node.Path.String()] = node.ID
		}
	}
	g.sorted = nil
}
