package kmergraph

// SortedOrder returns node indices in the bubble-aware topological
// order required by invariant I4: every bubble start precedes its
// body and every bubble end follows it. This transcribes the
// level-bucketing algorithm of the original kmergraph.cpp verbatim:
// walk the nodes in construction order, track
// (num_bubble_starts - num_bubble_ends) as a "level", bucket each
// node into that level, then emit buckets from highest level down to
// level 0. A node with >1 in-edges closes a bubble (consumed before
// its own bucket is chosen); a node with >1 out-edges opens one
// (takes effect from the next node onward).
func (g *Graph) SortedOrder() []int {
	if g.sorted != nil {
		return g.sorted
	}

	const initialLevels = 10
	levels := make([][]int, initialLevels)
	numStarts, numEnds := 0, 0

	for _, n := range g.Nodes {
		if len(n.In) > 1 {
			numEnds++
		}
		level := numStarts - numEnds
		for level >= len(levels) {
			levels = append(levels, nil)
		}
		levels[level] = append(levels[level], n.ID)
		if len(n.Out) > 1 {
			numStarts++
		}
	}

	order := make([]int, 0, len(g.Nodes))
	for l := len(levels) - 1; l >= 0; l-- {
		order = append(order, levels[l]...)
	}
	g.sorted = order
	return order
}
