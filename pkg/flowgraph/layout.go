package flowgraph

import "sort"

// settleFrames is the length of the settling window after restoring saved
// positions: the render loop keeps running but forces are zeroed, so
// manually placed nodes display without being immediately perturbed.
const settleFrames = 30

// ApplyHierarchicalLayout positions nodes in level rows, target level 0 on
// top, deeper levels below: a top-down tree view rather than a general
// graph layout.
//
// If any node already has a nonzero position (restored from a prior
// session), repositioning is skipped and a settling window starts instead.
// Either way the simulation loop is started, subject to the physics toggle.
func (g *Graph) ApplyHierarchicalLayout() {
	if g.hasRestoredPositions() {
		g.settlingFrames = settleFrames
	} else {
		g.placeRows()
	}

	if g.opts.Physics {
		g.StartSimulation()
	}
}

func (g *Graph) hasRestoredPositions() bool {
	for _, n := range g.nodes {
		if n.X != 0 || n.Y != 0 {
			return true
		}
	}
	return false
}

// placeRows lays out each level as a horizontally centered row with fixed
// spacing. Nodes within a row order by ID for deterministic placement.
func (g *Graph) placeRows() {
	byLevel := make(map[int][]*Node)
	for _, n := range g.nodes {
		byLevel[n.Need.Level] = append(byLevel[n.Need.Level], n)
	}

	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	for _, level := range levels {
		row := byLevel[level]
		sort.Slice(row, func(i, j int) bool { return row[i].ID < row[j].ID })

		rowWidth := float64(len(row)-1) * g.opts.ColSpacing
		for i, n := range row {
			n.X = -rowWidth/2 + float64(i)*g.opts.ColSpacing
			n.Y = float64(level) * g.opts.RowHeight
			n.VX, n.VY = 0, 0
		}
	}
}
