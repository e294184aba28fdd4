// Package flowgraph builds the interactive node/edge model of a solved
// production chain and keeps node positions maintained.
//
// The engine offers two placement modes: a fresh hierarchical layout (level
// rows, target on top) or position preservation, where previously saved
// coordinates are restored and a short settling window keeps physics from
// immediately perturbing them. While simulating, a per-frame relaxation
// step applies pairwise box repulsion to reduce node overlap.
//
// This is deliberately a cosmetic de-overlap pass, not a spring embedder:
// there is no attraction force, and the O(n²) pairwise scan is acceptable
// only because chains are tens of nodes.
package flowgraph

import (
	"sort"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// Default geometry for freshly laid out nodes.
const (
	DefaultNodeWidth  = 140.0
	DefaultNodeHeight = 70.0
	DefaultColSpacing = 180.0
	DefaultRowHeight  = 150.0
)

// Node is the presentation wrapper around a needs-map entry. Position and
// velocity are owned exclusively by this package; a pinned node (actively
// dragged) is excluded from force application and displacement.
type Node struct {
	ID   string
	Need plan.Need

	X, Y   float64
	VX, VY float64
	W, H   float64
	Pinned bool
}

// Center returns the node's center point.
func (n *Node) Center() (float64, float64) {
	return n.X + n.W/2, n.Y + n.H/2
}

// Options configures graph construction.
type Options struct {
	// ShowRaw includes raw-material nodes. The target is always included
	// regardless of toggles. Disposal edges are only emitted when raw
	// materials are shown.
	ShowRaw bool

	// ShowDisposal includes waste disposal nodes.
	ShowDisposal bool

	// Physics enables the relaxation loop after layout.
	Physics bool

	// Positions restores previously saved coordinates (per session/tab).
	// Any nonzero restored position switches ApplyHierarchicalLayout into
	// settling mode instead of repositioning.
	Positions map[string][2]float64

	// Geometry overrides; zero values take the package defaults.
	NodeWidth  float64
	NodeHeight float64
	ColSpacing float64
	RowHeight  float64
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.NodeWidth == 0 {
		out.NodeWidth = DefaultNodeWidth
	}
	if out.NodeHeight == 0 {
		out.NodeHeight = DefaultNodeHeight
	}
	if out.ColSpacing == 0 {
		out.ColSpacing = DefaultColSpacing
	}
	if out.RowHeight == 0 {
		out.RowHeight = DefaultRowHeight
	}
	return out
}

// Graph is the live node/edge model. It is confined to a single goroutine:
// the physics loop and any drag handler coordinate through the Pinned flag,
// never through locks.
type Graph struct {
	nodes map[string]*Node
	edges []plan.Edge
	opts  Options

	simulating     bool
	settlingFrames int
}

// Build constructs a graph from a solved plan, filtering entries per the
// display toggles and restoring any saved positions.
func Build(p *plan.Plan, opts Options) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node),
		opts:  opts.withDefaults(),
	}

	for id, need := range p.Needs {
		if !g.visible(need) {
			continue
		}
		node := &Node{
			ID:   id,
			Need: need,
			W:    g.opts.NodeWidth,
			H:    g.opts.NodeHeight,
		}
		if pos, ok := g.opts.Positions[id]; ok {
			node.X, node.Y = pos[0], pos[1]
		}
		g.nodes[id] = node
	}

	for _, e := range p.Edges {
		if e.Disposal && !g.opts.ShowRaw {
			continue
		}
		if _, ok := g.nodes[e.From]; !ok {
			continue
		}
		if _, ok := g.nodes[e.To]; !ok {
			continue
		}
		g.edges = append(g.edges, e)
	}

	return g
}

func (g *Graph) visible(need plan.Need) bool {
	if need.Target {
		return true
	}
	if need.Raw && !g.opts.ShowRaw {
		return false
	}
	if need.Disposal && !g.opts.ShowDisposal {
		return false
	}
	return true
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns the visible edge list in insertion order.
func (g *Graph) Edges() []plan.Edge { return g.edges }

// NodeCount returns the number of visible nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Pin marks a node as dragged: physics neither applies forces to it nor
// moves it until unpinned.
func (g *Graph) Pin(id string, pinned bool) {
	if n, ok := g.nodes[id]; ok {
		n.Pinned = pinned
	}
}

// SetPosition moves a node directly (drag handler path) and stops any
// residual velocity.
func (g *Graph) SetPosition(id string, x, y float64) {
	if n, ok := g.nodes[id]; ok {
		n.X, n.Y = x, y
		n.VX, n.VY = 0, 0
	}
}

// Layout exports the current positions and visible edges for persistence or
// rendering.
func (g *Graph) Layout() plan.Layout {
	l := plan.Layout{
		Edges:        append([]plan.Edge(nil), g.edges...),
		ShowRaw:      g.opts.ShowRaw,
		ShowDisposal: g.opts.ShowDisposal,
	}
	for _, n := range g.Nodes() {
		l.Nodes = append(l.Nodes, plan.PlacedNode{
			ItemID: n.ID,
			X:      n.X,
			Y:      n.Y,
			Width:  n.W,
			Height: n.H,
			Level:  n.Need.Level,
			Pinned: n.Pinned,
		})
	}
	return l
}
