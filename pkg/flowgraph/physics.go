package flowgraph

import "math"

// Physics tuning. The step is a de-overlap heuristic: small forces, heavy
// damping, clamped velocity.
const (
	repulsionStrength  = 1.2
	separationDistance = 24.0
	damping            = 0.85
	maxVelocity        = 6.0
)

// StartSimulation enters the simulating state; Step then performs one
// relaxation frame per call.
func (g *Graph) StartSimulation() { g.simulating = true }

// StopSimulation leaves the simulating state; Step becomes a no-op.
func (g *Graph) StopSimulation() { g.simulating = false }

// Simulating reports whether the relaxation loop is active.
func (g *Graph) Simulating() bool { return g.simulating }

// Settling reports whether the post-restore settling window is still open.
func (g *Graph) Settling() bool { return g.settlingFrames > 0 }

// Step runs one physics frame and reports whether the render loop should
// keep scheduling frames.
//
// During settling, forces are zeroed but the frame still counts down, so
// restored positions are rendered untouched. Otherwise every unpinned node
// receives pairwise axis-aligned bounding-box repulsion from every other
// node: a fixed-strength push along the center vector while boxes overlap,
// and a softer push proportional to the remaining gap when boxes sit closer
// than the separation threshold. Velocities integrate with damping and a
// hard clamp. Pinned nodes neither receive forces nor move.
func (g *Graph) Step() bool {
	if !g.simulating {
		return false
	}
	if g.settlingFrames > 0 {
		g.settlingFrames--
		return true
	}

	nodes := g.Nodes()
	for _, n := range nodes {
		if n.Pinned {
			continue
		}

		var fx, fy float64
		for _, other := range nodes {
			if other == n {
				continue
			}
			dfx, dfy := repulsion(n, other)
			fx += dfx
			fy += dfy
		}

		n.VX = (n.VX + fx) * damping
		n.VY = (n.VY + fy) * damping

		speed := math.Hypot(n.VX, n.VY)
		if speed > maxVelocity {
			scale := maxVelocity / speed
			n.VX *= scale
			n.VY *= scale
		}

		n.X += n.VX
		n.Y += n.VY
	}

	return true
}

// repulsion returns the force pushing n away from other.
func repulsion(n, other *Node) (float64, float64) {
	ncx, ncy := n.Center()
	ocx, ocy := other.Center()

	dx := ncx - ocx
	dy := ncy - ocy
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		// Coincident centers: push along x so the pair separates at all.
		dx, dy, dist = 1, 0, 1
	}
	ux, uy := dx/dist, dy/dist

	gapX := math.Abs(dx) - (n.W+other.W)/2
	gapY := math.Abs(dy) - (n.H+other.H)/2

	if gapX < 0 && gapY < 0 {
		// Boxes overlap: full-strength push.
		return ux * repulsionStrength, uy * repulsionStrength
	}

	gap := math.Max(gapX, gapY)
	if gap < separationDistance {
		// Near miss: soft push shrinking linearly with remaining gap.
		scale := (separationDistance - gap) / separationDistance
		return ux * repulsionStrength * 0.5 * scale, uy * repulsionStrength * 0.5 * scale
	}

	return 0, 0
}
