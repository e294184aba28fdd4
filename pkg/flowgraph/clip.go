package flowgraph

import "math"

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// EdgeEndpoints returns where the straight line between the two nodes'
// centers crosses each node's border, so rendered edges terminate at box
// boundaries rather than centers.
func EdgeEndpoints(from, to *Node) (Point, Point) {
	fcx, fcy := from.Center()
	tcx, tcy := to.Center()
	start := clipToBox(Point{fcx, fcy}, Point{tcx, tcy}, from.W/2, from.H/2)
	end := clipToBox(Point{tcx, tcy}, Point{fcx, fcy}, to.W/2, to.H/2)
	return start, end
}

// clipToBox intersects the ray from the box center toward target with the
// box border, using the parametric line equation and per-axis half-extent
// ratios. Degenerate cases (coincident points, target inside the box)
// return the center itself resp. the target.
func clipToBox(center, target Point, halfW, halfH float64) Point {
	dx := target.X - center.X
	dy := target.Y - center.Y
	if dx == 0 && dy == 0 {
		return center
	}

	t := math.Inf(1)
	if dx != 0 {
		t = halfW / math.Abs(dx)
	}
	if dy != 0 {
		if ty := halfH / math.Abs(dy); ty < t {
			t = ty
		}
	}
	if t > 1 {
		t = 1
	}

	return Point{X: center.X + dx*t, Y: center.Y + dy*t}
}
