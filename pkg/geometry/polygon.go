package geometry

import "math"

// collinearEps is the relative tolerance used when deciding that three
// points lie on one line. It is scaled by the squared extent of the point set.
const collinearEps = 1e-9

// IsConvex returns true if the polygon vertices form a convex polygon.
// The polygon is assumed to be simple (non-self-intersecting).
func IsConvex(polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	n := len(polygon)
	var sign int

	for i := 0; i < n; i++ {
		cross := crossProduct(
			polygon[i],
			polygon[(i+1)%n],
			polygon[(i+2)%n],
		)

		if cross != 0 {
			currentSign := 1
			if cross < 0 {
				currentSign = -1
			}

			if sign == 0 {
				sign = currentSign
			} else if currentSign != sign {
				return false
			}
		}
	}

	return true
}

// HasCollinearTriple reports whether any three of the points are collinear
// or coincident. A point set with zero extent is always reported.
func HasCollinearTriple(points []Point2D) bool {
	extent := 0.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			extent = math.Max(extent, distSq(points[i], points[j]))
		}
	}
	if extent == 0 {
		return true
	}

	tol := collinearEps * extent
	n := len(points)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if math.Abs(crossProduct(points[i], points[j], points[k])) <= tol {
					return true
				}
			}
		}
	}
	return false
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
