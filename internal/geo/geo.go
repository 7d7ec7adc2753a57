package geo

import (
	"math"

	"droneplan/internal/model"
)

// MoveStep is the length of one drone move in coordinate degrees. It is also
// the proximity threshold: two positions closer than one move count as the
// same place.
const MoveStep = 0.00015

// borderTolerance bounds the cross product when deciding whether a point
// sits exactly on a polygon edge.
const borderTolerance = 1e-9

// Distance returns the Euclidean distance between two positions in
// coordinate-degree space.
func Distance(a, b model.Position) float64 {
	dx := a.Lng - b.Lng
	dy := a.Lat - b.Lat
	return math.Sqrt(dx*dx + dy*dy)
}

// IsClose reports whether two positions are within one move of each other.
// Exactly one MoveStep apart is not close.
func IsClose(a, b model.Position) bool {
	return Distance(a, b) < MoveStep
}

// NextPosition moves one MoveStep from start along the given angle, using
// the mathematical convention: 0 degrees is East, 90 is North,
// counterclockwise.
func NextPosition(start model.Position, angleDegrees float64) model.Position {
	rad := angleDegrees * math.Pi / 180
	return model.Position{
		Lng: start.Lng + MoveStep*math.Cos(rad),
		Lat: start.Lat + MoveStep*math.Sin(rad),
	}
}

// IsInRegion reports whether point lies inside the polygon described by
// vertices, or exactly on its border. The border test runs first so that
// vertices and edge points always count as inside; the interior test is
// standard even-odd ray casting toward +lng.
func IsInRegion(point model.Position, vertices []model.Position) bool {
	for i := 0; i+1 < len(vertices); i++ {
		if pointOnSegment(point, vertices[i], vertices[i+1]) {
			return true
		}
	}

	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi := vertices[i]
		vj := vertices[j]

		// Edge straddles the point's latitude: one endpoint strictly
		// above, the other not.
		if (vi.Lat > point.Lat) != (vj.Lat > point.Lat) {
			latDiff := vj.Lat - vi.Lat
			if latDiff != 0 {
				crossingLng := (vj.Lng-vi.Lng)*(point.Lat-vi.Lat)/latDiff + vi.Lng
				if point.Lng < crossingLng {
					inside = !inside
				}
			}
		}
		j = i
	}
	return inside
}

// pointOnSegment reports whether p lies on the segment v1-v2: inside the
// segment's bounding box with a near-zero cross product.
func pointOnSegment(p, v1, v2 model.Position) bool {
	if p.Lng < math.Min(v1.Lng, v2.Lng) || p.Lng > math.Max(v1.Lng, v2.Lng) ||
		p.Lat < math.Min(v1.Lat, v2.Lat) || p.Lat > math.Max(v1.Lat, v2.Lat) {
		return false
	}
	cross := (p.Lng-v1.Lng)*(v2.Lat-v1.Lat) - (p.Lat-v1.Lat)*(v2.Lng-v1.Lng)
	return math.Abs(cross) < borderTolerance
}
