package geo

import (
	"math"

	"droneplan/internal/model"
)

// orientationTolerance treats near-zero segment orientation signs as
// collinear.
const orientationTolerance = 1e-10

// PointBlocked reports whether the point lies inside or on the border of any
// restricted area. Areas without vertices are ignored.
func PointBlocked(point model.Position, areas []model.RestrictedArea) bool {
	for _, area := range areas {
		if len(area.Vertices) == 0 {
			continue
		}
		if IsInRegion(point, area.Vertices) {
			return true
		}
	}
	return false
}

// SegmentBlocked reports whether the move from one position to another
// crosses any restricted area: either the segment intersects a polygon edge,
// or its midpoint falls inside the polygon. The midpoint test catches thin
// polygons that fit entirely between two grid-aligned sample points.
func SegmentBlocked(from, to model.Position, areas []model.RestrictedArea) bool {
	for _, area := range areas {
		if len(area.Vertices) == 0 {
			continue
		}
		n := len(area.Vertices)
		for i := 0; i < n; i++ {
			v1 := area.Vertices[i]
			v2 := area.Vertices[(i+1)%n]
			if segmentsIntersect(from, to, v1, v2) {
				return true
			}
		}
		mid := model.Position{
			Lng: (from.Lng + to.Lng) / 2,
			Lat: (from.Lat + to.Lat) / 2,
		}
		if IsInRegion(mid, area.Vertices) {
			return true
		}
	}
	return false
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 intersect,
// including the collinear-overlap case.
func segmentsIntersect(p1, p2, p3, p4 model.Position) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if math.Abs(d1) < orientationTolerance && onSegment(p3, p1, p4) {
		return true
	}
	if math.Abs(d2) < orientationTolerance && onSegment(p3, p2, p4) {
		return true
	}
	if math.Abs(d3) < orientationTolerance && onSegment(p1, p3, p2) {
		return true
	}
	if math.Abs(d4) < orientationTolerance && onSegment(p1, p4, p2) {
		return true
	}

	return false
}

// direction is the cross product sign of (p2-p1) x (p3-p1).
func direction(p1, p2, p3 model.Position) float64 {
	return (p3.Lng-p1.Lng)*(p2.Lat-p1.Lat) - (p2.Lng-p1.Lng)*(p3.Lat-p1.Lat)
}

// onSegment assumes q is collinear with p-r and checks it lies within the
// segment's bounding box.
func onSegment(p, q, r model.Position) bool {
	return q.Lng <= math.Max(p.Lng, r.Lng) && q.Lng >= math.Min(p.Lng, r.Lng) &&
		q.Lat <= math.Max(p.Lat, r.Lat) && q.Lat >= math.Min(p.Lat, r.Lat)
}
