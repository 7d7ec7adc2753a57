package api

import (
	"fmt"
	"math"

	"droneplan/internal/model"
)

// validPosition rejects non-finite coordinates and anything outside the
// lng/lat domain.
func validPosition(p *model.Position) error {
	if p == nil {
		return fmt.Errorf("position is required")
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) || math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return fmt.Errorf("position coordinates must be finite")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat)
	}
	return nil
}

// validAngle accepts the 16 compass headings only.
func validAngle(angle float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return fmt.Errorf("angle must be finite")
	}
	if angle < 0 || angle >= 360 {
		return fmt.Errorf("angle %v out of range [0, 360)", angle)
	}
	if math.Mod(angle, 22.5) != 0 {
		return fmt.Errorf("angle %v is not a multiple of 22.5", angle)
	}
	return nil
}

// validRegion requires a named, closed polygon of valid vertices.
func validRegion(r *model.RestrictedArea) error {
	if r == nil {
		return fmt.Errorf("region is required")
	}
	if r.Name == "" {
		return fmt.Errorf("region name is required")
	}
	if len(r.Vertices) < 4 {
		return fmt.Errorf("region needs at least 4 vertices, got %d", len(r.Vertices))
	}
	for i := range r.Vertices {
		if err := validPosition(&r.Vertices[i]); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	first, last := r.Vertices[0], r.Vertices[len(r.Vertices)-1]
	if first != last {
		return fmt.Errorf("region must be closed: first and last vertex differ")
	}
	return nil
}

// validOrders checks only what would crash or corrupt planning; the
// matcher and planner handle missing requirements themselves.
func validOrders(orders []model.DispatchOrder) error {
	for i, o := range orders {
		if o.Delivery != nil {
			if err := validPosition(o.Delivery); err != nil {
				return fmt.Errorf("order %d delivery: %w", i, err)
			}
		}
		if o.Requirements != nil && o.Requirements.Capacity != nil && *o.Requirements.Capacity < 0 {
			return fmt.Errorf("order %d: negative capacity requirement", i)
		}
	}
	return nil
}
