// Package catalog supplies the operational data the planner works
// against: the drone fleet, service point rosters and restricted
// airspace. Sources return empty slices rather than errors for missing
// collections so the planner can always run.
package catalog

import (
	"context"

	"droneplan/internal/model"
)

type Source interface {
	Drones(ctx context.Context) ([]model.Drone, error)
	Rosters(ctx context.Context) ([]model.ServicePointRoster, error)
	ServicePoints(ctx context.Context) ([]model.ServicePoint, error)
	RestrictedAreas(ctx context.Context) ([]model.RestrictedArea, error)
}

// Snapshot is a point-in-time read of every collection.
type Snapshot struct {
	Drones          []model.Drone
	Rosters         []model.ServicePointRoster
	ServicePoints   []model.ServicePoint
	RestrictedAreas []model.RestrictedArea
}

// Load reads all collections from src. The snapshot is internally
// consistent only as far as the source guarantees it.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Drones, err = src.Drones(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Rosters, err = src.Rosters(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.ServicePoints, err = src.ServicePoints(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.RestrictedAreas, err = src.RestrictedAreas(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
