package catalog

import (
	"context"
	"sync"

	"droneplan/internal/model"
)

// Memory is an in-process catalog for development and tests.
type Memory struct {
	mu   sync.RWMutex
	data Snapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryDemo returns a catalog pre-loaded with a small fleet around
// central Edinburgh, enough to exercise every endpoint without an
// external directory.
func NewMemoryDemo() *Memory {
	t, f := true, false
	cap10, cap3 := 10.0, 3.0
	moves := 5000
	m := NewMemory()
	m.SetDrones([]model.Drone{
		{
			ID:   "drone-a",
			Name: "Corvus",
			Capability: &model.Capability{
				Cooling: &t, Heating: &f, Capacity: &cap10, MaxMoves: &moves,
				CostPerMove: fp(0.01), CostInitial: fp(1), CostFinal: fp(1),
			},
		},
		{
			ID:   "drone-b",
			Name: "Pica",
			Capability: &model.Capability{
				Cooling: &f, Heating: &t, Capacity: &cap3, MaxMoves: &moves,
				CostPerMove: fp(0.005), CostInitial: fp(0.5), CostFinal: fp(0.5),
			},
		},
	})
	m.SetServicePoints([]model.ServicePoint{
		{ID: 1, Name: "Appleton Tower", Location: &model.Position{Lng: -3.186874, Lat: 55.944494}},
		{ID: 2, Name: "Western Depot", Location: &model.Position{Lng: -3.202, Lat: 55.943}},
	})
	allWeek := func() []model.AvailabilitySlot {
		days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
		slots := make([]model.AvailabilitySlot, len(days))
		for i, d := range days {
			slots[i] = model.AvailabilitySlot{DayOfWeek: d, From: "00:00", Until: "23:59"}
		}
		return slots
	}
	m.SetRosters([]model.ServicePointRoster{
		{ServicePointID: 1, Drones: []model.RosterDrone{
			{ID: "drone-a", Availability: allWeek()},
		}},
		{ServicePointID: 2, Drones: []model.RosterDrone{
			{ID: "drone-b", Availability: allWeek()},
		}},
	})
	m.SetRestrictedAreas([]model.RestrictedArea{
		{
			ID:   1,
			Name: "George Square Area",
			Vertices: []model.Position{
				{Lng: -3.190578818321228, Lat: 55.94402412577528},
				{Lng: -3.1899887323379517, Lat: 55.94284650540911},
				{Lng: -3.187097311019897, Lat: 55.94328811724263},
				{Lng: -3.187682032585144, Lat: 55.944477740393744},
				{Lng: -3.190578818321228, Lat: 55.94402412577528},
			},
		},
	})
	return m
}

func fp(v float64) *float64 { return &v }

func (m *Memory) SetDrones(d []model.Drone) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.Drones = d
}

func (m *Memory) SetRosters(r []model.ServicePointRoster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.Rosters = r
}

func (m *Memory) SetServicePoints(p []model.ServicePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.ServicePoints = p
}

func (m *Memory) SetRestrictedAreas(a []model.RestrictedArea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.RestrictedAreas = a
}

func (m *Memory) Drones(context.Context) ([]model.Drone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Drone(nil), m.data.Drones...), nil
}

func (m *Memory) Rosters(context.Context) ([]model.ServicePointRoster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ServicePointRoster(nil), m.data.Rosters...), nil
}

func (m *Memory) ServicePoints(context.Context) ([]model.ServicePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ServicePoint(nil), m.data.ServicePoints...), nil
}

func (m *Memory) RestrictedAreas(context.Context) ([]model.RestrictedArea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.RestrictedArea(nil), m.data.RestrictedAreas...), nil
}
