package plan

import (
	"math"
	"testing"

	"droneplan/internal/catalog"
	"droneplan/internal/geo"
	"droneplan/internal/model"
)

func fp(v float64) *float64 { return &v }
func bp(v bool) *bool       { return &v }
func ip(v int) *int         { return &v }

const monday = "2026-01-05"

func allWeek() []model.AvailabilitySlot {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	slots := make([]model.AvailabilitySlot, len(days))
	for i, d := range days {
		slots[i] = model.AvailabilitySlot{DayOfWeek: d, From: "00:00", Until: "23:59"}
	}
	return slots
}

func testSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Drones: []model.Drone{
			{ID: "chill", Name: "Chill", Capability: &model.Capability{
				Cooling: bp(true), Heating: bp(false), Capacity: fp(5),
				CostPerMove: fp(0.01), CostInitial: fp(1), CostFinal: fp(1),
			}},
			{ID: "warm", Name: "Warm", Capability: &model.Capability{
				Cooling: bp(false), Heating: bp(true), Capacity: fp(5),
				CostPerMove: fp(0.02), CostInitial: fp(2), CostFinal: fp(2),
			}},
		},
		Rosters: []model.ServicePointRoster{
			{ServicePointID: 1, Drones: []model.RosterDrone{{ID: "chill", Availability: allWeek()}}},
			{ServicePointID: 2, Drones: []model.RosterDrone{{ID: "warm", Availability: allWeek()}}},
		},
		ServicePoints: []model.ServicePoint{
			{ID: 1, Name: "North", Location: &model.Position{Lng: 0, Lat: 0}},
			{ID: 2, Name: "South", Location: &model.Position{Lng: 0.002, Lat: 0}},
		},
	}
}

func simpleOrder(id int, lng, lat float64) model.DispatchOrder {
	return model.DispatchOrder{
		ID:           id,
		Date:         monday,
		Time:         "10:00",
		Requirements: &model.Requirements{Capacity: fp(1)},
		Delivery:     &model.Position{Lng: lng, Lat: lat},
	}
}

func TestDeliveryPlanEmptyOrders(t *testing.T) {
	p := New(nil)
	got := p.DeliveryPlan(testSnapshot(), nil)
	if got.TotalCost != 0 || got.TotalMoves != 0 || len(got.DronePaths) != 0 {
		t.Fatalf("empty request produced %+v", got)
	}
	if got.DronePaths == nil {
		t.Fatal("DronePaths must serialize as [], not null")
	}
}

func TestDeliveryPlanSingleOrder(t *testing.T) {
	p := New(nil)
	snap := testSnapshot()
	order := simpleOrder(1, 0.00055, 0)
	order.Requirements.MaxCost = fp(200)
	got := p.DeliveryPlan(snap, []model.DispatchOrder{order})

	if len(got.DronePaths) != 1 {
		t.Fatalf("expected one drone path, got %+v", got)
	}
	dp := got.DronePaths[0]
	if len(dp.Deliveries) != 2 {
		t.Fatalf("expected delivery leg plus return leg, got %d legs", len(dp.Deliveries))
	}

	out := dp.Deliveries[0]
	if out.DeliveryID == nil || *out.DeliveryID != 1 {
		t.Fatalf("delivery leg id = %v", out.DeliveryID)
	}
	n := len(out.FlightPath)
	if n < 3 {
		t.Fatalf("delivery flight path too short: %v", out.FlightPath)
	}
	if out.FlightPath[n-1] != *order.Delivery || out.FlightPath[n-2] != *order.Delivery {
		t.Fatalf("delivery flight must end with the target twice, got %v", out.FlightPath[n-2:])
	}

	back := dp.Deliveries[1]
	if back.DeliveryID != nil {
		t.Fatalf("return leg must have nil delivery id, got %v", *back.DeliveryID)
	}
	last := back.FlightPath[len(back.FlightPath)-1]
	if last != (model.Position{Lng: 0, Lat: 0}) {
		t.Fatalf("return leg must end at the base, ends at %v", last)
	}

	// Priced at the chosen drone's tariff for the reported moves.
	drone := snap.Drones[0] // "chill" sits at the nearest service point
	want := *drone.Capability.CostInitial + *drone.Capability.CostFinal +
		float64(got.TotalMoves)**drone.Capability.CostPerMove
	if math.Abs(got.TotalCost-want) > 1e-9 {
		t.Fatalf("TotalCost = %v, want %v for %d moves", got.TotalCost, want, got.TotalMoves)
	}
	if got.TotalMoves == 0 {
		t.Fatal("TotalMoves must count the flight")
	}
}

func TestDeliveryPlanStepGeometry(t *testing.T) {
	p := New(nil)
	got := p.DeliveryPlan(testSnapshot(), []model.DispatchOrder{simpleOrder(1, 0.00055, 0)})
	if len(got.DronePaths) != 1 {
		t.Fatalf("no plan produced")
	}
	for _, d := range got.DronePaths[0].Deliveries {
		path := d.FlightPath
		for i := 1; i < len(path); i++ {
			step := geo.Distance(path[i-1], path[i])
			if step > geo.MoveStep+1e-9 {
				t.Fatalf("leg step %d has length %v, exceeds one move", i, step)
			}
		}
	}
}

func TestDeliveryPlanInfeasibleRequirements(t *testing.T) {
	p := New(nil)
	o := simpleOrder(1, 0.00055, 0)
	o.Requirements = nil
	got := p.DeliveryPlan(testSnapshot(), []model.DispatchOrder{o})
	if len(got.DronePaths) != 0 || got.TotalCost != 0 {
		t.Fatalf("order without requirements planned: %+v", got)
	}
}

func TestDeliveryPlanMoveCeiling(t *testing.T) {
	snap := testSnapshot()
	for i := range snap.Drones {
		snap.Drones[i].Capability.MaxMoves = ip(2)
	}
	p := New(nil)
	got := p.DeliveryPlan(snap, []model.DispatchOrder{simpleOrder(1, 0.00055, 0)})
	if len(got.DronePaths) != 0 {
		t.Fatalf("plan exceeded the move ceiling: %+v", got)
	}
}

func TestDeliveryPlanSplitsAcrossFleet(t *testing.T) {
	// One order needs cooling, the other heating; no single drone can
	// fly both, so the fleet splits the work.
	cold := simpleOrder(1, 0.0004, 0)
	cold.Requirements.Cooling = bp(true)
	hot := simpleOrder(2, 0.0016, 0)
	hot.Requirements.Heating = bp(true)

	p := New(nil)
	got := p.DeliveryPlan(testSnapshot(), []model.DispatchOrder{cold, hot})
	if len(got.DronePaths) != 2 {
		t.Fatalf("expected both drones flying, got %+v", got)
	}
	seen := map[string]bool{}
	for _, dp := range got.DronePaths {
		seen[dp.DroneID] = true
	}
	if !seen["chill"] || !seen["warm"] {
		t.Fatalf("wrong drones assigned: %v", seen)
	}
}

func TestDeliveryPlanCostCeilingPerOrder(t *testing.T) {
	o := simpleOrder(1, 0.00055, 0)
	o.Requirements.MaxCost = fp(0.01) // far below any achievable batch share
	p := New(nil)
	got := p.DeliveryPlan(testSnapshot(), []model.DispatchOrder{o})
	if len(got.DronePaths) != 0 {
		t.Fatalf("plan violated the cost ceiling: %+v", got)
	}
}

func TestDeliveryPlanBlockedDestination(t *testing.T) {
	snap := testSnapshot()
	snap.RestrictedAreas = []model.RestrictedArea{{
		Name: "court",
		Vertices: []model.Position{
			{Lng: 0.0004, Lat: -0.0004},
			{Lng: 0.0008, Lat: -0.0004},
			{Lng: 0.0008, Lat: 0.0004},
			{Lng: 0.0004, Lat: 0.0004},
			{Lng: 0.0004, Lat: -0.0004},
		},
	}}
	p := New(nil)
	got := p.DeliveryPlan(snap, []model.DispatchOrder{simpleOrder(1, 0.0006, 0)})
	if len(got.DronePaths) != 0 {
		t.Fatalf("planned a delivery into a restricted area: %+v", got)
	}
}

func TestDeliveryPlanBatchesByCapacity(t *testing.T) {
	// Three orders of weight 2 on a capacity-5 drone: two fit on one
	// takeoff, the third flies separately, all on the same drone.
	snap := testSnapshot()
	orders := []model.DispatchOrder{}
	for i := 1; i <= 3; i++ {
		o := simpleOrder(i, 0.0003+float64(i)*0.0001, 0)
		o.Requirements.Capacity = fp(2)
		o.Requirements.Cooling = bp(true)
		orders = append(orders, o)
	}
	p := New(nil)
	got := p.DeliveryPlan(snap, orders)
	if len(got.DronePaths) != 1 {
		t.Fatalf("expected a single drone, got %+v", got)
	}
	if got.DronePaths[0].DroneID != "chill" {
		t.Fatalf("wrong drone: %s", got.DronePaths[0].DroneID)
	}
	// Three delivery legs plus one return leg per batch.
	legs := got.DronePaths[0].Deliveries
	withID := 0
	returns := 0
	for _, l := range legs {
		if l.DeliveryID != nil {
			withID++
		} else {
			returns++
		}
	}
	if withID != 3 {
		t.Fatalf("expected 3 delivery legs, got %d", withID)
	}
	if returns != 2 {
		t.Fatalf("expected 2 return legs for 2 batches, got %d", returns)
	}
}

func TestDeliveryPlanContradictoryThermal(t *testing.T) {
	o := simpleOrder(1, 0.00055, 0)
	o.Requirements.Cooling = bp(true)
	o.Requirements.Heating = bp(true)
	p := New(nil)
	got := p.DeliveryPlan(testSnapshot(), []model.DispatchOrder{o})
	if len(got.DronePaths) != 0 || got.TotalCost != 0 || got.TotalMoves != 0 {
		t.Fatalf("contradictory order planned: %+v", got)
	}
}

func TestChooseBestPicksCheaper(t *testing.T) {
	single := &model.DeliveryPlan{TotalCost: 5, DronePaths: []model.DronePath{{DroneID: "a"}}}
	multi := &model.DeliveryPlan{TotalCost: 3, DronePaths: []model.DronePath{{DroneID: "b"}}}
	if got := chooseBest(single, multi); got.TotalCost != 3 {
		t.Fatalf("chooseBest = %+v, want the cheaper plan", got)
	}
	// Equal cost goes to the single-drone plan.
	multi.TotalCost = 5
	if got := chooseBest(single, multi); got.DronePaths[0].DroneID != "a" {
		t.Fatalf("tie must favour the single-drone plan, got %+v", got)
	}
	if got := chooseBest(nil, nil); len(got.DronePaths) != 0 || got.DronePaths == nil {
		t.Fatalf("no strategies must yield an empty plan, got %+v", got)
	}
}

func TestRenderGeoJSON(t *testing.T) {
	p := New(nil)
	got := p.DeliveryPlan(testSnapshot(), []model.DispatchOrder{simpleOrder(1, 0.00055, 0)})
	fc := RenderGeoJSON(got)
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("RenderGeoJSON = %+v", fc)
	}
	f := fc.Features[0]
	if f.Geometry.Type != "LineString" || len(f.Geometry.Coordinates) == 0 {
		t.Fatalf("geometry = %+v", f.Geometry)
	}
	if f.Properties["name"] != "Drone 1 Path" || f.Properties["stroke"] != "#0000FF" {
		t.Fatalf("properties = %+v", f.Properties)
	}
}

func TestRenderGeoJSONEmptyPlan(t *testing.T) {
	fc := RenderGeoJSON(model.DeliveryPlan{DronePaths: []model.DronePath{}})
	if fc.Type != "FeatureCollection" {
		t.Fatalf("type = %q", fc.Type)
	}
	if fc.Features == nil || len(fc.Features) != 0 {
		t.Fatalf("features = %v, want empty non-nil", fc.Features)
	}
}

func TestColorForDroneCycles(t *testing.T) {
	if ColorForDrone(0) != "#0000FF" {
		t.Fatalf("color 0 = %s", ColorForDrone(0))
	}
	if ColorForDrone(10) != ColorForDrone(0) || ColorForDrone(13) != ColorForDrone(3) {
		t.Fatal("palette must cycle every 10 drones")
	}
}
