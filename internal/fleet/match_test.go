package fleet

import (
	"reflect"
	"testing"

	"droneplan/internal/model"
)

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

// 2026-01-05 is a Monday.
const monday = "2026-01-05"

func testFleet() ([]model.Drone, []model.ServicePointRoster, []model.ServicePoint) {
	drones := []model.Drone{
		{
			ID:   "hauler",
			Name: "Hauler",
			Capability: &model.Capability{
				Cooling:     bptr(true),
				Heating:     bptr(false),
				Capacity:    fptr(10),
				CostPerMove: fptr(0.01),
				CostInitial: fptr(1),
				CostFinal:   fptr(1),
			},
		},
		{
			ID:   "scout",
			Name: "Scout",
			Capability: &model.Capability{
				Cooling:     bptr(false),
				Heating:     bptr(true),
				Capacity:    fptr(2),
				CostPerMove: fptr(0.005),
				CostInitial: fptr(0.5),
				CostFinal:   fptr(0.5),
			},
		},
	}
	rosters := []model.ServicePointRoster{
		{
			ServicePointID: 1,
			Drones: []model.RosterDrone{
				{ID: "hauler", Availability: []model.AvailabilitySlot{
					{DayOfWeek: "Monday", From: "08:00", Until: "18:00"},
				}},
				{ID: "scout", Availability: []model.AvailabilitySlot{
					{DayOfWeek: "MONDAY", From: "00:00", Until: "23:59"},
				}},
			},
		},
	}
	points := []model.ServicePoint{
		{ID: 1, Name: "Depot", Location: &model.Position{Lng: 0, Lat: 0}},
	}
	return drones, rosters, points
}

func order(id int, capacity float64) model.DispatchOrder {
	return model.DispatchOrder{
		ID:           id,
		Date:         monday,
		Time:         "10:00",
		Requirements: &model.Requirements{Capacity: fptr(capacity)},
		Delivery:     &model.Position{Lng: 0.001, Lat: 0.001},
	}
}

func TestMatchAllCapacityGate(t *testing.T) {
	drones, rosters, points := testFleet()
	got := MatchAll(drones, rosters, points, []model.DispatchOrder{order(1, 5)})
	if !reflect.DeepEqual(got, []string{"hauler"}) {
		t.Fatalf("MatchAll = %v, want [hauler]", got)
	}
}

func TestMatchAllEmptyOrders(t *testing.T) {
	drones, rosters, points := testFleet()
	got := MatchAll(drones, rosters, points, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("MatchAll with no orders = %v, want empty non-nil slice", got)
	}
}

func TestMatchAllImpossibleRequirements(t *testing.T) {
	drones, rosters, points := testFleet()
	o := order(1, 1)
	o.Requirements.Cooling = bptr(true)
	o.Requirements.Heating = bptr(true)
	got := MatchAll(drones, rosters, points, []model.DispatchOrder{o})
	if len(got) != 0 {
		t.Fatalf("cooling+heating order matched %v, want none", got)
	}
}

func TestMatchAllCoolingGate(t *testing.T) {
	drones, rosters, points := testFleet()
	o := order(1, 1)
	o.Requirements.Cooling = bptr(true)
	got := MatchAll(drones, rosters, points, []model.DispatchOrder{o})
	if !reflect.DeepEqual(got, []string{"hauler"}) {
		t.Fatalf("cooling order matched %v, want [hauler]", got)
	}
}

func TestMatchAllNilRequirements(t *testing.T) {
	drones, rosters, points := testFleet()
	o := model.DispatchOrder{ID: 9, Date: monday, Time: "10:00"}
	got := MatchAll(drones, rosters, points, []model.DispatchOrder{o})
	if len(got) != 0 {
		t.Fatalf("order without requirements matched %v, want none", got)
	}
}

func TestMatchAllOutsideAvailability(t *testing.T) {
	drones, rosters, points := testFleet()
	o := order(1, 5)
	o.Time = "22:00" // hauler only flies 08:00-18:00
	got := MatchAll(drones, rosters, points, []model.DispatchOrder{o})
	if len(got) != 0 {
		t.Fatalf("after-hours order matched %v, want none", got)
	}
}

func TestMatchAllMaxCost(t *testing.T) {
	drones, rosters, points := testFleet()
	o := order(1, 5)
	// Round trip from the depot is 2*ceil(dist/step) moves; at the
	// hauler's rates that comfortably exceeds one cent.
	o.Requirements.MaxCost = fptr(0.01)
	got := MatchAll(drones, rosters, points, []model.DispatchOrder{o})
	if len(got) != 0 {
		t.Fatalf("unaffordable order matched %v, want none", got)
	}
	o.Requirements.MaxCost = fptr(1000)
	got = MatchAll(drones, rosters, points, []model.DispatchOrder{o})
	if !reflect.DeepEqual(got, []string{"hauler"}) {
		t.Fatalf("affordable order matched %v, want [hauler]", got)
	}
}

func TestMatchAnyIgnoresMaxCost(t *testing.T) {
	drones, rosters, _ := testFleet()
	o := order(1, 5)
	o.Requirements.MaxCost = fptr(0.0001)
	got := MatchAny(drones, rosters, []model.DispatchOrder{o})
	if !reflect.DeepEqual(got, []string{"hauler"}) {
		t.Fatalf("MatchAny = %v, want [hauler]", got)
	}
}

func TestMatchAnyNoCapacityRequirement(t *testing.T) {
	// A drone without a declared capacity can still serve orders that do
	// not ask for one.
	drones := []model.Drone{
		{ID: "chiller", Capability: &model.Capability{Cooling: bptr(true)}},
	}
	rosters := []model.ServicePointRoster{
		{ServicePointID: 1, Drones: []model.RosterDrone{
			{ID: "chiller", Availability: []model.AvailabilitySlot{
				{DayOfWeek: "Monday", From: "08:00", Until: "18:00"},
			}},
		}},
	}
	o := model.DispatchOrder{
		ID:           1,
		Date:         monday,
		Time:         "10:00",
		Requirements: &model.Requirements{},
	}
	got := MatchAny(drones, rosters, []model.DispatchOrder{o})
	if !reflect.DeepEqual(got, []string{"chiller"}) {
		t.Fatalf("MatchAny = %v, want [chiller]", got)
	}
}

func TestMatchWithoutScheduleSkipsRoster(t *testing.T) {
	// The roster only gates orders that name a date and time; an
	// unrostered drone can serve orders without a dispatch window.
	drones := []model.Drone{
		{ID: "free", Capability: &model.Capability{Capacity: fptr(5)}},
	}
	o := model.DispatchOrder{
		ID:           1,
		Requirements: &model.Requirements{Capacity: fptr(1)},
	}
	got := MatchAll(drones, nil, nil, []model.DispatchOrder{o})
	if !reflect.DeepEqual(got, []string{"free"}) {
		t.Fatalf("MatchAll = %v, want [free]", got)
	}
	got = MatchAny(drones, nil, []model.DispatchOrder{o})
	if !reflect.DeepEqual(got, []string{"free"}) {
		t.Fatalf("MatchAny = %v, want [free]", got)
	}
}

func TestMatchAnySingleOrderSuffices(t *testing.T) {
	drones, rosters, _ := testFleet()
	heavy := order(1, 100) // nobody can lift this
	light := order(2, 1)
	got := MatchAny(drones, rosters, []model.DispatchOrder{heavy, light})
	if !reflect.DeepEqual(got, []string{"hauler", "scout"}) {
		t.Fatalf("MatchAny = %v, want both drones", got)
	}
}

func TestSlotCoversMalformedData(t *testing.T) {
	slot := &model.RosterDrone{ID: "x", Availability: []model.AvailabilitySlot{
		{DayOfWeek: "Funday", From: "08:00", Until: "18:00"},
		{DayOfWeek: "Monday", From: "", Until: "18:00"},
		{DayOfWeek: "Monday", From: "not-a-time", Until: "18:00"},
	}}
	if SlotCovers(slot, monday, "10:00") {
		t.Fatal("malformed slots must not cover anything")
	}
	if SlotCovers(slot, "never", "10:00") {
		t.Fatal("malformed date must fail the check")
	}
	if SlotCovers(slot, monday, "sometime") {
		t.Fatal("malformed time must fail the check")
	}
}

func TestSlotCoversInclusiveBounds(t *testing.T) {
	slot := &model.RosterDrone{ID: "x", Availability: []model.AvailabilitySlot{
		{DayOfWeek: "monday", From: "08:00:00", Until: "18:00:00"},
	}}
	for _, clock := range []string{"08:00", "18:00", "12:30:15"} {
		if !SlotCovers(slot, monday, clock) {
			t.Fatalf("slot should cover %s", clock)
		}
	}
	for _, clock := range []string{"07:59", "18:01"} {
		if SlotCovers(slot, monday, clock) {
			t.Fatalf("slot should not cover %s", clock)
		}
	}
}

func TestServicePointForOrder(t *testing.T) {
	_, rosters, _ := testFleet()
	spID, ok := ServicePointForOrder("hauler", order(1, 1), rosters)
	if !ok || spID != 1 {
		t.Fatalf("ServicePointForOrder = %d,%v, want 1,true", spID, ok)
	}
	if _, ok := ServicePointForOrder("ghost", order(1, 1), rosters); ok {
		t.Fatal("unknown drone must not resolve to a service point")
	}
}
