package fleet

import (
	"math"
	"strings"
	"time"

	"droneplan/internal/geo"
	"droneplan/internal/model"
)

// MatchAll returns the ids of drones able to serve every order in the
// request, grouped by date so a drone only needs to satisfy one day's
// orders at a time.
func MatchAll(drones []model.Drone, rosters []model.ServicePointRoster, points []model.ServicePoint, orders []model.DispatchOrder) []string {
	matched := []string{}
	if len(orders) == 0 {
		return matched
	}
	if hasImpossibleOrder(orders) {
		return matched
	}
	groups := GroupOrdersByDate(orders)
	for _, d := range drones {
		if d.Capability == nil {
			continue
		}
		slot := availabilityFor(d.ID, rosters)
		ok := true
		for _, g := range groups {
			if !canHandleDay(d, slot, rosters, points, g.Orders) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, d.ID)
		}
	}
	return matched
}

// MatchAny returns the ids of drones able to serve at least one order.
// Cost limits are ignored here; affordability is settled when batches
// are priced.
func MatchAny(drones []model.Drone, rosters []model.ServicePointRoster, orders []model.DispatchOrder) []string {
	matched := []string{}
	if len(orders) == 0 {
		return matched
	}
	if hasImpossibleOrder(orders) {
		return matched
	}
	for _, d := range drones {
		if d.Capability == nil {
			continue
		}
		slot := availabilityFor(d.ID, rosters)
		for _, o := range orders {
			if canHandleOrderAny(d, slot, o) {
				matched = append(matched, d.ID)
				break
			}
		}
	}
	return matched
}

// An order demanding both cooling and heating can never be served.
func hasImpossibleOrder(orders []model.DispatchOrder) bool {
	for _, o := range orders {
		r := o.Requirements
		if r == nil {
			continue
		}
		if r.Cooling != nil && *r.Cooling && r.Heating != nil && *r.Heating {
			return true
		}
	}
	return false
}

// DateGroup holds the orders sharing one dispatch date, in request order.
type DateGroup struct {
	Date   string
	Orders []model.DispatchOrder
}

// GroupOrdersByDate splits orders by date, preserving first-seen date
// order so results are stable across runs.
func GroupOrdersByDate(orders []model.DispatchOrder) []DateGroup {
	var groups []DateGroup
	index := map[string]int{}
	for _, o := range orders {
		i, ok := index[o.Date]
		if !ok {
			i = len(groups)
			index[o.Date] = i
			groups = append(groups, DateGroup{Date: o.Date})
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	return groups
}

// availabilityFor finds the first roster entry for the drone across all
// service points. A drone stationed at several points is matched on its
// first listing only. Unrostered drones get nil; the roster only gates
// orders that carry a dispatch window or a cost ceiling.
func availabilityFor(droneID string, rosters []model.ServicePointRoster) *model.RosterDrone {
	for _, r := range rosters {
		for i := range r.Drones {
			if r.Drones[i].ID == droneID {
				return &r.Drones[i]
			}
		}
	}
	return nil
}

func canHandleDay(d model.Drone, slot *model.RosterDrone, rosters []model.ServicePointRoster, points []model.ServicePoint, orders []model.DispatchOrder) bool {
	for _, o := range orders {
		r := o.Requirements
		if r == nil {
			return false
		}
		if r.Capacity != nil {
			capacity := 0.0
			if d.Capability.Capacity != nil {
				capacity = *d.Capability.Capacity
			}
			if *r.Capacity > capacity {
				return false
			}
		}
		if r.Cooling != nil && *r.Cooling && !boolVal(d.Capability.Cooling) {
			return false
		}
		if r.Heating != nil && *r.Heating && !boolVal(d.Capability.Heating) {
			return false
		}
		if o.Date != "" && o.Time != "" && !SlotCovers(slot, o.Date, o.Time) {
			return false
		}
		if !affordable(d, slot, rosters, points, o) {
			return false
		}
	}
	return true
}

func canHandleOrderAny(d model.Drone, slot *model.RosterDrone, o model.DispatchOrder) bool {
	r := o.Requirements
	if r == nil {
		return false
	}
	if r.Capacity != nil {
		if d.Capability.Capacity == nil || *r.Capacity > *d.Capability.Capacity {
			return false
		}
	}
	if r.Cooling != nil && *r.Cooling && !boolVal(d.Capability.Cooling) {
		return false
	}
	if r.Heating != nil && *r.Heating && !boolVal(d.Capability.Heating) {
		return false
	}
	if o.Date != "" && o.Time != "" && !SlotCovers(slot, o.Date, o.Time) {
		return false
	}
	return true
}

// affordable estimates the round trip cost from the drone's home service
// point and compares it with the order's cost ceiling. Missing pricing
// data means no ceiling applies.
func affordable(d model.Drone, slot *model.RosterDrone, rosters []model.ServicePointRoster, points []model.ServicePoint, o model.DispatchOrder) bool {
	r := o.Requirements
	if r == nil || r.MaxCost == nil || o.Delivery == nil || d.Capability == nil {
		return true
	}
	if slot == nil {
		return false
	}
	home := homeLocation(slot, rosters, points)
	if home == nil {
		return false
	}
	moves := int(math.Ceil(geo.Distance(*home, *o.Delivery) / geo.MoveStep))
	cost := floatVal(d.Capability.CostInitial) + floatVal(d.Capability.CostFinal) +
		2*float64(moves)*floatVal(d.Capability.CostPerMove)
	return cost <= *r.MaxCost
}

// homeLocation resolves the service point whose roster contains the
// drone's availability record.
func homeLocation(slot *model.RosterDrone, rosters []model.ServicePointRoster, points []model.ServicePoint) *model.Position {
	for _, r := range rosters {
		for i := range r.Drones {
			if &r.Drones[i] == slot || r.Drones[i].ID == slot.ID {
				for _, sp := range points {
					if sp.ID == r.ServicePointID {
						return sp.Location
					}
				}
				return nil
			}
		}
	}
	return nil
}

// SlotCovers reports whether the drone's availability includes the given
// date and time. Malformed values fail the check rather than erroring.
func SlotCovers(slot *model.RosterDrone, date, clock string) bool {
	if slot == nil {
		return false
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	at, ok := parseClock(clock)
	if !ok {
		return false
	}
	weekday := day.Weekday().String()
	for _, s := range slot.Availability {
		if !strings.EqualFold(s.DayOfWeek, weekday) {
			continue
		}
		if s.From == "" || s.Until == "" {
			continue
		}
		from, okFrom := parseClock(s.From)
		until, okUntil := parseClock(s.Until)
		if !okFrom || !okUntil {
			continue
		}
		if !at.Before(from) && !at.After(until) {
			return true
		}
	}
	return false
}

// ServicePointForOrder finds the service point a drone would launch from
// for an order, picking the first roster whose entry for the drone covers
// the order's date and time.
func ServicePointForOrder(droneID string, o model.DispatchOrder, rosters []model.ServicePointRoster) (int, bool) {
	for _, r := range rosters {
		for i := range r.Drones {
			if r.Drones[i].ID != droneID {
				continue
			}
			if SlotCovers(&r.Drones[i], o.Date, o.Time) {
				return r.ServicePointID, true
			}
		}
	}
	return 0, false
}

// AvailableForOrder reports whether any roster entry for the drone covers
// the order's dispatch window.
func AvailableForOrder(droneID string, o model.DispatchOrder, rosters []model.ServicePointRoster) bool {
	_, ok := ServicePointForOrder(droneID, o, rosters)
	return ok
}

func parseClock(s string) (time.Time, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

func floatVal(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
