// Package plan turns dispatch orders into priced drone itineraries. Two
// strategies run for every request: one drone serving everything, and a
// fleet split into per-day batches. The cheaper feasible result wins.
package plan

import (
	"sort"

	"droneplan/internal/catalog"
	"droneplan/internal/fleet"
	"droneplan/internal/geo"
	"droneplan/internal/model"
	"droneplan/internal/pathfind"
	"droneplan/internal/progress"
)

// defaultMaxMoves caps a batch when the drone's capability record does
// not set its own ceiling.
const defaultMaxMoves = 5000

// maxBatchSize bounds how many orders ride on one takeoff.
const maxBatchSize = 3

type Planner struct {
	pf   *pathfind.Pathfinder
	sink progress.Sink
}

func New(sink progress.Sink) *Planner {
	if sink == nil {
		sink = progress.NopSink{}
	}
	return &Planner{pf: pathfind.New(sink), sink: sink}
}

// DeliveryPlan computes itineraries for the given orders. An infeasible
// or empty request yields a zero plan, never an error.
func (p *Planner) DeliveryPlan(snap catalog.Snapshot, orders []model.DispatchOrder) model.DeliveryPlan {
	if len(orders) == 0 {
		return emptyPlan()
	}
	single := p.singleDrone(snap, orders)
	multi := p.multiDrone(snap, orders)
	return chooseBest(single, multi)
}

func emptyPlan() model.DeliveryPlan {
	return model.DeliveryPlan{DronePaths: []model.DronePath{}}
}

// Ties go to the single-drone plan: fewer takeoffs at equal cost.
func chooseBest(single, multi *model.DeliveryPlan) model.DeliveryPlan {
	switch {
	case single == nil && multi == nil:
		return emptyPlan()
	case single == nil:
		return *multi
	case multi == nil:
		return *single
	case single.TotalCost <= multi.TotalCost:
		return *single
	default:
		return *multi
	}
}

// singleDrone looks for one drone that can serve every order. Service
// points closest to the delivery centroid are tried first, and each
// candidate flies the orders in nearest-neighbour sequence from its base.
func (p *Planner) singleDrone(snap catalog.Snapshot, orders []model.DispatchOrder) *model.DeliveryPlan {
	candidates := fleet.MatchAll(snap.Drones, snap.Rosters, snap.ServicePoints, orders)
	if len(candidates) == 0 {
		return nil
	}
	center := centroid(orders)
	for _, sp := range sortedServicePoints(snap.ServicePoints, center) {
		for _, droneID := range dronesAt(snap.Rosters, sp.ID, candidates) {
			drone := fleet.DroneByID(snap.Drones, droneID)
			if drone == nil || drone.Capability == nil {
				continue
			}
			ordered := nearestNeighbourOrder(orders, *sp.Location)
			if sol := p.tryDeliverySequence(drone, ordered, snap); sol != nil {
				return sol
			}
		}
	}
	return nil
}

type assignment struct {
	path  model.DronePath
	cost  float64
	moves int
	batch []model.DispatchOrder
}

// multiDrone splits the orders across the fleet. Within each dispatch
// date the first unserved order anchors a batch; if any order can find
// no drone at all the whole strategy is infeasible.
func (p *Planner) multiDrone(snap catalog.Snapshot, orders []model.DispatchOrder) *model.DeliveryPlan {
	candidates := fleet.MatchAny(snap.Drones, snap.Rosters, orders)
	if len(candidates) == 0 {
		return nil
	}
	var paths []model.DronePath
	var totalCost float64
	var totalMoves int
	for _, g := range fleet.GroupOrdersByDate(orders) {
		daily := append([]model.DispatchOrder(nil), g.Orders...)
		for len(daily) > 0 {
			a := p.findBestAssignment(daily, candidates, snap)
			if a == nil {
				return nil
			}
			paths = append(paths, a.path)
			totalCost += a.cost
			totalMoves += a.moves
			daily = removeOrders(daily, a.batch)
		}
	}
	return &model.DeliveryPlan{
		TotalCost:  totalCost,
		TotalMoves: totalMoves,
		DronePaths: mergeDronePaths(paths),
	}
}

func (p *Planner) findBestAssignment(daily []model.DispatchOrder, candidates []string, snap catalog.Snapshot) *assignment {
	anchor := daily[0]
	for _, sp := range sortedServicePoints(snap.ServicePoints, deliveryPos(anchor)) {
		for _, droneID := range dronesAt(snap.Rosters, sp.ID, candidates) {
			drone := fleet.DroneByID(snap.Drones, droneID)
			if drone == nil || drone.Capability == nil {
				continue
			}
			batch := buildBatch(anchor, daily, *drone, snap.Rosters)
			if len(batch) == 0 {
				continue
			}
			sol := p.tryDeliverySequence(drone, batch, snap)
			if sol == nil || len(sol.DronePaths) == 0 {
				continue
			}
			return &assignment{
				path:  sol.DronePaths[0],
				cost:  sol.TotalCost,
				moves: sol.TotalMoves,
				batch: batch,
			}
		}
	}
	return nil
}

// buildBatch grows a batch around the anchor order with nearby same-day
// orders the drone can also carry, respecting its capacity.
func buildBatch(anchor model.DispatchOrder, daily []model.DispatchOrder, drone model.Drone, rosters []model.ServicePointRoster) []model.DispatchOrder {
	if !canServe(drone, anchor, rosters) {
		return nil
	}
	maxCapacity := capacityOf(drone)
	load := reqCapacity(anchor)
	if load > maxCapacity {
		return nil
	}
	batch := []model.DispatchOrder{anchor}

	others := make([]model.DispatchOrder, 0, len(daily))
	for _, o := range daily {
		if o.ID != anchor.ID && o.Date == anchor.Date {
			others = append(others, o)
		}
	}
	anchorPos := deliveryPos(anchor)
	sort.SliceStable(others, func(i, j int) bool {
		return geo.Distance(deliveryPos(others[i]), anchorPos) <
			geo.Distance(deliveryPos(others[j]), anchorPos)
	})

	for _, o := range others {
		if len(batch) >= maxBatchSize {
			break
		}
		if !canServe(drone, o, rosters) {
			continue
		}
		need := reqCapacity(o)
		if load+need > maxCapacity {
			continue
		}
		load += need
		batch = append(batch, o)
	}
	return batch
}

// canServe checks hard eligibility only; cost ceilings are enforced when
// the batch is priced.
func canServe(drone model.Drone, o model.DispatchOrder, rosters []model.ServicePointRoster) bool {
	if drone.Capability == nil || o.Requirements == nil {
		return false
	}
	if !fleet.AvailableForOrder(drone.ID, o, rosters) {
		return false
	}
	r := o.Requirements
	if r.Cooling != nil && *r.Cooling && (drone.Capability.Cooling == nil || !*drone.Capability.Cooling) {
		return false
	}
	if r.Heating != nil && *r.Heating && (drone.Capability.Heating == nil || !*drone.Capability.Heating) {
		return false
	}
	if r.Capacity != nil && *r.Capacity > capacityOf(drone) {
		return false
	}
	return true
}

func capacityOf(d model.Drone) float64 {
	if d.Capability == nil || d.Capability.Capacity == nil {
		return 0
	}
	return *d.Capability.Capacity
}

func reqCapacity(o model.DispatchOrder) float64 {
	if o.Requirements == nil || o.Requirements.Capacity == nil {
		return 0
	}
	return *o.Requirements.Capacity
}

func deliveryPos(o model.DispatchOrder) model.Position {
	if o.Delivery == nil {
		return model.Position{}
	}
	return *o.Delivery
}

func centroid(orders []model.DispatchOrder) model.Position {
	var sum model.Position
	n := 0
	for _, o := range orders {
		if o.Delivery == nil {
			continue
		}
		sum.Lng += o.Delivery.Lng
		sum.Lat += o.Delivery.Lat
		n++
	}
	if n == 0 {
		return model.Position{}
	}
	return model.Position{Lng: sum.Lng / float64(n), Lat: sum.Lat / float64(n)}
}

// sortedServicePoints returns the located service points ordered by
// distance to target.
func sortedServicePoints(points []model.ServicePoint, target model.Position) []model.ServicePoint {
	out := make([]model.ServicePoint, 0, len(points))
	for _, sp := range points {
		if sp.Location != nil {
			out = append(out, sp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return geo.Distance(*out[i].Location, target) < geo.Distance(*out[j].Location, target)
	})
	return out
}

// dronesAt lists candidate drone ids stationed at a service point, in
// roster order.
func dronesAt(rosters []model.ServicePointRoster, spID int, candidates []string) []string {
	allowed := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		allowed[id] = true
	}
	var out []string
	for _, r := range rosters {
		if r.ServicePointID != spID {
			continue
		}
		for _, d := range r.Drones {
			if allowed[d.ID] {
				out = append(out, d.ID)
			}
		}
	}
	return out
}

// nearestNeighbourOrder greedily sequences orders by flight proximity
// starting from the drone's base.
func nearestNeighbourOrder(orders []model.DispatchOrder, start model.Position) []model.DispatchOrder {
	remaining := append([]model.DispatchOrder(nil), orders...)
	out := make([]model.DispatchOrder, 0, len(orders))
	cur := start
	for len(remaining) > 0 {
		best := 0
		bestDist := geo.Distance(cur, deliveryPos(remaining[0]))
		for i := 1; i < len(remaining); i++ {
			if d := geo.Distance(cur, deliveryPos(remaining[i])); d < bestDist {
				best, bestDist = i, d
			}
		}
		picked := remaining[best]
		out = append(out, picked)
		cur = deliveryPos(picked)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return out
}

func removeOrders(daily []model.DispatchOrder, served []model.DispatchOrder) []model.DispatchOrder {
	done := make(map[int]bool, len(served))
	for _, o := range served {
		done[o.ID] = true
	}
	out := daily[:0]
	for _, o := range daily {
		if !done[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

// mergeDronePaths folds batches flown by the same drone into one path,
// preserving first-flight order.
func mergeDronePaths(paths []model.DronePath) []model.DronePath {
	var out []model.DronePath
	index := map[string]int{}
	for _, p := range paths {
		if i, ok := index[p.DroneID]; ok {
			out[i].Deliveries = append(out[i].Deliveries, p.Deliveries...)
			continue
		}
		index[p.DroneID] = len(out)
		out = append(out, p)
	}
	return out
}
