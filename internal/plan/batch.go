package plan

import (
	"fmt"

	"droneplan/internal/catalog"
	"droneplan/internal/fleet"
	"droneplan/internal/geo"
	"droneplan/internal/model"
	"droneplan/internal/progress"
)

// tryDeliverySequence attempts to fly the given orders with one drone,
// split into capacity-sized batches per launch point and day. Nil means
// the sequence is infeasible for this drone.
func (p *Planner) tryDeliverySequence(drone *model.Drone, orders []model.DispatchOrder, snap catalog.Snapshot) *model.DeliveryPlan {
	if drone.Capability == nil {
		return nil
	}
	var deliveries []model.Delivery
	var cost float64
	var moves int
	for _, g := range fleet.GroupOrdersByDate(orders) {
		batches := createBatches(g.Orders, *drone, snap.Rosters)
		if batches == nil {
			return nil
		}
		for _, batch := range batches {
			base := launchPoint(drone.ID, batch, snap.Rosters, snap.ServicePoints)
			if base == nil {
				return nil
			}
			res := p.executeBatch(*drone, batch, *base, snap.RestrictedAreas)
			if res == nil {
				return nil
			}
			deliveries = append(deliveries, res.deliveries...)
			cost += res.cost
			moves += res.moves
		}
	}
	return &model.DeliveryPlan{
		TotalCost:  cost,
		TotalMoves: moves,
		DronePaths: []model.DronePath{{DroneID: drone.ID, Deliveries: deliveries}},
	}
}

// createBatches groups one day's orders by launch service point, then
// splits each group into runs that fit the drone's capacity. A single
// order heavier than the drone, or one the drone has no launch point
// for, makes the day infeasible.
func createBatches(orders []model.DispatchOrder, drone model.Drone, rosters []model.ServicePointRoster) [][]model.DispatchOrder {
	if drone.Capability == nil || drone.Capability.Capacity == nil || *drone.Capability.Capacity <= 0 {
		return nil
	}
	capacity := *drone.Capability.Capacity

	type spGroup struct {
		orders []model.DispatchOrder
	}
	var groups []*spGroup
	index := map[int]int{}
	for _, o := range orders {
		spID, ok := fleet.ServicePointForOrder(drone.ID, o, rosters)
		if !ok {
			return nil
		}
		i, seen := index[spID]
		if !seen {
			i = len(groups)
			index[spID] = i
			groups = append(groups, &spGroup{})
		}
		groups[i].orders = append(groups[i].orders, o)
	}

	var batches [][]model.DispatchOrder
	for _, g := range groups {
		var cur []model.DispatchOrder
		load := 0.0
		for _, o := range g.orders {
			need := reqCapacity(o)
			if need > capacity {
				return nil
			}
			if len(cur) > 0 && load+need > capacity {
				batches = append(batches, cur)
				cur = nil
				load = 0
			}
			cur = append(cur, o)
			load += need
		}
		if len(cur) > 0 {
			batches = append(batches, cur)
		}
	}
	return batches
}

// launchPoint resolves the service point a batch flies from, via the
// drone's availability for the batch's first order.
func launchPoint(droneID string, batch []model.DispatchOrder, rosters []model.ServicePointRoster, points []model.ServicePoint) *model.Position {
	if len(batch) == 0 {
		return nil
	}
	spID, ok := fleet.ServicePointForOrder(droneID, batch[0], rosters)
	if !ok {
		return nil
	}
	for _, sp := range points {
		if sp.ID == spID {
			return sp.Location
		}
	}
	return nil
}

type batchResult struct {
	deliveries []model.Delivery
	cost       float64
	moves      int
}

// executeBatch flies one batch: base to each delivery in turn, then back
// to base. The flight to a delivery ends with the delivery position
// twice, a hover move for the handoff. Nil means some leg has no route
// or the batch violates a move or cost ceiling.
func (p *Planner) executeBatch(drone model.Drone, batch []model.DispatchOrder, base model.Position, areas []model.RestrictedArea) *batchResult {
	active := p.sink.Active()
	if active {
		p.sink.Broadcast(progress.BatchStarted(1, drone.ID, len(batch)))
	}

	for _, o := range batch {
		if o.Delivery != nil && geo.PointBlocked(*o.Delivery, areas) {
			if active {
				p.sink.Broadcast(progress.ErrorEvent(fmt.Sprintf("Delivery %d position is inside a restricted area", o.ID)))
			}
			return nil
		}
	}

	cur := base
	moves := 0
	var deliveries []model.Delivery
	for _, o := range batch {
		target := deliveryPos(o)
		if active {
			p.sink.Broadcast(progress.DeliveryStarted(o.ID, cur, target))
		}
		path := p.pf.FlightPathFor(o.ID, cur, target, areas)
		if len(path) == 0 {
			if active {
				p.sink.Broadcast(progress.ErrorEvent(fmt.Sprintf("No path found for delivery %d", o.ID)))
			}
			return nil
		}
		flight := append(append([]model.Position{}, path...), target, target)
		id := o.ID
		deliveries = append(deliveries, model.Delivery{DeliveryID: &id, FlightPath: flight})
		moves += len(path) + 1
		cur = target
	}

	returnPath := p.pf.FlightPath(cur, base, areas)
	if len(returnPath) == 0 {
		if active {
			p.sink.Broadcast(progress.ErrorEvent("No return path to the service point"))
		}
		return nil
	}
	returnFlight := append(append([]model.Position{}, returnPath...), base)
	deliveries = append(deliveries, model.Delivery{FlightPath: returnFlight})
	moves += len(returnPath)

	limit := defaultMaxMoves
	if drone.Capability.MaxMoves != nil {
		limit = *drone.Capability.MaxMoves
	}
	if moves > limit {
		return nil
	}

	cost := costOf(drone, moves)
	share := cost / float64(len(batch))
	for _, o := range batch {
		if o.Requirements != nil && o.Requirements.MaxCost != nil && share > *o.Requirements.MaxCost {
			return nil
		}
	}

	if active {
		p.sink.Broadcast(progress.BatchCompleted(1, drone.ID, cost, moves))
	}
	return &batchResult{deliveries: deliveries, cost: cost, moves: moves}
}

func costOf(drone model.Drone, moves int) float64 {
	c := drone.Capability
	total := 0.0
	if c.CostInitial != nil {
		total += *c.CostInitial
	}
	if c.CostPerMove != nil {
		total += float64(moves) * *c.CostPerMove
	}
	if c.CostFinal != nil {
		total += *c.CostFinal
	}
	return total
}
