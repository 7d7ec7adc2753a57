package model

// Core domain types shared across the planner, matcher, and API layers.

// Position is a lng/lat coordinate pair in degrees.
type Position struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// RestrictedArea is a closed no-fly polygon (first vertex == last vertex).
type RestrictedArea struct {
	Name     string     `json:"name,omitempty"`
	ID       int        `json:"id,omitempty"`
	Limits   *Limits    `json:"limits,omitempty"`
	Vertices []Position `json:"vertices"`
}

// Limits carries optional altitude bounds for a restricted area.
type Limits struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// Capability describes what a drone can carry and what flying it costs.
// All fields are optional in the upstream catalog; absent booleans mean
// unsupported, absent costs mean zero, absent maxMoves means the default
// move ceiling applies.
type Capability struct {
	Cooling     *bool    `json:"cooling,omitempty"`
	Heating     *bool    `json:"heating,omitempty"`
	Capacity    *float64 `json:"capacity,omitempty"`
	MaxMoves    *int     `json:"maxMoves,omitempty"`
	CostPerMove *float64 `json:"costPerMove,omitempty"`
	CostInitial *float64 `json:"costInitial,omitempty"`
	CostFinal   *float64 `json:"costFinal,omitempty"`
}

// Drone is a fleet member. A drone without a capability record can serve
// nothing.
type Drone struct {
	Name       string      `json:"name,omitempty"`
	ID         string      `json:"id"`
	Capability *Capability `json:"capability,omitempty"`
}

// ServicePoint is a drone operating base.
type ServicePoint struct {
	Name     string    `json:"name,omitempty"`
	ID       int       `json:"id"`
	Location *Position `json:"location,omitempty"`
}

// ServicePointRoster lists the drones stationed at one service point with
// their weekly availability windows.
type ServicePointRoster struct {
	ServicePointID int           `json:"servicePointId"`
	Drones         []RosterDrone `json:"drones,omitempty"`
}

type RosterDrone struct {
	ID           string             `json:"id"`
	Availability []AvailabilitySlot `json:"availability,omitempty"`
}

// AvailabilitySlot is a weekly window. A drone is available at a timestamp
// iff the weekday matches and from <= time <= until, both ends inclusive.
type AvailabilitySlot struct {
	DayOfWeek string `json:"dayOfWeek,omitempty"`
	From      string `json:"from,omitempty"`
	Until     string `json:"until,omitempty"`
}

// Requirements are the constraints a dispatch order places on the drone
// serving it. Requiring both cooling and heating is a contradiction no
// drone can satisfy.
type Requirements struct {
	Capacity *float64 `json:"capacity,omitempty"`
	Cooling  *bool    `json:"cooling,omitempty"`
	Heating  *bool    `json:"heating,omitempty"`
	MaxCost  *float64 `json:"maxCost,omitempty"`
}

// DispatchOrder is one delivery request.
type DispatchOrder struct {
	ID           int           `json:"id"`
	Date         string        `json:"date,omitempty"`
	Time         string        `json:"time,omitempty"`
	Requirements *Requirements `json:"requirements,omitempty"`
	Delivery     *Position     `json:"delivery,omitempty"`
}

// DeliveryPlan is the planner's result. A zero plan (cost 0, moves 0, no
// paths) means no feasible assignment was found, or there was nothing to do.
type DeliveryPlan struct {
	TotalCost  float64     `json:"totalCost"`
	TotalMoves int         `json:"totalMoves"`
	DronePaths []DronePath `json:"dronePaths"`
}

type DronePath struct {
	DroneID    string     `json:"droneId"`
	Deliveries []Delivery `json:"deliveries"`
}

// Delivery is one leg of a drone's itinerary. A nil DeliveryID marks the
// synthetic return-to-base leg.
type Delivery struct {
	DeliveryID *int       `json:"deliveryId"`
	FlightPath []Position `json:"flightPath"`
}

// QueryAttribute is one predicate of a drone attribute query.
type QueryAttribute struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}
