package fleet

import (
	"strconv"
	"strings"

	"droneplan/internal/model"
)

// numeric comparisons on capability values tolerate small float noise
const numericTolerance = 1e-4

// DroneByID returns the drone with the given id, or nil.
func DroneByID(drones []model.Drone, id string) *model.Drone {
	for i := range drones {
		if drones[i].ID == id {
			return &drones[i]
		}
	}
	return nil
}

// WithCooling returns ids of drones whose cooling capability matches
// state. Drones without capability data never match.
func WithCooling(drones []model.Drone, state bool) []string {
	ids := []string{}
	for _, d := range drones {
		if d.Capability == nil || d.Capability.Cooling == nil {
			continue
		}
		if *d.Capability.Cooling == state {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// QueryByAttribute matches drones on a single attribute with the "="
// operator.
func QueryByAttribute(drones []model.Drone, attribute, value string) []string {
	return Query(drones, []model.QueryAttribute{{Attribute: attribute, Operator: "=", Value: value}})
}

// Query returns ids of drones satisfying every given attribute predicate.
// Unknown attributes, unsupported operators and unparsable values never
// match.
func Query(drones []model.Drone, attrs []model.QueryAttribute) []string {
	ids := []string{}
	for _, d := range drones {
		ok := true
		for _, a := range attrs {
			if !matchesAttribute(d, a) {
				ok = false
				break
			}
		}
		if ok {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func matchesAttribute(d model.Drone, a model.QueryAttribute) bool {
	switch strings.ToLower(a.Attribute) {
	case "id":
		return compareString(d.ID, a.Operator, a.Value)
	case "name":
		return compareString(d.Name, a.Operator, a.Value)
	case "cooling":
		if d.Capability == nil || d.Capability.Cooling == nil {
			return false
		}
		return compareBool(*d.Capability.Cooling, a.Operator, a.Value)
	case "heating":
		if d.Capability == nil || d.Capability.Heating == nil {
			return false
		}
		return compareBool(*d.Capability.Heating, a.Operator, a.Value)
	case "capacity":
		return compareNumericPtr(capabilityField(d, func(c *model.Capability) *float64 { return c.Capacity }), a)
	case "maxmoves":
		if d.Capability == nil || d.Capability.MaxMoves == nil {
			return false
		}
		v := float64(*d.Capability.MaxMoves)
		return compareNumeric(v, a.Operator, a.Value)
	case "costpermove":
		return compareNumericPtr(capabilityField(d, func(c *model.Capability) *float64 { return c.CostPerMove }), a)
	case "costinitial":
		return compareNumericPtr(capabilityField(d, func(c *model.Capability) *float64 { return c.CostInitial }), a)
	case "costfinal":
		return compareNumericPtr(capabilityField(d, func(c *model.Capability) *float64 { return c.CostFinal }), a)
	default:
		return false
	}
}

func capabilityField(d model.Drone, pick func(*model.Capability) *float64) *float64 {
	if d.Capability == nil {
		return nil
	}
	return pick(d.Capability)
}

func compareNumericPtr(v *float64, a model.QueryAttribute) bool {
	if v == nil {
		return false
	}
	return compareNumeric(*v, a.Operator, a.Value)
}

func compareNumeric(have float64, op, raw string) bool {
	want, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	switch op {
	case "=":
		return abs(have-want) < numericTolerance
	case "!=":
		return abs(have-want) >= numericTolerance
	case "<":
		return have < want
	case ">":
		return have > want
	case "<=":
		return have <= want
	case ">=":
		return have >= want
	default:
		return false
	}
}

func compareString(have, op, want string) bool {
	switch op {
	case "=":
		return strings.EqualFold(have, want)
	case "!=":
		return !strings.EqualFold(have, want)
	default:
		return false
	}
}

// compareBool matches the literal words "true" and "false" only; the
// short forms strconv.ParseBool takes, like "1" or "t", do not count.
func compareBool(have bool, op, raw string) bool {
	var want bool
	switch strings.ToLower(raw) {
	case "true":
		want = true
	case "false":
		want = false
	default:
		return false
	}
	switch op {
	case "=":
		return have == want
	case "!=":
		return have != want
	default:
		return false
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
