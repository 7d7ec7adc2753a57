package progress

import (
	"fmt"

	"droneplan/internal/model"
)

// Event kinds pushed to listeners while a plan computation runs.
const (
	TypeConnectionEstablished = "connection_established"
	TypeNodeExplored          = "node_explored"
	TypePathFound             = "path_found"
	TypeBatchStarted          = "batch_started"
	TypeBatchCompleted        = "batch_completed"
	TypeDeliveryStarted       = "delivery_started"
	TypeError                 = "error"
)

// Event is one progress update. Only the fields relevant to the event type
// are set; the rest are omitted from the wire form.
type Event struct {
	Type          string          `json:"type"`
	Position      *model.Position `json:"position,omitempty"`
	DeliveryID    *int            `json:"deliveryId,omitempty"`
	TotalNodes    *int            `json:"totalNodes,omitempty"`
	PathLength    *int            `json:"pathLength,omitempty"`
	BatchNumber   *int            `json:"batchNumber,omitempty"`
	DroneID       string          `json:"droneId,omitempty"`
	DeliveryCount *int            `json:"deliveryCount,omitempty"`
	Cost          *float64        `json:"cost,omitempty"`
	Moves         *int            `json:"moves,omitempty"`
	From          *model.Position `json:"fromPosition,omitempty"`
	To            *model.Position `json:"toPosition,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// Sink receives progress events. Implementations must never block the
// caller; delivery is best effort.
type Sink interface {
	// Active reports whether anyone is listening. Callers may skip event
	// construction entirely when it returns false.
	Active() bool
	Broadcast(Event)
}

// NopSink discards everything. Used when no telemetry is wired up.
type NopSink struct{}

func (NopSink) Active() bool    { return false }
func (NopSink) Broadcast(Event) {}

func ConnectionEstablished() Event {
	return Event{
		Type:    TypeConnectionEstablished,
		Message: "WebSocket connection established",
	}
}

func NodeExplored(pos model.Position, totalNodes int) Event {
	return Event{
		Type:       TypeNodeExplored,
		Position:   &pos,
		TotalNodes: intPtr(totalNodes),
		Message:    fmt.Sprintf("Exploring node at (%v, %v)", pos.Lng, pos.Lat),
	}
}

func PathFound(deliveryID *int, totalNodes, pathLength int) Event {
	return Event{
		Type:       TypePathFound,
		DeliveryID: deliveryID,
		TotalNodes: intPtr(totalNodes),
		PathLength: intPtr(pathLength),
		Message:    fmt.Sprintf("Path found with %d positions after %d nodes", pathLength, totalNodes),
	}
}

func BatchStarted(batchNumber int, droneID string, deliveryCount int) Event {
	return Event{
		Type:          TypeBatchStarted,
		BatchNumber:   intPtr(batchNumber),
		DroneID:       droneID,
		DeliveryCount: intPtr(deliveryCount),
		Message:       fmt.Sprintf("Starting batch %d with drone %s (%d deliveries)", batchNumber, droneID, deliveryCount),
	}
}

func BatchCompleted(batchNumber int, droneID string, cost float64, moves int) Event {
	return Event{
		Type:        TypeBatchCompleted,
		BatchNumber: intPtr(batchNumber),
		DroneID:     droneID,
		Cost:        &cost,
		Moves:       intPtr(moves),
		Message:     fmt.Sprintf("Completed batch %d - Cost: %.2f, Moves: %d", batchNumber, cost, moves),
	}
}

func DeliveryStarted(deliveryID int, from, to model.Position) Event {
	return Event{
		Type:       TypeDeliveryStarted,
		DeliveryID: intPtr(deliveryID),
		From:       &from,
		To:         &to,
		Message:    fmt.Sprintf("Calculating path for delivery %d", deliveryID),
	}
}

func ErrorEvent(message string) Event {
	return Event{
		Type:    TypeError,
		Message: "Error: " + message,
	}
}

func intPtr(v int) *int { return &v }
