package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"droneplan/internal/catalog"
	"droneplan/internal/fleet"
	"droneplan/internal/geo"
	"droneplan/internal/metrics"
	"droneplan/internal/model"
	"droneplan/internal/plan"
)

type pairRequest struct {
	Position1 *model.Position `json:"position1"`
	Position2 *model.Position `json:"position2"`
}

type nextPositionRequest struct {
	Start *model.Position `json:"start"`
	Angle *float64        `json:"angle"`
}

type regionRequest struct {
	Position *model.Position       `json:"position"`
	Region   *model.RestrictedArea `json:"region"`
}

type flightPathRequest struct {
	Start *model.Position `json:"start"`
	End   *model.Position `json:"end"`
}

func (s *Server) handleDistanceTo(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validPosition(req.Position1); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid position1", err.Error())
		return
	}
	if err := validPosition(req.Position2); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid position2", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, geo.Distance(*req.Position1, *req.Position2))
}

func (s *Server) handleIsCloseTo(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validPosition(req.Position1); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid position1", err.Error())
		return
	}
	if err := validPosition(req.Position2); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid position2", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, geo.IsClose(*req.Position1, *req.Position2))
}

func (s *Server) handleNextPosition(w http.ResponseWriter, r *http.Request) {
	var req nextPositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validPosition(req.Start); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid start", err.Error())
		return
	}
	if req.Angle == nil {
		writeProblem(w, http.StatusBadRequest, "invalid angle", "angle is required")
		return
	}
	if err := validAngle(*req.Angle); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid angle", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, geo.NextPosition(*req.Start, *req.Angle))
}

func (s *Server) handleIsInRegion(w http.ResponseWriter, r *http.Request) {
	var req regionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validPosition(req.Position); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid position", err.Error())
		return
	}
	if err := validRegion(req.Region); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid region", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, geo.IsInRegion(*req.Position, req.Region.Vertices))
}

// snapshot loads the catalog or reports upstream failure as 502.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (catalog.Snapshot, bool) {
	snap, err := catalog.Load(r.Context(), s.catalog)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "catalog unavailable", err.Error())
		return catalog.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) handleDrones(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Drones)
}

func (s *Server) handleServicePoints(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.ServicePoints)
}

func (s *Server) handleRestrictedAreas(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.RestrictedAreas)
}

func (s *Server) handleDronesWithCooling(w http.ResponseWriter, r *http.Request) {
	state, err := strconv.ParseBool(r.PathValue("state"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid state", "state must be true or false")
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fleet.WithCooling(snap.Drones, state))
}

func (s *Server) handleDroneDetails(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	d := fleet.DroneByID(snap.Drones, r.PathValue("id"))
	if d == nil {
		writeProblem(w, http.StatusNotFound, "drone not found", "no drone with id "+r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleQueryAsPath(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fleet.QueryByAttribute(snap.Drones, r.PathValue("attribute"), r.PathValue("value")))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var attrs []model.QueryAttribute
	if err := decodeJSON(r, &attrs); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fleet.Query(snap.Drones, attrs))
}

func (s *Server) handleQueryAvailableDrones(w http.ResponseWriter, r *http.Request) {
	orders, ok := s.decodeOrders(w, r)
	if !ok {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fleet.MatchAll(snap.Drones, snap.Rosters, snap.ServicePoints, orders))
}

func (s *Server) handleQueryAvailableDronesWithOr(w http.ResponseWriter, r *http.Request) {
	orders, ok := s.decodeOrders(w, r)
	if !ok {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fleet.MatchAny(snap.Drones, snap.Rosters, orders))
}

func (s *Server) decodeOrders(w http.ResponseWriter, r *http.Request) ([]model.DispatchOrder, bool) {
	var orders []model.DispatchOrder
	if err := decodeJSON(r, &orders); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}
	if err := validOrders(orders); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid orders", err.Error())
		return nil, false
	}
	return orders, true
}

func (s *Server) computePlan(w http.ResponseWriter, r *http.Request) (model.DeliveryPlan, bool) {
	orders, ok := s.decodeOrders(w, r)
	if !ok {
		return model.DeliveryPlan{}, false
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return model.DeliveryPlan{}, false
	}
	start := time.Now()
	result := s.planner.DeliveryPlan(snap, orders)
	metrics.PlanDuration.Observe(time.Since(start).Seconds())
	outcome := "planned"
	if len(result.DronePaths) == 0 {
		outcome = "empty"
	}
	metrics.PlanRequests.WithLabelValues(outcome).Inc()
	return result, true
}

func (s *Server) handleCalcDeliveryPath(w http.ResponseWriter, r *http.Request) {
	result, ok := s.computePlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCalcDeliveryPathGeoJSON(w http.ResponseWriter, r *http.Request) {
	result, ok := s.computePlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, plan.RenderGeoJSON(result))
}

func (s *Server) handleCalcFlightPath(w http.ResponseWriter, r *http.Request) {
	var req flightPathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validPosition(req.Start); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid start", err.Error())
		return
	}
	if err := validPosition(req.End); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid end", err.Error())
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	path := s.pf.FlightPath(*req.Start, *req.End, snap.RestrictedAreas)
	if path == nil {
		path = []model.Position{}
	}
	writeJSON(w, http.StatusOK, path)
}

func (s *Server) handleWebSocketStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active":    s.hub.Active(),
		"listeners": s.hub.Listeners(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if _, err := s.catalog.Drones(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "not ready", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
