package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"droneplan/internal/catalog"
	"droneplan/internal/metrics"
	"droneplan/internal/pathfind"
	"droneplan/internal/plan"
	"droneplan/internal/progress"
)

// Server holds the wired application: catalog source, progress fanout
// and the planner built on top of them.
type Server struct {
	catalog catalog.Source
	hub     *progress.Hub
	sink    progress.Sink
	planner *plan.Planner
	pf      *pathfind.Pathfinder
}

func New(src catalog.Source, hub *progress.Hub, sink progress.Sink) *Server {
	if hub == nil {
		hub = progress.NewHub()
	}
	if sink == nil {
		sink = hub
	}
	return &Server{
		catalog: src,
		hub:     hub,
		sink:    sink,
		planner: plan.New(sink),
		pf:      pathfind.New(sink),
	}
}

// NewFromEnv wires the server from the environment:
//
//	CATALOG_URL   upstream directory service (takes precedence)
//	DATABASE_URL  Postgres catalog
//	REDIS_URL     cross-instance progress relay
//
// With none set, an in-memory demo catalog is used.
func NewFromEnv() (*Server, error) {
	var src catalog.Source
	switch {
	case os.Getenv("CATALOG_URL") != "":
		src = catalog.NewHTTP(os.Getenv("CATALOG_URL"))
	case os.Getenv("DATABASE_URL") != "":
		pg, err := catalog.NewPostgres(os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, fmt.Errorf("postgres catalog: %w", err)
		}
		src = pg
	default:
		src = catalog.NewMemoryDemo()
	}

	hub := progress.NewHub()
	var sink progress.Sink = hub
	if url := os.Getenv("REDIS_URL"); url != "" {
		relay, err := progress.NewRedisRelay(hub, url)
		if err != nil {
			return nil, fmt.Errorf("progress relay: %w", err)
		}
		sink = relay
	}
	return New(src, hub, sink), nil
}

// Routes returns the full handler tree.
func (s *Server) Routes() http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/distanceTo", s.handleDistanceTo)
	mux.HandleFunc("POST /api/v1/isCloseTo", s.handleIsCloseTo)
	mux.HandleFunc("POST /api/v1/nextPosition", s.handleNextPosition)
	mux.HandleFunc("POST /api/v1/isInRegion", s.handleIsInRegion)

	mux.HandleFunc("GET /api/v1/drones", s.handleDrones)
	mux.HandleFunc("GET /api/v1/dronesWithCooling/{state}", s.handleDronesWithCooling)
	mux.HandleFunc("GET /api/v1/droneDetails/{id}", s.handleDroneDetails)
	mux.HandleFunc("GET /api/v1/queryAsPath/{attribute}/{value}", s.handleQueryAsPath)
	mux.HandleFunc("POST /api/v1/query", s.handleQuery)
	mux.HandleFunc("POST /api/v1/queryAvailableDrones", s.handleQueryAvailableDrones)
	mux.HandleFunc("POST /api/v1/queryAvailableDronesWithOr", s.handleQueryAvailableDronesWithOr)

	mux.HandleFunc("POST /api/v1/calcDeliveryPath", s.handleCalcDeliveryPath)
	mux.HandleFunc("POST /api/v1/calcDeliveryPathAsGeoJson", s.handleCalcDeliveryPathGeoJSON)
	mux.HandleFunc("POST /api/v1/calcFlightPath", s.handleCalcFlightPath)

	mux.HandleFunc("GET /api/v1/service-points", s.handleServicePoints)
	mux.HandleFunc("GET /api/v1/restricted-areas", s.handleRestrictedAreas)
	mux.HandleFunc("GET /api/v1/monitor/websocket-status", s.handleWebSocketStatus)

	mux.HandleFunc("GET /ws/pathfinding-progress", s.hub.ServeWS)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /openapi.yaml", s.handleOpenAPIYAML)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPIJSON)
	mux.HandleFunc("GET /docs", s.handleDocs)

	return withMetrics(mux)
}
