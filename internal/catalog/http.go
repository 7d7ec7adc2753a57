package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"droneplan/internal/model"
)

// HTTPSource reads the catalog from an upstream directory service that
// serves JSON collections.
type HTTPSource struct {
	base   string
	client *http.Client
}

func NewHTTP(base string) *HTTPSource {
	return &HTTPSource{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) Drones(ctx context.Context) ([]model.Drone, error) {
	var out []model.Drone
	if err := s.getJSON(ctx, "/drones", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Drone{}
	}
	return out, nil
}

func (s *HTTPSource) Rosters(ctx context.Context) ([]model.ServicePointRoster, error) {
	var out []model.ServicePointRoster
	if err := s.getJSON(ctx, "/drones-for-service-points", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.ServicePointRoster{}
	}
	return out, nil
}

func (s *HTTPSource) ServicePoints(ctx context.Context) ([]model.ServicePoint, error) {
	var out []model.ServicePoint
	if err := s.getJSON(ctx, "/service-points", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.ServicePoint{}
	}
	return out, nil
}

func (s *HTTPSource) RestrictedAreas(ctx context.Context) ([]model.RestrictedArea, error) {
	var out []model.RestrictedArea
	if err := s.getJSON(ctx, "/restricted-areas", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.RestrictedArea{}
	}
	return out, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
