package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"droneplan/internal/model"
)

// Postgres serves the catalog from a database. Capability, availability
// and vertex data live in jsonb columns since the planner consumes them
// whole.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS drones (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	capability JSONB
);
CREATE TABLE IF NOT EXISTS service_points (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	lng DOUBLE PRECISION,
	lat DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS service_point_rosters (
	service_point_id INTEGER PRIMARY KEY REFERENCES service_points(id),
	drones JSONB NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS restricted_areas (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	vertices JSONB NOT NULL DEFAULT '[]'
);
`

// Migrate creates the catalog tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Drones(ctx context.Context) ([]model.Drone, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, capability FROM drones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Drone{}
	for rows.Next() {
		var d model.Drone
		var capability []byte
		if err := rows.Scan(&d.ID, &d.Name, &capability); err != nil {
			return nil, err
		}
		if len(capability) > 0 {
			if err := json.Unmarshal(capability, &d.Capability); err != nil {
				return nil, fmt.Errorf("drone %s capability: %w", d.ID, err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) Rosters(ctx context.Context) ([]model.ServicePointRoster, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT service_point_id, drones FROM service_point_rosters ORDER BY service_point_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ServicePointRoster{}
	for rows.Next() {
		var r model.ServicePointRoster
		var drones []byte
		if err := rows.Scan(&r.ServicePointID, &drones); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(drones, &r.Drones); err != nil {
			return nil, fmt.Errorf("roster %d: %w", r.ServicePointID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) ServicePoints(ctx context.Context) ([]model.ServicePoint, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, lng, lat FROM service_points ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ServicePoint{}
	for rows.Next() {
		var sp model.ServicePoint
		var lng, lat sql.NullFloat64
		if err := rows.Scan(&sp.ID, &sp.Name, &lng, &lat); err != nil {
			return nil, err
		}
		if lng.Valid && lat.Valid {
			sp.Location = &model.Position{Lng: lng.Float64, Lat: lat.Float64}
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (p *Postgres) RestrictedAreas(ctx context.Context) ([]model.RestrictedArea, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, vertices FROM restricted_areas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RestrictedArea{}
	for rows.Next() {
		var a model.RestrictedArea
		var vertices []byte
		if err := rows.Scan(&a.ID, &a.Name, &vertices); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(vertices, &a.Vertices); err != nil {
			return nil, fmt.Errorf("restricted area %d: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
