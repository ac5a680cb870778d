package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/engr-sharif/sbmm-planning-tool/internal/db"
	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

const pointsTable = "planned_points"

// pointColumns is the COPY column order used by SavePoints.
var pointColumns = []string{"plan", "seq", "id", "category", "depth", "lat", "lon", "note", "geom", "updated_at"}

// PostgresStore implements Store on PostgreSQL with PostGIS. Each point also
// carries a geometry(Point, 4326) column for spatial queries by GIS tools.
type PostgresStore struct {
	pool    db.Pool
	schema  string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
	Schema   string `yaml:"schema" mapstructure:"schema"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	var schema string
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
		schema = poolCfg.Schema
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, schema: schema, closeFn: pool.Close}, nil
}

// table returns the sanitized, optionally schema-qualified table name.
func (s *PostgresStore) table() string {
	if s.schema == "" {
		return pgx.Identifier{pointsTable}.Sanitize()
	}
	return pgx.Identifier{s.schema, pointsTable}.Sanitize()
}

func (s *PostgresStore) migration() string {
	var sql string
	if s.schema != "" {
		sql = fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;\n", pgx.Identifier{s.schema}.Sanitize())
	}
	return sql + fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS %[1]s (
	plan       TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	category   TEXT NOT NULL,
	depth      TEXT NOT NULL DEFAULT 'Shallow',
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	geom       geometry(Point, 4326),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (plan, id)
);

CREATE INDEX IF NOT EXISTS idx_planned_points_plan_seq ON %[1]s (plan, seq);
CREATE INDEX IF NOT EXISTS idx_planned_points_geom ON %[1]s USING GIST (geom);
`, s.table())
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, s.migration())
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SavePoints deletes the plan and COPYs the points back in one transaction.
func (s *PostgresStore) SavePoints(ctx context.Context, plan string, points []model.PlannedPoint) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM `+s.table()+` WHERE plan = $1`, plan); err != nil {
		return eris.Wrapf(err, "postgres: clear plan %s", plan)
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(points))
	for i, p := range points {
		g, encErr := EncodePoint(p.Lat, p.Lon)
		if encErr != nil {
			return encErr
		}
		rows = append(rows, []any{
			plan, int32(i), p.ID, string(p.Category), string(p.Depth.OrDefault()),
			p.Lat, p.Lon, p.Note, g, now,
		})
	}
	if _, err = db.CopyFromSchema(ctx, tx, s.schema, pointsTable, pointColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy plan %s", plan)
	}

	if err = tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit save")
	}
	return nil
}

func (s *PostgresStore) LoadPoints(ctx context.Context, plan string) ([]model.PlannedPoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, category, depth, lat, lon, note FROM `+s.table()+` WHERE plan = $1 ORDER BY seq`,
		plan,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load plan %s", plan)
	}
	defer rows.Close()

	points := []model.PlannedPoint{}
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "postgres: iterate points")
}

func (s *PostgresStore) ListPlans(ctx context.Context) ([]PlanSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT plan, COUNT(*), MAX(updated_at) FROM `+s.table()+` GROUP BY plan ORDER BY plan`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plans")
	}
	defer rows.Close()

	var out []PlanSummary
	for rows.Next() {
		var ps PlanSummary
		if err := rows.Scan(&ps.Name, &ps.Points, &ps.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan")
		}
		out = append(out, ps)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate plans")
}

// EncodePoint returns the EWKB encoding of a WGS84 point with SRID 4326.
func EncodePoint(lat, lon float64) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode point EWKB")
	}
	return data, nil
}
