package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS planned_points (
	plan       TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	category   TEXT NOT NULL,
	depth      TEXT NOT NULL DEFAULT 'Shallow',
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (plan, id)
);

CREATE INDEX IF NOT EXISTS idx_planned_points_plan_seq ON planned_points(plan, seq);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SavePoints(ctx context.Context, plan string, points []model.PlannedPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM planned_points WHERE plan = ?`, plan); err != nil {
		return eris.Wrapf(err, "sqlite: clear plan %s", plan)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO planned_points (plan, seq, id, category, depth, lat, lon, note, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC().Format(sqliteTimeFormat)
	for i, p := range points {
		if _, err := stmt.ExecContext(ctx,
			plan, i, p.ID, string(p.Category), string(p.Depth.OrDefault()), p.Lat, p.Lon, p.Note, now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert point %s", p.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

func (s *SQLiteStore) LoadPoints(ctx context.Context, plan string) ([]model.PlannedPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, depth, lat, lon, note FROM planned_points WHERE plan = ? ORDER BY seq`,
		plan,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load plan %s", plan)
	}
	defer rows.Close() //nolint:errcheck

	points := []model.PlannedPoint{}
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: iterate points")
}

func (s *SQLiteStore) ListPlans(ctx context.Context) ([]PlanSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan, COUNT(*), MAX(updated_at) FROM planned_points GROUP BY plan ORDER BY plan`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plans")
	}
	defer rows.Close() //nolint:errcheck

	var out []PlanSummary
	for rows.Next() {
		var (
			ps      PlanSummary
			updated string
		)
		if err := rows.Scan(&ps.Name, &ps.Points, &updated); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan")
		}
		ps.UpdatedAt = parseSQLiteTime(updated)
		out = append(out, ps)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate plans")
}

// sqliteTimeFormat is fixed width so that MAX() over the text column orders
// chronologically.
const sqliteTimeFormat = "2006-01-02 15:04:05.000000000"

// parseSQLiteTime reads updated_at values written by SavePoints or by the
// column default; unparsable values yield the zero time.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{sqliteTimeFormat, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPoint(row scannable) (model.PlannedPoint, error) {
	var (
		p        model.PlannedPoint
		category string
		depth    string
	)
	if err := row.Scan(&p.ID, &category, &depth, &p.Lat, &p.Lon, &p.Note); err != nil {
		return model.PlannedPoint{}, err
	}
	p.Category = model.Category(category)
	p.Depth = model.DepthClass(depth).OrDefault()
	return p, nil
}
