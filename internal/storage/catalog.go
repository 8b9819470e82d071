package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    preset TEXT,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    num_particles INTEGER NOT NULL,
    gravity_model TEXT NOT NULL,
    gravity_policy TEXT NOT NULL,
    dt REAL NOT NULL,
    simulation_time REAL NOT NULL,
    steps INTEGER NOT NULL,
    metrics TEXT -- JSON object
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Catalog indexes saved runs in a SQLite database so listing does not have
// to walk every run directory.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens or creates the catalog database at path.
func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("storage: open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Put inserts or replaces meta.
func (c *Catalog) Put(ctx context.Context, meta *RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return fmt.Errorf("storage: encode metrics: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, preset, created_at, seed, num_particles, gravity_model, gravity_policy,
			 dt, simulation_time, steps, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Preset, meta.Timestamp.UTC().Format(timeLayout),
		int64(meta.Seed), meta.NumParticles, meta.GravityModel, meta.GravityPolicy,
		meta.Dt, meta.SimulationTime, meta.Steps, string(metrics),
	)
	if err != nil {
		return fmt.Errorf("storage: insert run %s: %w", meta.ID, err)
	}
	return nil
}

// List returns every catalogued run, newest first.
func (c *Catalog) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, preset, created_at, seed, num_particles, gravity_model, gravity_policy,
		       dt, simulation_time, steps, metrics
		FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("storage: query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta          RunMetadata
			preset        sql.NullString
			created       string
			seed          int64
			metricsColumn sql.NullString
		)
		if err := rows.Scan(&meta.ID, &preset, &created, &seed, &meta.NumParticles,
			&meta.GravityModel, &meta.GravityPolicy, &meta.Dt, &meta.SimulationTime,
			&meta.Steps, &metricsColumn); err != nil {
			return nil, fmt.Errorf("storage: scan run: %w", err)
		}
		meta.Preset = preset.String
		meta.Seed = uint64(seed)
		if meta.Timestamp, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("storage: run %s timestamp: %w", meta.ID, err)
		}
		if metricsColumn.Valid && metricsColumn.String != "" {
			if err := json.Unmarshal([]byte(metricsColumn.String), &meta.Metrics); err != nil {
				return nil, fmt.Errorf("storage: run %s metrics: %w", meta.ID, err)
			}
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Count returns the number of catalogued runs.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

// Delete drops id from the catalog. Missing ids are not an error.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}
