package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteSink stores metrics from many runs in one database, keyed by run ID.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
	runID  string
}

// OpenSQLite opens (or creates) the database at path and registers a run.
func OpenSQLite(path, runID string, seed int64, startedAt time.Time) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One connection keeps writes ordered and avoids SQLITE_BUSY between pooled conns
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schemas: %w", err)
	}

	if _, err := db.Exec(
		`INSERT INTO runs (run_id, seed, started_at) VALUES (?, ?, ?)`,
		runID, seed, startedAt.UTC().Format(time.RFC3339),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering run %s: %w", runID, err)
	}

	insert, err := db.Prepare(
		`INSERT INTO metrics (run_id, step, population, mean_energy, food) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing metrics insert: %w", err)
	}

	return &SQLiteSink{db: db, insert: insert, runID: runID}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS metrics (
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			population INTEGER NOT NULL,
			mean_energy REAL NOT NULL,
			food INTEGER NOT NULL,
			PRIMARY KEY (run_id, step),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
	}
	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetrics inserts a record for this run.
func (s *SQLiteSink) WriteMetrics(rec MetricsRecord) error {
	if _, err := s.insert.Exec(s.runID, rec.Step, rec.Population, rec.MeanEnergy, rec.Food); err != nil {
		return fmt.Errorf("inserting metrics at step %d: %w", rec.Step, err)
	}
	return nil
}

// Records reads back every record of runID in step order.
func (s *SQLiteSink) Records(runID string) ([]MetricsRecord, error) {
	rows, err := s.db.Query(
		`SELECT step, population, mean_energy, food FROM metrics WHERE run_id = ? ORDER BY step`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying metrics: %w", err)
	}
	defer rows.Close()

	var out []MetricsRecord
	for rows.Next() {
		var rec MetricsRecord
		if err := rows.Scan(&rec.Step, &rec.Population, &rec.MeanEnergy, &rec.Food); err != nil {
			return nil, fmt.Errorf("scanning metrics: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *SQLiteSink) Close() error {
	if s == nil {
		return nil
	}
	s.insert.Close()
	return s.db.Close()
}
