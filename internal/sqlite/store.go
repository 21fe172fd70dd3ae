package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"quiet-path-router/internal/database"

	_ "modernc.org/sqlite"
)

const (
	DefaultDBFileName = "quietpath.db"
	schemaVersion     = 1
)

// Store is a SQLite-based data store implementing database.DataStore
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex

	reportRepo      database.ReportRepository
	roadSegmentRepo database.RoadSegmentRepository
}

// New creates a new SQLite store at the specified path
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	log.Printf("Opening SQLite database at: %s", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys and WAL mode for better concurrent read performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.reportRepo = &reportRepository{store: store}
	store.roadSegmentRepo = &roadSegmentRepository{store: store}

	return store, nil
}

// GetDBPath returns the current database file path
func (s *Store) GetDBPath() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist, create everything
		return s.createSchema()
	}

	if version < schemaVersion {
		return s.runMigrations(version)
	}

	return nil
}

func (s *Store) createSchema() error {
	schema := `
	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	INSERT INTO schema_version (version) VALUES (1);

	-- User-submitted comfort/hazard reports. created_at is Unix epoch
	-- seconds so retention comparisons stay purely numeric.
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		category TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_position ON reports(lat, lng);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);

	-- Static road attributes with a precomputed bounding box per segment
	CREATE TABLE IF NOT EXISTS road_segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		road_class TEXT NOT NULL DEFAULT 'unknown',
		lit TEXT NOT NULL DEFAULT 'unknown',
		school_zone INTEGER NOT NULL DEFAULT 0,
		nightlife_zone INTEGER NOT NULL DEFAULT 0,
		market_zone INTEGER NOT NULL DEFAULT 0,
		geometry TEXT NOT NULL,
		distance_meters REAL NOT NULL DEFAULT 0,
		min_lat REAL NOT NULL,
		min_lng REAL NOT NULL,
		max_lat REAL NOT NULL,
		max_lng REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_segments_bounds ON road_segments(min_lat, max_lat, min_lng, max_lng);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *Store) runMigrations(fromVersion int) error {
	// No migrations yet; bump schema_version when the first one lands
	_, err := s.db.Exec("UPDATE schema_version SET version = ?", schemaVersion)
	if err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// HealthCheck verifies the database is reachable
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reports returns the report repository
func (s *Store) Reports() database.ReportRepository {
	return s.reportRepo
}

// RoadSegments returns the road segment repository
func (s *Store) RoadSegments() database.RoadSegmentRepository {
	return s.roadSegmentRepo
}
