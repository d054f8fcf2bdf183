package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database handle. It is created once in main and injected into
// every repository; there is no package-level connection.
type DB struct {
	*sqlx.DB
	driver string
}

// Connect opens the database selected by the environment. DB_TYPE picks the
// backend ("sqlite" by default, "postgres" with DATABASE_URL); sqlite files
// live under DATA_DIR.
func Connect() (*DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	switch dbType {
	case "sqlite":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return open("sqlite3", filepath.Join(dataDir, "versebot.db"))
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
		return open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// OpenSQLite opens a standalone sqlite database at the given path. Used by
// tests with ":memory:".
func OpenSQLite(path string) (*DB, error) {
	return open("sqlite3", path)
}

func open(driver, dsn string) (*DB, error) {
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	db := &DB{DB: conn, driver: driver}
	if err := db.initializeSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

// initializeSchema creates the tables if they don't exist
func (db *DB) initializeSchema() error {
	statements := []struct {
		name string
		sql  string
	}{
		{"chapters", `
			CREATE TABLE IF NOT EXISTS chapters (
				number INTEGER PRIMARY KEY,
				name TEXT NOT NULL DEFAULT '',
				verse_count INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"verse_marks", `
			CREATE TABLE IF NOT EXISTS verse_marks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				chapter INTEGER NOT NULL,
				verse INTEGER NOT NULL,
				kind TEXT NOT NULL,
				UNIQUE(chapter, verse, kind)
			)
		`},
		{"verse_groups", `
			CREATE TABLE IF NOT EXISTS verse_groups (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				chapter INTEGER NOT NULL,
				strategy TEXT NOT NULL,
				group_size INTEGER NOT NULL DEFAULT 0,
				start_verse INTEGER NOT NULL,
				end_verse INTEGER NOT NULL,
				state TEXT NOT NULL DEFAULT 'new',
				test_as_group BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"verse_progress", `
			CREATE TABLE IF NOT EXISTS verse_progress (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				chapter INTEGER NOT NULL,
				verse INTEGER NOT NULL,
				group_id INTEGER NOT NULL,
				group_position INTEGER NOT NULL,
				stability REAL NOT NULL DEFAULT 0,
				difficulty REAL NOT NULL DEFAULT 0,
				ease_factor REAL NOT NULL DEFAULT 2.5,
				state TEXT NOT NULL DEFAULT 'new',
				lapses INTEGER NOT NULL DEFAULT 0,
				interval INTEGER NOT NULL DEFAULT 0,
				last_reviewed TIMESTAMP,
				next_review TIMESTAMP,
				test_with_group BOOLEAN NOT NULL DEFAULT true,
				last_event_id TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(chapter, verse)
			)
		`},
		{"review_logs", `
			CREATE TABLE IF NOT EXISTS review_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				progress_id INTEGER NOT NULL,
				event_id TEXT NOT NULL,
				rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 4),
				reviewed_at TIMESTAMP NOT NULL,
				elapsed_ms INTEGER NOT NULL DEFAULT 0,
				prev_interval INTEGER NOT NULL DEFAULT 0,
				scheduled_interval INTEGER NOT NULL DEFAULT 0,
				state TEXT NOT NULL,
				FOREIGN KEY (progress_id) REFERENCES verse_progress(id)
			)
		`},
		{"session_stats", `
			CREATE TABLE IF NOT EXISTS session_stats (
				id TEXT PRIMARY KEY,
				started_at TIMESTAMP NOT NULL,
				ended_at TIMESTAMP,
				total_reviewed INTEGER NOT NULL DEFAULT 0,
				new_learned INTEGER NOT NULL DEFAULT 0,
				again_count INTEGER NOT NULL DEFAULT 0,
				hard_count INTEGER NOT NULL DEFAULT 0,
				good_count INTEGER NOT NULL DEFAULT 0,
				easy_count INTEGER NOT NULL DEFAULT 0,
				review_time_ms INTEGER NOT NULL DEFAULT 0,
				retention REAL NOT NULL DEFAULT 0,
				completed BOOLEAN NOT NULL DEFAULT false
			)
		`},
		{"fsrs_params", `
			CREATE TABLE IF NOT EXISTS fsrs_params (
				profile TEXT PRIMARY KEY,
				w0 REAL NOT NULL, w1 REAL NOT NULL, w2 REAL NOT NULL, w3 REAL NOT NULL,
				w4 REAL NOT NULL, w5 REAL NOT NULL, w6 REAL NOT NULL, w7 REAL NOT NULL,
				w8 REAL NOT NULL, w9 REAL NOT NULL, w10 REAL NOT NULL, w11 REAL NOT NULL,
				request_retention REAL NOT NULL
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}
	return nil
}
