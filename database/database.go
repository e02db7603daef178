package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the render ledger: it remembers the checksum of every unit written,
// so a later render can tell whether anything actually changed.
type DB struct {
	conn *sql.DB
}

// RenderedUnit is one ledger entry
type RenderedUnit struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

// NewDB opens the ledger database and initializes tables
func NewDB(dbPath string) (*DB, error) {
	// WAL mode and busy_timeout prevent database locking
	connStr := dbPath + "?_journal_mode=WAL&_foreign_keys=ON&_txlock=immediate&_busy_timeout=30000"
	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit to 1 connection to prevent database locking
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.initTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return db, nil
}

func (db *DB) initTables() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS rendered_units (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			checksum TEXT NOT NULL,
			rendered_at DATETIME NOT NULL,
			UNIQUE(name, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rendered_units_name ON rendered_units(name)`,
	}

	for _, schema := range schemas {
		if _, err := db.conn.Exec(schema); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	return nil
}

// RecordUnit upserts a unit's checksum and reports whether the contents
// changed since the previous render. A first-time record is not a change.
func (db *DB) RecordUnit(name, kind, contents string) (bool, error) {
	sum := sha256.Sum256([]byte(contents))
	checksum := hex.EncodeToString(sum[:])

	var previous string
	err := db.conn.QueryRow(`
		SELECT checksum FROM rendered_units WHERE name = ? AND kind = ?
	`, name, kind).Scan(&previous)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to query unit %s: %w", name, err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO rendered_units (name, kind, checksum, rendered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name, kind) DO UPDATE SET
			checksum = excluded.checksum,
			rendered_at = excluded.rendered_at
	`, name, kind, checksum, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to record unit %s: %w", name, err)
	}

	return previous != "" && previous != checksum, nil
}

// ListUnits returns all ledger entries ordered by name
func (db *DB) ListUnits() ([]RenderedUnit, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, kind, checksum, rendered_at
		FROM rendered_units
		ORDER BY name, kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []RenderedUnit
	for rows.Next() {
		var unit RenderedUnit
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.Kind, &unit.Checksum, &unit.RenderedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}

	return units, rows.Err()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
