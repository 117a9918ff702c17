package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite database of weekly chart entries and the genre each
// charting artist was classified into.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const create = `
CREATE TABLE IF NOT EXISTS Chart (
  date TEXT NOT NULL,
  position INTEGER NOT NULL,
  artist TEXT NOT NULL,
  song TEXT,
  PRIMARY KEY (date, position)
);

CREATE INDEX IF NOT EXISTS ChartArtist ON Chart (artist);

CREATE TABLE IF NOT EXISTS ArtistGenre (
  artist TEXT PRIMARY KEY,
  genre TEXT NOT NULL,
  source TEXT NOT NULL,
  confidence TEXT,
  tags TEXT,
  updated DATETIME
);
`

func createTables(db *sql.DB) error {
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("executing create: %w", err)
	}
	return nil
}

// yearFilter restricts a chart date column to an inclusive year range. Zero
// bounds are open. It takes four arguments: start, start, end, end.
const yearFilter = `
	(? = 0 OR CAST(substr(Chart.date, 1, 4) AS INTEGER) >= ?)
	AND (? = 0 OR CAST(substr(Chart.date, 1, 4) AS INTEGER) <= ?)
`

func yearArgs(startYear, endYear int) []interface{} {
	return []interface{}{startYear, startYear, endYear, endYear}
}
