package store

import (
	"fmt"
	"time"
)

type ChartEntry struct {
	Artist   string
	Song     string
	Position int
}

// AddChart stores one chart week. Re-adding a week replaces its entries.
func (s *Store) AddChart(date string, entries []ChartEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM Chart WHERE date = ?", date); err != nil {
		return fmt.Errorf("clearing chart %s: %w", date, err)
	}
	for _, e := range entries {
		if e.Artist == "" {
			continue
		}
		_, err := tx.Exec("INSERT OR REPLACE INTO Chart (date, position, artist, song) VALUES (?, ?, ?, ?)",
			date, e.Position, e.Artist, e.Song)
		if err != nil {
			return fmt.Errorf("inserting %s #%d: %w", date, e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ArtistGenre is the exported classification of one artist.
type ArtistGenre struct {
	Artist     string
	Genre      string
	Source     string
	Confidence string
	// Tags are the provider strings the genre came from, comma separated.
	Tags string
}

// SaveClassifications upserts classifications in one transaction.
func (s *Store) SaveClassifications(rows []ArtistGenre) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, r := range rows {
		_, err := tx.Exec(`INSERT INTO ArtistGenre (artist, genre, source, confidence, tags, updated) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(artist) DO UPDATE SET genre = excluded.genre, source = excluded.source,
			confidence = excluded.confidence, tags = excluded.tags, updated = excluded.updated`,
			r.Artist, r.Genre, r.Source, r.Confidence, r.Tags, now)
		if err != nil {
			return fmt.Errorf("saving genre for %q: %w", r.Artist, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
