package store

import (
	"fmt"
)

// UniqueArtists returns every charting artist in the year range, sorted.
func (s *Store) UniqueArtists(startYear, endYear int) ([]string, error) {
	query := "SELECT DISTINCT artist FROM Chart WHERE" + yearFilter + "ORDER BY artist"
	rows, err := s.db.Query(query, yearArgs(startYear, endYear)...)
	if err != nil {
		return nil, fmt.Errorf("querying artists: %w", err)
	}
	defer rows.Close()

	var artists []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// WeekCount is the number of chart weeks stored.
func (s *Store) WeekCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT date) FROM Chart").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting weeks: %w", err)
	}
	return n, nil
}
