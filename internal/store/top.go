package store

import "fmt"

// unknownGenre is stored for artists a provider found but whose tags matched
// no genre; they count as unmapped.
const unknownGenre = "Unknown"

type ChartCoverage struct {
	Entries    int
	Classified int
}

func (c ChartCoverage) Percent() float64 {
	if c.Entries == 0 {
		return 0
	}
	return float64(c.Classified) / float64(c.Entries) * 100
}

// ChartCoverage counts chart entries at or above maxPosition (zero for all)
// and how many of them have a classified artist.
func (s *Store) ChartCoverage(maxPosition, startYear, endYear int) (ChartCoverage, error) {
	query := `
	SELECT COUNT(*), COUNT(CASE WHEN ArtistGenre.genre IS NOT NULL AND ArtistGenre.genre <> ? THEN 1 END)
	FROM Chart
	LEFT JOIN ArtistGenre ON ArtistGenre.artist = Chart.artist
	WHERE (? = 0 OR Chart.position <= ?)
	AND` + yearFilter
	args := append([]interface{}{unknownGenre, maxPosition, maxPosition}, yearArgs(startYear, endYear)...)

	var c ChartCoverage
	if err := s.db.QueryRow(query, args...).Scan(&c.Entries, &c.Classified); err != nil {
		return ChartCoverage{}, fmt.Errorf("querying chart coverage: %w", err)
	}
	return c, nil
}

type ArtistAppearances struct {
	Artist      string
	Appearances int64
}

// UnmappedArtists returns the artists without a classified genre that chart
// most often, most frequent first.
func (s *Store) UnmappedArtists(maxPosition, startYear, endYear, limit int) ([]ArtistAppearances, error) {
	query := `
	SELECT Chart.artist, COUNT(*)
	FROM Chart
	LEFT JOIN ArtistGenre ON ArtistGenre.artist = Chart.artist
	WHERE (ArtistGenre.genre IS NULL OR ArtistGenre.genre = ?)
	AND (? = 0 OR Chart.position <= ?)
	AND` + yearFilter + `
	GROUP BY Chart.artist
	ORDER BY COUNT(*) DESC, Chart.artist
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}
	args := append([]interface{}{unknownGenre, maxPosition, maxPosition}, yearArgs(startYear, endYear)...)
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying unmapped artists: %w", err)
	}
	defer rows.Close()

	var results []ArtistAppearances
	for rows.Next() {
		var a ArtistAppearances
		if err := rows.Scan(&a.Artist, &a.Appearances); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}
