// Package chart reads weekly chart files: a JSON object keyed by chart date
// (yyyy-mm-dd) whose values are the ranked entries of that week.
package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

const DateFormat = "2006-01-02"

type Entry struct {
	Artist   string `json:"artist"`
	Song     string `json:"song"`
	Position int    `json:"position"`
}

// Charts maps a chart date to its entries.
type Charts map[string][]Entry

func Load(r io.Reader) (Charts, error) {
	var charts Charts
	if err := json.NewDecoder(r).Decode(&charts); err != nil {
		return nil, fmt.Errorf("decoding charts: %w", err)
	}
	for date := range charts {
		if _, err := time.Parse(DateFormat, date); err != nil {
			return nil, fmt.Errorf("chart date %q: %w", date, err)
		}
	}
	return charts, nil
}

// Dates returns the chart dates in ascending order.
func (c Charts) Dates() []string {
	dates := make([]string, 0, len(c))
	for date := range c {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Artists returns the sorted unique artist names charting between startYear
// and endYear inclusive. A zero bound is open.
func (c Charts) Artists(startYear, endYear int) []string {
	seen := make(map[string]bool)
	for date, entries := range c {
		if !InYears(date, startYear, endYear) {
			continue
		}
		for _, e := range entries {
			if e.Artist != "" {
				seen[e.Artist] = true
			}
		}
	}

	artists := make([]string, 0, len(seen))
	for a := range seen {
		artists = append(artists, a)
	}
	sort.Strings(artists)
	return artists
}

// InYears reports whether a yyyy-mm-dd date falls in the year range.
func InYears(date string, startYear, endYear int) bool {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return false
	}
	if startYear != 0 && t.Year() < startYear {
		return false
	}
	if endYear != 0 && t.Year() > endYear {
		return false
	}
	return true
}
