package genre

import "fmt"

// Genre is one of the fixed output categories an artist is classified into.
type Genre string

const (
	HipHop      Genre = "Hip-Hop"
	Pop         Genre = "Pop"
	Country     Genre = "Country"
	RnB         Genre = "R&B"
	Rock        Genre = "Rock"
	Alternative Genre = "Alternative"
	Latin       Genre = "Latin"

	// Unknown means no provider tag matched, not that the artist doesn't exist.
	Unknown Genre = "Unknown"
)

// All lists every canonical genre, Unknown last.
var All = []Genre{HipHop, Pop, Country, RnB, Rock, Alternative, Latin, Unknown}

// Parse returns the canonical genre with the given name.
func Parse(s string) (Genre, error) {
	for _, g := range All {
		if string(g) == s {
			return g, nil
		}
	}
	return Unknown, fmt.Errorf("unknown genre %q", s)
}

func (g Genre) String() string {
	return string(g)
}
