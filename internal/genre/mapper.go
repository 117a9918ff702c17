package genre

import (
	"math"
	"strings"
)

const (
	defaultDecay = 0.05
	defaultFloor = 0.5
)

// Keyword maps a lowercase substring of a provider tag to a genre.
type Keyword struct {
	Term  string
	Genre Genre
}

// Mapper reduces a provider's ranked tag list to a single canonical genre.
type Mapper struct {
	keywords []Keyword
	decay    float64
	floor    float64
}

type Option func(*Mapper)

// WithDecay sets how much weight each later tag position loses.
func WithDecay(decay float64) Option {
	return func(m *Mapper) {
		m.decay = decay
	}
}

// WithFloor sets the minimum weight of a tag regardless of its position.
func WithFloor(floor float64) Option {
	return func(m *Mapper) {
		m.floor = floor
	}
}

func NewMapper(keywords []Keyword, opts ...Option) *Mapper {
	m := &Mapper{
		keywords: make([]Keyword, len(keywords)),
		decay:    defaultDecay,
		floor:    defaultFloor,
	}
	for i, k := range keywords {
		m.keywords[i] = Keyword{Term: strings.ToLower(k.Term), Genre: k.Genre}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map scores every tag against every keyword and returns the genre with the
// highest total. Earlier tags weigh more. Ties go to the genre that scored
// first.
func (m *Mapper) Map(tags []string) Genre {
	if len(tags) == 0 {
		return Unknown
	}

	scores := make(map[Genre]float64)
	var order []Genre
	for i, tag := range tags {
		tag = strings.ToLower(tag)
		weight := math.Max(1-float64(i)*m.decay, m.floor)
		for _, k := range m.keywords {
			if !strings.Contains(tag, k.Term) {
				continue
			}
			if _, seen := scores[k.Genre]; !seen {
				order = append(order, k.Genre)
			}
			scores[k.Genre] += weight
		}
	}

	if len(order) == 0 {
		return guess(tags[0])
	}

	best := order[0]
	for _, g := range order[1:] {
		if scores[g] > scores[best] {
			best = g
		}
	}
	return best
}

// guess checks the most relevant tag against the top-level families.
func guess(tag string) Genre {
	tag = strings.ToLower(tag)
	switch {
	case strings.Contains(tag, "pop"):
		return Pop
	case strings.Contains(tag, "hip"), strings.Contains(tag, "rap"):
		return HipHop
	case strings.Contains(tag, "country"):
		return Country
	case strings.Contains(tag, "r&b"), strings.Contains(tag, "soul"):
		return RnB
	case strings.Contains(tag, "rock"), strings.Contains(tag, "alternative"):
		return Rock
	case strings.Contains(tag, "latin"), strings.Contains(tag, "reggaeton"):
		return Latin
	}
	return Unknown
}
