package classify

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ademuri/dosatsu-tools/internal/genre"
)

// ErrAuthentication is wrapped by provider errors caused by rejected
// credentials. It is never cached.
var ErrAuthentication = errors.New("provider authentication failed")

// Source identifies which provider resolved an artist.
type Source int

const (
	// Spotify is the primary provider: curated genre names.
	Spotify Source = iota + 1
	// MusicBrainz is the secondary provider: community tags.
	MusicBrainz
)

func (s Source) String() string {
	switch s {
	case Spotify:
		return "spotify"
	case MusicBrainz:
		return "musicbrainz"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Confidence is the trust level that goes with results from this source.
func (s Source) Confidence() Confidence {
	if s == Spotify {
		return High
	}
	return Medium
}

func (s Source) MarshalText() ([]byte, error) {
	switch s {
	case Spotify, MusicBrainz:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("marshaling invalid source %d", int(s))
}

func (s *Source) UnmarshalText(b []byte) error {
	switch string(b) {
	case "spotify":
		*s = Spotify
	case "musicbrainz":
		*s = MusicBrainz
	default:
		return fmt.Errorf("unknown source %q", string(b))
	}
	return nil
}

// Confidence is a qualitative trust level for a classification.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
)

// Record is one artist classification as stored in a cache file.
type Record struct {
	Name        string      `json:"name"`
	MatchedName string      `json:"matched_name,omitempty"`
	Genre       genre.Genre `json:"dosatsu_genre"`
	Source      Source      `json:"source"`

	SpotifyGenres []string `json:"spotify_genres,omitempty"`
	Popularity    int      `json:"popularity,omitempty"`
	Followers     int      `json:"followers,omitempty"`
	SpotifyID     string   `json:"spotify_id,omitempty"`

	Tags []string `json:"mb_tags,omitempty"`
	MBID string   `json:"mbid,omitempty"`

	Confidence Confidence `json:"confidence"`
}

// UnmarshalJSON also accepts MusicBrainz tags under the older "tags" key.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var v struct {
		plain
		LegacyTags []string `json:"tags"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Record(v.plain)
	if len(r.Tags) == 0 {
		r.Tags = v.LegacyTags
	}
	return nil
}

// RawTags returns the provider-native strings the genre was derived from.
func (r Record) RawTags() []string {
	if r.Source == Spotify {
		return r.SpotifyGenres
	}
	return r.Tags
}

// Result is the outcome of a lookup: either a record or a confirmed absence.
type Result struct {
	record *Record
}

// NotFound is the result for an artist no provider knows.
var NotFound = Result{}

func Found(r Record) Result {
	return Result{record: &r}
}

// Record returns a copy of the found record.
func (r Result) Record() (Record, bool) {
	if r.record == nil {
		return Record{}, false
	}
	return *r.record, true
}

func (r Result) Found() bool {
	return r.record != nil
}

// Genre returns the classified genre, or Unknown when not found.
func (r Result) Genre() genre.Genre {
	if r.record == nil {
		return genre.Unknown
	}
	return r.record.Genre
}
