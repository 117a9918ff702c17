package genre

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Family is a genre together with the tag fragments that vote for it.
type Family struct {
	Genre    string   `yaml:"genre"`
	Keywords []string `yaml:"keywords"`
}

// SpotifyFamilies covers Spotify's curated micro-genre names.
var SpotifyFamilies = []Family{
	{string(HipHop), []string{
		"hip hop", "rap", "trap", "southern hip hop", "gangster rap",
		"conscious hip hop", "east coast hip hop", "west coast rap", "drill",
		"uk hip hop", "canadian hip hop", "melodic rap", "plugg",
		"atlanta hip hop", "chicago rap", "detroit hip hop", "memphis hip hop",
	}},
	{string(Pop), []string{
		"pop", "dance pop", "electropop", "synth pop", "pop rap", "viral pop",
		"art pop", "indie pop", "bedroom pop", "uk pop", "boy band",
		"candy pop", "europop", "k-pop",
	}},
	{string(Country), []string{
		"country", "contemporary country", "country road", "country pop",
		"country rap", "modern country rock", "country rock",
		"alternative country", "outlaw country", "bro-country",
		"nashville sound",
	}},
	{string(RnB), []string{
		"r&b", "r n b", "urban contemporary", "contemporary r&b", "neo soul",
		"alternative r&b", "new jack swing", "quiet storm", "soul",
	}},
	{string(Rock), []string{
		"rock", "hard rock", "classic rock", "soft rock", "garage rock",
		"punk", "post-punk", "grunge", "emo", "screamo", "metalcore", "metal",
	}},
	{string(Alternative), []string{
		"alternative", "indie", "indie rock", "alternative rock",
		"modern rock", "stomp and holler", "folk", "indie folk",
		"singer-songwriter",
	}},
	{string(Latin), []string{
		"reggaeton", "latin", "latin pop", "urbano latino", "latin hip hop",
		"latin trap", "bachata", "salsa", "regional mexican", "banda",
		"corrido", "mariachi",
	}},
}

// MusicBrainzFamilies covers the community tag vocabulary on MusicBrainz.
var MusicBrainzFamilies = []Family{
	{string(HipHop), []string{
		"hip hop", "hip-hop", "rap", "trap", "gangsta rap",
		"underground hip hop", "conscious hip hop", "east coast hip hop",
		"west coast hip hop", "southern hip hop", "hardcore hip hop",
	}},
	{string(RnB), []string{
		"r&b", "rnb", "rhythm and blues", "soul", "neo soul",
		"contemporary r&b", "quiet storm", "motown", "funk", "disco",
		"doo wop", "northern soul",
	}},
	{string(Rock), []string{
		"rock", "hard rock", "classic rock", "rock and roll", "blues rock",
		"psychedelic rock", "progressive rock", "glam rock", "soft rock",
		"arena rock", "garage rock", "folk rock", "southern rock",
	}},
	{string(Alternative), []string{
		"alternative rock", "alternative", "indie", "indie rock", "grunge",
		"punk", "punk rock", "emo", "post-punk", "new wave", "shoegaze",
		"noise rock", "art rock", "experimental", "industrial", "gothic rock",
	}},
	{string(Country), []string{
		"country", "country rock", "country pop", "alt-country", "bluegrass",
		"honky tonk", "outlaw country", "contemporary country",
		"nashville sound", "americana",
	}},
	{string(Pop), []string{
		"pop", "pop rock", "synth-pop", "electropop", "dance-pop", "teen pop",
		"bubblegum pop", "power pop", "sophisti-pop", "adult contemporary",
		"easy listening", "soft pop",
	}},
	{string(Latin), []string{
		"latin", "reggaeton", "salsa", "bachata", "merengue", "latin pop",
		"spanish", "mexican", "cumbia", "banda", "regional mexican", "tejano",
		"latin rock", "bossa nova",
	}},
}

// Keywords flattens families into an ordered keyword table.
func Keywords(families []Family) ([]Keyword, error) {
	var out []Keyword
	for _, f := range families {
		g, err := Parse(f.Genre)
		if err != nil {
			return nil, err
		}
		if g == Unknown {
			return nil, fmt.Errorf("keywords cannot map to %q", Unknown)
		}
		for _, k := range f.Keywords {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			out = append(out, Keyword{Term: k, Genre: g})
		}
	}
	return out, nil
}

// MustKeywords is Keywords for the built-in tables.
func MustKeywords(families []Family) []Keyword {
	k, err := Keywords(families)
	if err != nil {
		panic(err)
	}
	return k
}

// LoadFamilies reads a YAML list of genre families.
func LoadFamilies(r io.Reader) ([]Family, error) {
	var families []Family
	if err := yaml.NewDecoder(r).Decode(&families); err != nil {
		return nil, fmt.Errorf("decoding taxonomy: %w", err)
	}
	if _, err := Keywords(families); err != nil {
		return nil, fmt.Errorf("validating taxonomy: %w", err)
	}
	return families, nil
}
