package classify

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ademuri/dosatsu-tools/internal/genre"
	"github.com/ademuri/dosatsu-tools/internal/logger"
)

func TestOpenCacheMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := openTestCache(t, path)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Get("Drake"); ok {
		t.Error("empty cache reported a hit")
	}

	// Nothing pending, so nothing is written.
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Flush with nothing pending created %s", path)
	}
}

func TestOpenCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"Drake": {`), 0o644); err != nil {
		t.Fatal(err)
	}
	log, _ := logger.NewTestLogger()
	if _, err := OpenCache(path, log); err == nil {
		t.Fatal("OpenCache on corrupt file should have errored")
	}
}

func TestOpenCacheMissingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"Drake": {"name": "Drake", "dosatsu_genre": "Hip-Hop"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	log, _ := logger.NewTestLogger()
	if _, err := OpenCache(path, log); err == nil {
		t.Fatal("OpenCache should reject an entry with no source")
	}

	c := openTestCache(t, path, DefaultSource(Spotify))
	result, _ := c.Get("Drake")
	r, ok := result.Record()
	if !ok || r.Source != Spotify || r.Confidence != High {
		t.Fatalf("Drake = %+v, %v", r, ok)
	}
	c.Put("Dolly Parton", NotFound)
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestRecordOlderTagsKey(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"name": "The Supremes", "tags": ["soul"], "source": "musicbrainz"}`), &r); err != nil {
		t.Fatal(err)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "soul" {
		t.Errorf("Tags = %v", r.Tags)
	}

	if err := json.Unmarshal([]byte(`{"mb_tags": ["motown"], "tags": ["soul"], "source": "musicbrainz"}`), &r); err != nil {
		t.Fatal(err)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "motown" {
		t.Errorf("Tags = %v, want mb_tags to win", r.Tags)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := openTestCache(t, path)

	c.Put("Drake", Found(Record{
		Name:          "Drake",
		Genre:         genre.HipHop,
		Source:        Spotify,
		SpotifyGenres: []string{"canadian hip hop"},
		Confidence:    High,
	}))
	c.Put("Nobody", NotFound)
	if c.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", c.Pending())
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending after Flush = %d, want 0", c.Pending())
	}

	reopened := openTestCache(t, path)
	if reopened.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reopened.Len())
	}
	result, ok := reopened.Get("Drake")
	if !ok || !result.Found() {
		t.Fatalf("Get(Drake) = %v, %v", result, ok)
	}
	r, _ := result.Record()
	if r.Genre != genre.HipHop || r.Source != Spotify || r.Confidence != High {
		t.Errorf("Drake record = %+v", r)
	}

	result, ok = reopened.Get("Nobody")
	if !ok {
		t.Fatal("Get(Nobody) should be a hit")
	}
	if result.Found() {
		t.Error("Nobody should be a cached not-found")
	}
	if result.Genre() != genre.Unknown {
		t.Errorf("not-found genre = %q, want %q", result.Genre(), genre.Unknown)
	}

	if got := reopened.Names(); strings.Join(got, ",") != "Drake,Nobody" {
		t.Errorf("Names = %v", got)
	}
}

func TestCacheFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := openTestCache(t, path)
	c.Put("The Supremes", Found(Record{
		Name:       "The Supremes",
		Genre:      genre.RnB,
		Source:     MusicBrainz,
		Tags:       []string{"soul", "motown"},
		Confidence: Medium,
	}))
	c.Put("Nobody", NotFound)
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bs), "\n  \"Nobody\": null") {
		t.Errorf("expected two-space indent and null entry, got:\n%s", bs)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(bs, &raw); err != nil {
		t.Fatalf("cache file is not JSON: %v", err)
	}
	supremes := raw["The Supremes"]
	if supremes["dosatsu_genre"] != "R&B" || supremes["source"] != "musicbrainz" || supremes["confidence"] != "medium" {
		t.Errorf("The Supremes = %v", supremes)
	}
	if _, ok := supremes["mb_tags"]; !ok {
		t.Errorf("missing mb_tags: %v", supremes)
	}
	if _, ok := supremes["spotify_genres"]; ok {
		t.Errorf("musicbrainz record should not carry spotify_genres: %v", supremes)
	}
}

func TestCacheFlushEvery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := openTestCache(t, path, FlushEvery(2))

	c.Put("a", NotFound)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("cache written before the flush threshold")
	}
	c.Put("b", NotFound)
	if c.Pending() != 0 {
		t.Errorf("Pending = %d, want 0 after automatic flush", c.Pending())
	}
	if got := openTestCache(t, path).Len(); got != 2 {
		t.Errorf("on-disk entries = %d, want 2", got)
	}
}

func TestCachePutOverwrites(t *testing.T) {
	c := openTestCache(t, filepath.Join(t.TempDir(), "cache.json"))
	c.Put("Drake", NotFound)
	c.Put("Drake", Found(Record{Name: "Drake", Genre: genre.HipHop, Source: Spotify}))
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if got, _ := c.Get("Drake"); got.Genre() != genre.HipHop {
		t.Errorf("Genre = %q, want %q", got.Genre(), genre.HipHop)
	}
}

func TestSourceText(t *testing.T) {
	var s Source
	if err := s.UnmarshalText([]byte("spotify")); err != nil || s != Spotify {
		t.Errorf("UnmarshalText(spotify) = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("lastfm")); err == nil {
		t.Error("UnmarshalText(lastfm) should have errored")
	}
	if _, err := Source(0).MarshalText(); err == nil {
		t.Error("MarshalText of zero source should have errored")
	}
	if MusicBrainz.Confidence() != Medium || Spotify.Confidence() != High {
		t.Error("unexpected source confidence")
	}
}
