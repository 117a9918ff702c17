package classify

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ademuri/dosatsu-tools/internal/genre"
	"github.com/ademuri/dosatsu-tools/internal/logger"
)

type fakeProvider struct {
	source  Source
	matches map[string]*Match
	errs    map[string]error
	calls   map[string]int
	// onLookup runs before each lookup.
	onLookup func(artist string)
}

func newFakeProvider(source Source) *fakeProvider {
	return &fakeProvider{
		source:  source,
		matches: make(map[string]*Match),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeProvider) Source() Source {
	return f.source
}

func (f *fakeProvider) Lookup(ctx context.Context, artist string) (*Match, error) {
	f.calls[artist]++
	if f.onLookup != nil {
		f.onLookup(artist)
	}
	if err, ok := f.errs[artist]; ok {
		return nil, err
	}
	return f.matches[artist], nil
}

func (f *fakeProvider) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type testHybrid struct {
	hybrid    *Hybrid
	spotify   *fakeProvider
	mb        *fakeProvider
	dir       string
	cachePath string
}

func openTestCache(t *testing.T, path string, opts ...CacheOption) *Cache {
	t.Helper()
	log, _ := logger.NewTestLogger()
	c, err := OpenCache(path, log, opts...)
	if err != nil {
		t.Fatalf("OpenCache(%s): %v", path, err)
	}
	return c
}

// newTestHybrid builds a hybrid over fake providers with caches in dir.
func newTestHybrid(t *testing.T, dir string) *testHybrid {
	t.Helper()
	log, _ := logger.NewTestLogger()

	spotify := newFakeProvider(Spotify)
	mb := newFakeProvider(MusicBrainz)
	cachePath := filepath.Join(dir, "hybrid_genre_cache.json")

	primary := NewProviderClassifier(spotify, genre.NewMapper(genre.MustKeywords(genre.SpotifyFamilies)),
		openTestCache(t, filepath.Join(dir, "spotify_genre_cache.json"), DefaultSource(Spotify)), log)
	secondary := NewProviderClassifier(mb, genre.NewMapper(genre.MustKeywords(genre.MusicBrainzFamilies)),
		openTestCache(t, filepath.Join(dir, "musicbrainz_cache.json"), DefaultSource(MusicBrainz)), log)

	return &testHybrid{
		hybrid:    NewHybrid(openTestCache(t, cachePath), primary, secondary, log),
		spotify:   spotify,
		mb:        mb,
		dir:       dir,
		cachePath: cachePath,
	}
}
