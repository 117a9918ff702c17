package classify

import (
	"context"
	"errors"

	"github.com/ademuri/dosatsu-tools/internal/genre"
	"go.uber.org/zap"
)

const maxStoredTags = 10

// Match is a provider's top search hit for an artist name.
type Match struct {
	Name       string
	ID         string
	Tags       []string
	Popularity int
	Followers  int
}

// Provider looks up an artist by name. A nil Match with a nil error means the
// provider has no such artist. Implementations enforce their own throttling.
type Provider interface {
	Source() Source
	Lookup(ctx context.Context, artist string) (*Match, error)
}

// ProviderClassifier classifies artists with a single provider, remembering
// every definitive answer in its cache.
type ProviderClassifier struct {
	provider Provider
	mapper   *genre.Mapper
	cache    *Cache
	log      *zap.SugaredLogger
}

func NewProviderClassifier(provider Provider, mapper *genre.Mapper, cache *Cache, log *zap.SugaredLogger) *ProviderClassifier {
	return &ProviderClassifier{
		provider: provider,
		mapper:   mapper,
		cache:    cache,
		log:      log.With("source", provider.Source().String()),
	}
}

func (p *ProviderClassifier) Source() Source {
	return p.provider.Source()
}

func (p *ProviderClassifier) Cache() *Cache {
	return p.cache
}

// Classify returns the cached result for artist or asks the provider.
// Provider failures other than authentication are logged and reported as
// NotFound without being cached, so a later run retries them.
func (p *ProviderClassifier) Classify(ctx context.Context, artist string) (Result, error) {
	result, _, err := p.classify(ctx, artist)
	return result, err
}

// classify also reports whether the result is definitive.
func (p *ProviderClassifier) classify(ctx context.Context, artist string) (Result, bool, error) {
	if result, ok := p.cache.Get(artist); ok {
		return result, true, nil
	}

	match, err := p.provider.Lookup(ctx, artist)
	if errors.Is(err, ErrAuthentication) {
		return NotFound, false, err
	}
	if err != nil {
		p.log.Warnw("lookup failed", "artist", artist, "error", err)
		return NotFound, false, nil
	}

	if match == nil {
		p.cache.Put(artist, NotFound)
		return NotFound, true, nil
	}

	result := Found(p.record(artist, match))
	p.cache.Put(artist, result)
	return result, true, nil
}

func (p *ProviderClassifier) record(artist string, m *Match) Record {
	source := p.provider.Source()
	r := Record{
		Name:        artist,
		MatchedName: m.Name,
		Genre:       p.mapper.Map(m.Tags),
		Source:      source,
		Confidence:  source.Confidence(),
	}

	switch source {
	case Spotify:
		r.SpotifyGenres = m.Tags
		r.Popularity = m.Popularity
		r.Followers = m.Followers
		r.SpotifyID = m.ID
	case MusicBrainz:
		tags := m.Tags
		if len(tags) > maxStoredTags {
			tags = tags[:maxStoredTags]
		}
		r.Tags = tags
		r.MBID = m.ID
	}
	return r
}
