package classify

import (
	"context"
	"fmt"

	"github.com/ademuri/dosatsu-tools/internal/genre"
	"go.uber.org/zap"
)

// Hybrid resolves artists with the primary provider first and the secondary
// as a fallback, keeping every answer in one unified cache.
type Hybrid struct {
	cache     *Cache
	primary   *ProviderClassifier
	secondary *ProviderClassifier
	log       *zap.SugaredLogger
}

func NewHybrid(cache *Cache, primary, secondary *ProviderClassifier, log *zap.SugaredLogger) *Hybrid {
	return &Hybrid{
		cache:     cache,
		primary:   primary,
		secondary: secondary,
		log:       log,
	}
}

func (h *Hybrid) Cache() *Cache {
	return h.cache
}

// Caches returns the hybrid cache followed by both provider caches.
func (h *Hybrid) Caches() []*Cache {
	return []*Cache{h.cache, h.primary.Cache(), h.secondary.Cache()}
}

// Classify returns the unified result for artist. The only error it returns
// is an authentication failure from a provider.
func (h *Hybrid) Classify(ctx context.Context, artist string) (Result, error) {
	if result, ok := h.cache.Get(artist); ok {
		return result, nil
	}

	definitive := true

	primary, ok := h.primary.Cache().Get(artist)
	if !ok {
		var err error
		primary, ok, err = h.primary.classify(ctx, artist)
		if err != nil {
			return NotFound, fmt.Errorf("classifying %q with %s: %w", artist, h.primary.Source(), err)
		}
		definitive = ok
	}
	if r, found := primary.Record(); found {
		return h.store(artist, r), nil
	}

	h.log.Debugw("falling back", "artist", artist, "source", h.secondary.Source().String())
	secondary, ok, err := h.secondary.classify(ctx, artist)
	if err != nil {
		return NotFound, fmt.Errorf("classifying %q with %s: %w", artist, h.secondary.Source(), err)
	}
	if r, found := secondary.Record(); found {
		return h.store(artist, r), nil
	}

	if definitive && ok {
		h.cache.Put(artist, NotFound)
	}
	return NotFound, nil
}

// NeedPrimaryLookup returns the names that no cache can answer without asking
// the primary provider.
func (h *Hybrid) NeedPrimaryLookup(names []string) []string {
	var need []string
	for _, name := range names {
		if _, ok := h.cache.Get(name); ok {
			continue
		}
		if _, ok := h.primary.Cache().Get(name); ok {
			continue
		}
		need = append(need, name)
	}
	return need
}

func (h *Hybrid) store(artist string, r Record) Result {
	result := Found(unify(artist, r))
	h.cache.Put(artist, result)
	return result
}

// unify stamps a provider record with the queried name and the confidence of
// its source.
func unify(artist string, r Record) Record {
	r.Name = artist
	r.Confidence = r.Source.Confidence()
	return r
}

// ImportProviderCaches copies found provider records into the hybrid cache
// without querying anything. Existing hybrid entries win, and the primary
// provider is imported first.
func (h *Hybrid) ImportProviderCaches() (int, error) {
	imported := 0
	for _, p := range []*ProviderClassifier{h.primary, h.secondary} {
		c := p.Cache()
		for _, artist := range c.Names() {
			if _, ok := h.cache.Get(artist); ok {
				continue
			}
			result, _ := c.Get(artist)
			r, found := result.Record()
			if !found {
				continue
			}
			h.cache.Put(artist, Found(unify(artist, r)))
			imported++
		}
	}

	if imported > 0 {
		if err := h.cache.Flush(); err != nil {
			return imported, fmt.Errorf("saving imported cache: %w", err)
		}
		h.log.Infow("imported provider caches", "imported", imported, "total", h.cache.Len())
	}
	return imported, nil
}

// Coverage summarizes the unified cache.
type Coverage struct {
	Total       int                 `yaml:"total"`
	Classified  int                 `yaml:"classified"`
	NotFound    int                 `yaml:"not_found"`
	Spotify     int                 `yaml:"spotify"`
	MusicBrainz int                 `yaml:"musicbrainz"`
	Genres      map[genre.Genre]int `yaml:"genres"`
}

func (h *Hybrid) Coverage() Coverage {
	return CacheCoverage(h.cache)
}

// CacheCoverage counts sources and genres across a cache.
func CacheCoverage(c *Cache) Coverage {
	cov := Coverage{Genres: make(map[genre.Genre]int)}
	for _, artist := range c.Names() {
		cov.Total++
		result, _ := c.Get(artist)
		r, found := result.Record()
		if !found {
			cov.NotFound++
			continue
		}
		cov.Classified++
		switch r.Source {
		case Spotify:
			cov.Spotify++
		case MusicBrainz:
			cov.MusicBrainz++
		}
		cov.Genres[r.Genre]++
	}
	return cov
}
