package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ademuri/dosatsu-tools/internal/genre"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultFlushInterval    = 50
	DefaultProgressInterval = 10
	DefaultMaxAuthFailures  = 3
)

// Stats is the running breakdown of a batch.
type Stats struct {
	Total     int
	Processed int
	Primary   int
	Secondary int
	NotFound  int
	Genres    map[genre.Genre]int
}

func (s Stats) Found() int {
	return s.Primary + s.Secondary
}

func (s *Stats) add(result Result) {
	s.Processed++
	r, ok := result.Record()
	if !ok {
		s.NotFound++
		return
	}
	switch r.Source {
	case Spotify:
		s.Primary++
	case MusicBrainz:
		s.Secondary++
	}
	s.Genres[r.Genre]++
}

// Batch classifies lists of artists through a Hybrid.
type Batch struct {
	hybrid *Hybrid
	log    *zap.SugaredLogger

	// FlushInterval is how many names are processed between hybrid cache
	// writes.
	FlushInterval    int
	ProgressInterval int
	// MaxAuthFailures consecutive authentication errors stop the run.
	MaxAuthFailures int
}

func NewBatch(hybrid *Hybrid, log *zap.SugaredLogger) *Batch {
	return &Batch{
		hybrid:           hybrid,
		log:              log,
		FlushInterval:    DefaultFlushInterval,
		ProgressInterval: DefaultProgressInterval,
		MaxAuthFailures:  DefaultMaxAuthFailures,
	}
}

// ClassifyMany classifies every name in order. Per-name failures are logged and
// skipped. On a fatal error the stats so far are returned with it.
func (b *Batch) ClassifyMany(ctx context.Context, names []string) (Stats, error) {
	stats := Stats{
		Total:  len(names),
		Genres: make(map[genre.Genre]int),
	}
	b.log.Infow("starting batch", "artists", len(names), "cached", b.hybrid.Cache().Len())

	authFailures := 0
	flushed := false
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, b.abort(err)
		}

		result, err := b.hybrid.Classify(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return stats, b.abort(ctx.Err())
			}
			if !errors.Is(err, ErrAuthentication) {
				return stats, b.abort(err)
			}
			authFailures++
			b.log.Errorw("authentication failed", "artist", name, "consecutive", authFailures, "error", err)
			if b.MaxAuthFailures > 0 && authFailures >= b.MaxAuthFailures {
				return stats, b.abort(fmt.Errorf("stopping after %d consecutive authentication failures: %w", authFailures, err))
			}
			continue
		}
		if ctx.Err() != nil {
			// Cancelled mid-lookup, so a miss may be spurious.
			return stats, b.abort(ctx.Err())
		}
		authFailures = 0
		stats.add(result)

		if b.ProgressInterval > 0 && (i+1)%b.ProgressInterval == 0 {
			b.progress(stats)
		}

		if b.FlushInterval > 0 && stats.Processed%b.FlushInterval == 0 {
			if err := b.hybrid.Cache().Flush(); err != nil {
				if !flushed {
					return stats, fmt.Errorf("saving cache after %d artists: %w", stats.Processed, err)
				}
				b.log.Warnw("periodic cache save failed", "path", b.hybrid.Cache().Path(), "error", err)
			} else {
				flushed = true
			}
		}
	}

	if err := b.flushAll(); err != nil {
		return stats, fmt.Errorf("saving caches: %w", err)
	}
	b.progress(stats)
	return stats, nil
}

// abort saves whatever it can and returns cause.
func (b *Batch) abort(cause error) error {
	if err := b.flushAll(); err != nil {
		b.log.Warnw("saving caches before stopping", "error", err)
	}
	return cause
}

func (b *Batch) flushAll() error {
	var errs error
	for _, c := range b.hybrid.Caches() {
		errs = multierr.Append(errs, c.Flush())
	}
	return errs
}

func (b *Batch) progress(s Stats) {
	b.log.Infow("progress",
		"processed", fmt.Sprintf("%d/%d", s.Processed, s.Total),
		"spotify", s.Primary,
		"musicbrainz", s.Secondary,
		"not_found", s.NotFound,
	)
}
