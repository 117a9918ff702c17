package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/dosatsu-tools/internal/classify"
	"github.com/ademuri/dosatsu-tools/internal/config"
	"github.com/ademuri/dosatsu-tools/internal/genre"
	"github.com/ademuri/dosatsu-tools/internal/logger"
	"github.com/ademuri/dosatsu-tools/internal/musicbrainz"
	"github.com/ademuri/dosatsu-tools/internal/spotify"
)

// ClassifierConfig is everything needed to build the hybrid classifier.
type ClassifierConfig struct {
	CachePath            string
	SpotifyCachePath     string
	MusicBrainzCachePath string
	TaxonomyPath         string

	// ProviderFlushInterval is how many new entries a provider cache holds
	// before it is written.
	ProviderFlushInterval int

	Spotify     spotify.Config
	MusicBrainz musicbrainz.Config
}

// classifierConfigFromFlags reads the persistent flags and the provider flags
// of the current command.
func classifierConfigFromFlags() (ClassifierConfig, error) {
	creds := config.Spotify{
		ClientID:     viper.GetString("spotify_id"),
		ClientSecret: viper.GetString("spotify_secret"),
	}
	env, err := config.SpotifyFromEnv()
	if err != nil {
		return ClassifierConfig{}, err
	}
	creds = creds.Merge(env)

	return ClassifierConfig{
		CachePath:             viper.GetString("cache"),
		SpotifyCachePath:      viper.GetString("spotify-cache"),
		MusicBrainzCachePath:  viper.GetString("musicbrainz-cache"),
		TaxonomyPath:          viper.GetString("taxonomy"),
		ProviderFlushInterval: viper.GetInt("provider-flush-interval"),
		Spotify: spotify.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Delay:        durationOr(viper.GetDuration("spotify-delay"), spotify.DefaultDelay),
			TokenURL:     viper.GetString("spotify-token-url"),
			BaseURL:      viper.GetString("spotify-api-url"),
		},
		MusicBrainz: musicbrainz.Config{
			BaseURL: viper.GetString("musicbrainz-url"),
			Delay:   durationOr(viper.GetDuration("musicbrainz-delay"), musicbrainz.DefaultDelay),
			Retries: intOr(viper.GetInt("musicbrainz-retries"), musicbrainz.DefaultRetries),
		},
	}, nil
}

func (c ClassifierConfig) spotifyCredentials() config.Spotify {
	return config.Spotify{ClientID: c.Spotify.ClientID, ClientSecret: c.Spotify.ClientSecret}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func intOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func newLogger() (*zap.SugaredLogger, error) {
	return logger.New(viper.GetString("log-level"))
}

// keywordTables returns the Spotify and MusicBrainz keyword tables, both
// replaced by the taxonomy file when one is given.
func keywordTables(path string) ([]genre.Keyword, []genre.Keyword, error) {
	if path == "" {
		return genre.MustKeywords(genre.SpotifyFamilies), genre.MustKeywords(genre.MusicBrainzFamilies), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening taxonomy: %w", err)
	}
	defer f.Close()

	families, err := genre.LoadFamilies(f)
	if err != nil {
		return nil, nil, fmt.Errorf("loading taxonomy %s: %w", path, err)
	}
	keywords, err := genre.Keywords(families)
	if err != nil {
		return nil, nil, fmt.Errorf("loading taxonomy %s: %w", path, err)
	}
	return keywords, keywords, nil
}

// newHybrid opens all three caches and builds the classifier. No provider is
// contacted until something is classified.
func newHybrid(ctx context.Context, cfg ClassifierConfig, log *zap.SugaredLogger) (*classify.Hybrid, error) {
	spotifyKeywords, mbKeywords, err := keywordTables(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}

	hybridCache, err := classify.OpenCache(cfg.CachePath, log)
	if err != nil {
		return nil, err
	}
	flush := classify.FlushEvery(cfg.ProviderFlushInterval)
	spotifyCache, err := classify.OpenCache(cfg.SpotifyCachePath, log, flush, classify.DefaultSource(classify.Spotify))
	if err != nil {
		return nil, err
	}
	mbCache, err := classify.OpenCache(cfg.MusicBrainzCachePath, log, flush, classify.DefaultSource(classify.MusicBrainz))
	if err != nil {
		return nil, err
	}

	primary := classify.NewProviderClassifier(
		spotify.New(ctx, cfg.Spotify), genre.NewMapper(spotifyKeywords), spotifyCache, log)
	secondary := classify.NewProviderClassifier(
		musicbrainz.New(cfg.MusicBrainz), genre.NewMapper(mbKeywords), mbCache, log)

	return classify.NewHybrid(hybridCache, primary, secondary, log), nil
}
