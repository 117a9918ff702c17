package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Spotify holds client credentials read from SPOTIFY_CLIENT_ID and
// SPOTIFY_CLIENT_SECRET.
type Spotify struct {
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
}

func (s Spotify) Complete() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// SpotifyFromEnv reads the Spotify credentials from the environment.
func SpotifyFromEnv() (Spotify, error) {
	var cfg Spotify
	if err := envconfig.Process("spotify", &cfg); err != nil {
		return Spotify{}, fmt.Errorf("reading spotify environment: %w", err)
	}
	return cfg, nil
}

// Merge fills empty fields of s from fallback.
func (s Spotify) Merge(fallback Spotify) Spotify {
	if s.ClientID == "" {
		s.ClientID = fallback.ClientID
	}
	if s.ClientSecret == "" {
		s.ClientSecret = fallback.ClientSecret
	}
	return s
}
