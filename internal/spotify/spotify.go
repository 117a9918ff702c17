// Package spotify looks up artists in the Spotify catalog using the client
// credentials flow.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	spot "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ademuri/dosatsu-tools/internal/classify"
)

const DefaultDelay = 100 * time.Millisecond

type Config struct {
	ClientID     string
	ClientSecret string
	// Delay is the minimum gap between requests.
	Delay time.Duration

	// TokenURL and BaseURL override the Spotify endpoints.
	TokenURL string
	BaseURL  string
}

// Client is a classify.Provider backed by the Spotify search API.
type Client struct {
	api     *spot.Client
	limiter *rate.Limiter
}

// New builds a client. No request is made until the first Lookup, which is
// when bad credentials surface.
func New(ctx context.Context, cfg Config) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	var opts []spot.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, spot.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:     spot.New(creds.Client(ctx), opts...),
		limiter: rate.NewLimiter(rate.Every(cfg.Delay), 1),
	}
}

func (c *Client) Source() classify.Source {
	return classify.Spotify
}

// Lookup returns the top artist search hit for name, or nil if there is none.
func (c *Client) Lookup(ctx context.Context, name string) (*classify.Match, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := c.api.Search(ctx, name, spot.SearchTypeArtist, spot.Limit(1))
	if err != nil {
		if isAuthError(err) {
			return nil, fmt.Errorf("searching spotify for %q: %v: %w", name, err, classify.ErrAuthentication)
		}
		return nil, fmt.Errorf("searching spotify for %q: %w", name, err)
	}
	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		return nil, nil
	}

	a := res.Artists.Artists[0]
	return &classify.Match{
		Name:       a.Name,
		ID:         string(a.ID),
		Tags:       a.Genres,
		Popularity: int(a.Popularity),
		Followers:  int(a.Followers.Count),
	}, nil
}

func isAuthError(err error) bool {
	// The token endpoint answers rejected client credentials with 400 or 401.
	// Anything else from it is an outage.
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.Response == nil {
			return false
		}
		return rerr.Response.StatusCode == http.StatusBadRequest || rerr.Response.StatusCode == http.StatusUnauthorized
	}
	var serr spot.Error
	if errors.As(err, &serr) {
		return serr.Status == http.StatusUnauthorized || serr.Status == http.StatusForbidden
	}
	return false
}
