// Package musicbrainz is a minimal client for the MusicBrainz JSON web
// service, used to classify artists from community tags.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/ademuri/dosatsu-tools/internal/classify"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2/"
	DefaultUserAgent = "dosatsu-tools/1.0 (https://github.com/ademuri/dosatsu-tools)"
	// MusicBrainz allows one request per second for anonymous clients.
	DefaultDelay   = 1 * time.Second
	DefaultRetries = 3

	maxTags = 20
)

// ErrMalformed is wrapped by errors for responses that could not be decoded.
var ErrMalformed = errors.New("malformed musicbrainz response")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("musicbrainz returned %d %s for %s", e.Code, http.StatusText(e.Code), e.URL)
}

type Config struct {
	BaseURL   string
	UserAgent string
	// Delay is the minimum gap between requests.
	Delay time.Duration
	// Retries is how many times a request is attempted while the server is
	// throttling with 503.
	Retries    int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// Client is a classify.Provider backed by MusicBrainz artist search and tags.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	retries   uint
	backoff   time.Duration
}

func New(cfg Config) *Client {
	c := &Client{
		http:      cfg.HTTPClient,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Every(cfg.Delay), 1),
		retries:   uint(cfg.Retries),
		backoff:   cfg.RetryDelay,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.retries == 0 {
		c.retries = 1
	}
	if c.backoff == 0 {
		c.backoff = cfg.Delay
	}
	return c
}

func (c *Client) Source() classify.Source {
	return classify.MusicBrainz
}

// Artist is a search hit.
type Artist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type searchResponse struct {
	Artists []Artist `json:"artists"`
}

type artistResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}

// SearchArtist returns the best match for name, or nil if there is none.
func (c *Client) SearchArtist(ctx context.Context, name string) (*Artist, error) {
	v := url.Values{}
	v.Set("query", Query(name))
	v.Set("limit", "1")
	v.Set("fmt", "json")

	var resp searchResponse
	if err := c.get(ctx, "artist?"+v.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching musicbrainz for %q: %w", name, err)
	}
	if len(resp.Artists) == 0 {
		return nil, nil
	}
	a := resp.Artists[0]
	if a.ID == "" {
		return nil, fmt.Errorf("search hit for %q has no id: %w", name, ErrMalformed)
	}
	return &a, nil
}

// ArtistTags returns up to 20 tag names for mbid, most voted first.
func (c *Client) ArtistTags(ctx context.Context, mbid string) ([]string, error) {
	v := url.Values{}
	v.Set("inc", "tags+ratings")
	v.Set("fmt", "json")

	var resp artistResponse
	if err := c.get(ctx, "artist/"+url.PathEscape(mbid)+"?"+v.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetching tags for %s: %w", mbid, err)
	}

	tags := resp.Tags
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Count > tags[j].Count
	})
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

// Lookup searches for name and fetches its tags. An artist without tags is
// treated as not found.
func (c *Client) Lookup(ctx context.Context, name string) (*classify.Match, error) {
	a, err := c.SearchArtist(ctx, name)
	if err != nil || a == nil {
		return nil, err
	}
	tags, err := c.ArtistTags(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &classify.Match{
		Name: a.Name,
		ID:   a.ID,
		Tags: tags,
	}, nil
}

// Query builds an exact-phrase artist search.
func Query(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return `artist:"` + escaped + `"`
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	u := c.baseURL + path
	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return c.fetch(ctx, u, out)
		},
		retry.Attempts(c.retries),
		retry.Delay(c.backoff),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var serr *StatusError
			return errors.As(err, &serr) && serr.Code == http.StatusServiceUnavailable
		}),
	)
}

func (c *Client) fetch(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode/100 != 2 {
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %v: %w", u, err, ErrMalformed)
	}
	return nil
}
