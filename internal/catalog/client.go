package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"dropwatch/internal/config"
)

// Album is a catalog album entry as returned by search and listing endpoints.
type Album struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	AlbumType            string       `json:"album_type"`
	TotalTracks          int          `json:"total_tracks"`
	ReleaseDate          string       `json:"release_date"`
	ReleaseDatePrecision string       `json:"release_date_precision"`
	Artists              []ArtistRef  `json:"artists"`
	Images               []Image      `json:"images"`
	ExternalURLs         ExternalURLs `json:"external_urls"`
}

// ArtistRef is the compact artist object embedded in albums and tracks.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist is the full artist object with profile fields.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres"`
	Followers    Followers    `json:"followers"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Followers carries the artist follower count.
type Followers struct {
	Total int `json:"total"`
}

// Image is one entry of an image set, largest first.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ExternalURLs carries the public web URL of a catalog object.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Track is a catalog track entry.
type Track struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
}

// AlbumPage is one page of an artist's release listing.
type AlbumPage struct {
	Items []Album `json:"items"`
	Next  string  `json:"next"`
	Total int     `json:"total"`
}

// PlaylistItem wraps one playlist entry; Track is null for removed episodes.
type PlaylistItem struct {
	Track *Track `json:"track"`
}

// PlaylistPage is one page of a playlist's track listing.
type PlaylistPage struct {
	Items []PlaylistItem `json:"items"`
	Next  string         `json:"next"`
	Total int            `json:"total"`
}

type searchResponse struct {
	Albums  *AlbumPage  `json:"albums"`
	Artists *artistPage `json:"artists"`
}

type artistPage struct {
	Items []Artist `json:"items"`
	Next  string   `json:"next"`
	Total int      `json:"total"`
}

type topTracksResponse struct {
	Tracks []Track `json:"tracks"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// API defines the raw catalog operations the correlator consumes.
type API interface {
	SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)
	ArtistAlbums(ctx context.Context, artistID string, offset, limit int) (*AlbumPage, error)
	ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error)
	PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*PlaylistPage, error)
}

// Client provides access to the catalog API using the client-credentials flow.
// Tokens are acquired lazily and refreshed before expiry.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	market       string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

var _ API = (*Client)(nil)

// tokenSlack is how early a cached token is considered stale.
const tokenSlack = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a catalog client from the catalog config section.
func New(cfg config.Catalog, opts ...Option) (*Client, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errors.New("catalog client id required")
	}
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	if clientSecret == "" {
		return nil, errors.New("catalog client secret required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base url required")
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		return nil, errors.New("catalog token url required")
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		market:       strings.TrimSpace(cfg.Market),
		httpClient:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Authenticate performs an eager token round-trip. Used by preflight checks;
// regular calls fetch tokens lazily.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > tokenSlack {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute token request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catalog token endpoint returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("catalog token endpoint returned empty token")
	}

	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse catalog url: %w", err)
	}
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

// SearchAlbums searches the catalog for albums matching the query.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "album")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var payload searchResponse
	if err := c.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}
	if payload.Albums == nil {
		return nil, nil
	}
	return payload.Albums.Items, nil
}

// SearchArtists searches the catalog for artists matching the query.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var payload searchResponse
	if err := c.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}
	if payload.Artists == nil {
		return nil, nil
	}
	return payload.Artists.Items, nil
}

// ArtistAlbums fetches one page of an artist's release listing across albums,
// singles, and compilations.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, offset, limit int) (*AlbumPage, error) {
	artistID = strings.TrimSpace(artistID)
	if artistID == "" {
		return nil, errors.New("artist id must not be empty")
	}
	params := url.Values{}
	params.Set("include_groups", "album,single,compilation")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var payload AlbumPage
	if err := c.get(ctx, "/artists/"+url.PathEscape(artistID)+"/albums", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ArtistTopTracks fetches an artist's ranked top tracks for the configured market.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	artistID = strings.TrimSpace(artistID)
	if artistID == "" {
		return nil, errors.New("artist id must not be empty")
	}
	params := url.Values{}
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload topTracksResponse
	if err := c.get(ctx, "/artists/"+url.PathEscape(artistID)+"/top-tracks", params, &payload); err != nil {
		return nil, err
	}
	return payload.Tracks, nil
}

// PlaylistTracks fetches one page of a public playlist's track listing.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*PlaylistPage, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return nil, errors.New("playlist id must not be empty")
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var payload PlaylistPage
	if err := c.get(ctx, "/playlists/"+url.PathEscape(playlistID)+"/tracks", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return 50
	}
	return limit
}
