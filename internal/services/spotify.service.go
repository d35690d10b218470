package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"echosorter/internal/logger"

	"golang.org/x/time/rate"
)

const (
	SpotifyAuthURL    = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	SpotifyAPIBaseURL = "https://api.spotify.com/v1"

	// Service ceilings: 50 tracks per saved-tracks page, 50 artist IDs per
	// batch request, 100 URIs per playlist-add call.
	SavedTracksPageSize   = 50
	ArtistBatchSize       = 50
	PlaylistItemBatchSize = 100

	spotifyRequestTimeout = 30 * time.Second
)

type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtistStub is the abbreviated artist object embedded in tracks. It
// carries no genres; those come from the full artist endpoint.
type SpotifyArtistStub struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

type SpotifyTrack struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	PreviewURL *string             `json:"preview_url"`
	Album      *SpotifyAlbum       `json:"album"`
	Artists    []SpotifyArtistStub `json:"artists"`
}

type SpotifySavedTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type savedTracksPage struct {
	Items []SpotifySavedTrack `json:"items"`
	Next  *string             `json:"next"`
	Total int                 `json:"total"`
}

type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type SpotifyPlaylist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// SpotifyClient is an authenticated Spotify Web API client bound to one
// access token. Issued by the credential manager; never cached across calls
// since the token may rotate underneath.
type SpotifyClient struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	limiter     *rate.Limiter
	log         logger.Logger
}

func NewSpotifyClient(accessToken string) *SpotifyClient {
	return &SpotifyClient{
		httpClient:  &http.Client{Timeout: spotifyRequestTimeout},
		baseURL:     SpotifyAPIBaseURL,
		accessToken: accessToken,
		// Spotify's rolling-window limit sits near 180 requests/min.
		limiter: rate.NewLimiter(rate.Limit(3), 5),
		log:     logger.New("spotifyClient"),
	}
}

// WithBaseURL points the client at a different API root. Used by tests.
func (c *SpotifyClient) WithBaseURL(baseURL string) *SpotifyClient {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *SpotifyClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	return c.doRequestURL(ctx, method, c.baseURL+path, body, result)
}

func (c *SpotifyClient) doRequestURL(ctx context.Context, method, fullURL string, body, result any) error {
	log := c.log.Function("doRequestURL")

	if err := c.limiter.Wait(ctx); err != nil {
		return log.Err("rate limiter wait aborted", err)
	}

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return log.Err("failed to encode request body", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return log.Err("failed to create request", err, "url", fullURL)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d from %s", ErrServiceFailure, resp.StatusCode, fullURL)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: malformed response: %v", ErrServiceFailure, err)
		}
	}

	return nil
}

// CurrentUser retrieves the profile of the token's owner.
func (c *SpotifyClient) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchAllLikedTracks pages through the user's saved tracks until the service
// reports no further page, returning the materialized collection. Bounded by
// the user's actual library size.
func (c *SpotifyClient) FetchAllLikedTracks(ctx context.Context) ([]SpotifySavedTrack, error) {
	log := c.log.Function("FetchAllLikedTracks")

	var all []SpotifySavedTrack
	nextURL := fmt.Sprintf("%s/me/tracks?limit=%d", c.baseURL, SavedTracksPageSize)

	for nextURL != "" {
		var page savedTracksPage
		if err := c.doRequestURL(ctx, http.MethodGet, nextURL, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track != nil {
				all = append(all, item)
			}
		}

		if page.Next != nil && *page.Next != "" {
			nextURL = *page.Next
		} else {
			nextURL = ""
		}
	}

	log.Info("Fetched liked tracks", "count", len(all))
	return all, nil
}

// FetchArtistDetails retrieves full artist objects in batches of at most 50
// IDs. A failed batch is logged and its artists are simply absent from the
// result; a 401 aborts everything as ErrAuthExpired.
func (c *SpotifyClient) FetchArtistDetails(
	ctx context.Context,
	artistIDs []string,
) (map[string]SpotifyArtist, error) {
	log := c.log.Function("FetchArtistDetails")

	details := make(map[string]SpotifyArtist, len(artistIDs))

	for start := 0; start < len(artistIDs); start += ArtistBatchSize {
		end := min(start+ArtistBatchSize, len(artistIDs))
		batch := artistIDs[start:end]

		endpoint := "/artists?ids=" + url.QueryEscape(strings.Join(batch, ","))

		var response struct {
			Artists []*SpotifyArtist `json:"artists"`
		}
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			if errors.Is(err, ErrAuthExpired) {
				return nil, err
			}
			log.Warn("Artist batch fetch failed, skipping batch", "error", err,
				"batchStart", start, "batchSize", len(batch))
			continue
		}

		for _, artist := range response.Artists {
			// Invalid IDs come back as nulls in the batch response.
			if artist != nil {
				details[artist.ID] = *artist
			}
		}
	}

	log.Info("Fetched artist details", "requested", len(artistIDs), "resolved", len(details))
	return details, nil
}

// CreatePlaylist creates a new private playlist owned by the given user.
func (c *SpotifyClient) CreatePlaylist(
	ctx context.Context,
	userID, name string,
) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	body := map[string]any{
		"name":   name,
		"public": false,
	}

	var playlist SpotifyPlaylist
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// AddPlaylistItems adds track URIs to a playlist in batches of at most 100.
func (c *SpotifyClient) AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += PlaylistItemBatchSize {
		end := min(start+PlaylistItemBatchSize, len(uris))

		body := map[string]any{"uris": uris[start:end]}
		if err := c.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return err
		}
	}

	return nil
}
