package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotifyClient_FetchAllLikedTracks_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")

		switch page {
		case "", "1":
			next := server.URL + "/me/tracks?page=2"
			_ = json.NewEncoder(w).Encode(savedTracksPage{
				Items: []SpotifySavedTrack{
					savedTrack("track-1", "First"),
					savedTrack("track-2", "Second"),
				},
				Next:  &next,
				Total: 3,
			})
		case "2":
			_ = json.NewEncoder(w).Encode(savedTracksPage{
				Items: []SpotifySavedTrack{savedTrack("track-3", "Third")},
				Next:  nil,
				Total: 3,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	tracks, err := client.FetchAllLikedTracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "track-1", tracks[0].Track.ID)
	assert.Equal(t, "track-3", tracks[2].Track.ID)
}

func TestSpotifyClient_FetchAllLikedTracks_SkipsNullTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(savedTracksPage{
			Items: []SpotifySavedTrack{
				savedTrack("track-1", "Present"),
				{Track: nil},
			},
		})
	}))
	defer server.Close()

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	tracks, err := client.FetchAllLikedTracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
}

func TestSpotifyClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewSpotifyClient("stale-token").WithBaseURL(server.URL)

	_, err := client.FetchAllLikedTracks(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired)

	_, err = client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestSpotifyClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	_, err := client.FetchAllLikedTracks(context.Background())
	assert.ErrorIs(t, err, ErrServiceFailure)
}

func TestSpotifyClient_FetchArtistDetails_BatchesAndToleratesFailures(t *testing.T) {
	var batchSizes []int
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		batchSizes = append(batchSizes, len(ids))

		// Fail the second batch only.
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		artists := make([]*SpotifyArtist, 0, len(ids))
		for _, id := range ids {
			artists = append(artists, &SpotifyArtist{ID: id, Name: "Artist " + id, Genres: []string{"rock"}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"artists": artists})
	}))
	defer server.Close()

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("artist-%03d", i)
	}

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	details, err := client.FetchArtistDetails(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 50, 20}, batchSizes)
	// 50 from the first batch plus 20 from the third; the failed middle batch
	// is absent rather than fatal.
	assert.Len(t, details, 70)
	assert.NotContains(t, details, "artist-060")
	assert.Contains(t, details, "artist-010")
	assert.Contains(t, details, "artist-110")
}

func TestSpotifyClient_FetchArtistDetails_AbortsOnAuthExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewSpotifyClient("stale-token").WithBaseURL(server.URL)

	_, err := client.FetchArtistDetails(context.Background(), []string{"artist-1"})
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestSpotifyClient_FetchArtistDetails_SkipsNullArtists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"artists": []*SpotifyArtist{
				{ID: "artist-1", Name: "Real"},
				nil,
			},
		})
	}))
	defer server.Close()

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	details, err := client.FetchArtistDetails(context.Background(), []string{"artist-1", "bogus"})
	require.NoError(t, err)
	assert.Len(t, details, 1)
}

func TestSpotifyClient_CreatePlaylist_Private(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/user-1/playlists", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rock Playlist (2026-08-31)", body["name"])
		assert.Equal(t, false, body["public"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SpotifyPlaylist{
			ID:           "playlist-1",
			Name:         body["name"].(string),
			ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/playlist/playlist-1"},
		})
	}))
	defer server.Close()

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	playlist, err := client.CreatePlaylist(context.Background(), "user-1", "Rock Playlist (2026-08-31)")
	require.NoError(t, err)
	assert.Equal(t, "playlist-1", playlist.ID)
	assert.Equal(t, "https://open.spotify.com/playlist/playlist-1", playlist.ExternalURLs["spotify"])
}

func TestSpotifyClient_AddPlaylistItems_Batches(t *testing.T) {
	var batchSizes []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlists/playlist-1/tracks", r.URL.Path)

		var body struct {
			URIs []string `json:"uris"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		batchSizes = append(batchSizes, len(body.URIs))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"snapshot_id": "snap"})
	}))
	defer server.Close()

	uris := make([]string, 250)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:track-%03d", i)
	}

	client := NewSpotifyClient("test-token").WithBaseURL(server.URL)

	require.NoError(t, client.AddPlaylistItems(context.Background(), "playlist-1", uris))
	assert.Equal(t, []int{100, 100, 50}, batchSizes)
}
