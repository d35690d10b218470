package services

import (
	"context"
	"testing"

	"echosorter/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLibraryFixture(t *testing.T) (*LibraryService, repositories.Repository) {
	t.Helper()

	syncService, repos, _ := newSyncFixture(t)

	slowdive := SpotifyArtistStub{ID: "artist-1", Name: "Slowdive"}
	aphex := SpotifyArtistStub{ID: "artist-2", Name: "Aphex Twin"}
	saved := []SpotifySavedTrack{
		savedTrack("track-1", "Alison", slowdive),
		savedTrack("track-2", "Windowlicker", aphex),
	}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Slowdive", Genres: []string{"shoegaze", "dream pop"}},
		"artist-2": {ID: "artist-2", Name: "Aphex Twin", Genres: []string{"idm", "ambient"}},
	}

	_, err := syncService.Sync(context.Background(), "user-1", saved, details, true)
	require.NoError(t, err)

	return NewLibraryService(&repos, NewGenreClassifier()), repos
}

func TestLibraryService_ListLikedTracks(t *testing.T) {
	service, _ := seedLibraryFixture(t)

	views, err := service.ListLikedTracks(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Ordered by title.
	assert.Equal(t, "Alison", views[0].Title)
	assert.Equal(t, "Windowlicker", views[1].Title)

	assert.Equal(t, []string{"Slowdive"}, views[0].Artists)
	assert.Equal(t, "Album for Alison", views[0].Album)
	assert.Equal(t, "https://images.example/track-1", views[0].ImageURL)
	assert.Equal(t, []string{"Alternative"}, views[0].BroadGenres)

	assert.Equal(t, []string{"Electronic"}, views[1].BroadGenres)
}

func TestLibraryService_ListLikedTracks_EmptyUser(t *testing.T) {
	service, _ := seedLibraryFixture(t)

	views, err := service.ListLikedTracks(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestLibraryService_LatestSyncRun(t *testing.T) {
	service, _ := seedLibraryFixture(t)

	run, err := service.LatestSyncRun(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 2, run.TracksSynced)

	missing, err := service.LatestSyncRun(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
