package services

import (
	"context"
	"errors"
	"testing"

	"echosorter/internal/database"
	. "echosorter/internal/models"
	"echosorter/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newSyncFixture(t *testing.T) (*SyncService, repositories.Repository, *gorm.DB) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(
		&Credential{},
		&BroadGenre{},
		&SpecificGenre{},
		&Artist{},
		&Album{},
		&Track{},
		&SyncRun{},
	))

	db := database.DB{SQL: gormDB}
	repos := repositories.New(db)
	service := NewSyncService(NewTransactionService(db), &repos, NewGenreClassifier())

	return service, repos, gormDB
}

func savedTrack(id, title string, artists ...SpotifyArtistStub) SpotifySavedTrack {
	return SpotifySavedTrack{
		Track: &SpotifyTrack{
			ID:   id,
			Name: title,
			Album: &SpotifyAlbum{
				ID:     "album-" + id,
				Name:   "Album for " + title,
				Images: []SpotifyImage{{URL: "https://images.example/" + id}},
			},
			Artists: artists,
		},
	}
}

func TestSyncService_Sync_CreatesMirror(t *testing.T) {
	service, repos, gormDB := newSyncFixture(t)
	ctx := context.Background()

	slowdive := SpotifyArtistStub{ID: "artist-1", Name: "Slowdive"}
	saved := []SpotifySavedTrack{
		savedTrack("track-1", "Alison", slowdive),
		savedTrack("track-2", "When the Sun Hits", slowdive),
	}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Slowdive", Genres: []string{"shoegaze", "dream pop"}},
	}

	report, err := service.Sync(ctx, "user-1", saved, details, true)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TracksFetched)
	assert.Equal(t, 2, report.TracksSynced)
	assert.Equal(t, 1, report.ArtistsSynced)
	assert.Empty(t, report.Skipped)

	count, err := repos.Track.CountForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var artistCount int64
	require.NoError(t, gormDB.Model(&Artist{}).Count(&artistCount).Error)
	assert.Equal(t, int64(1), artistCount)

	tracks, err := repos.Track.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	require.Len(t, tracks[0].Artists, 1)
	assert.Equal(t, "Slowdive", tracks[0].Artists[0].Name)

	run, err := repos.SyncRun.GetLatestForUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 2, run.TracksSynced)
	assert.True(t, run.Pruned)
}

func TestSyncService_Sync_Idempotent(t *testing.T) {
	service, repos, gormDB := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Boards of Canada"}
	saved := []SpotifySavedTrack{
		savedTrack("track-1", "Roygbiv", artist),
		savedTrack("track-2", "Dayvan Cowboy", artist),
	}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Boards of Canada", Genres: []string{"idm", "downtempo"}},
	}

	for i := 0; i < 3; i++ {
		report, err := service.Sync(ctx, "user-1", saved, details, true)
		require.NoError(t, err)
		assert.Equal(t, 2, report.TracksSynced)
		assert.Equal(t, int64(0), report.TracksDeleted)
	}

	var trackCount, artistCount, albumCount, genreCount int64
	require.NoError(t, gormDB.Model(&Track{}).Count(&trackCount).Error)
	require.NoError(t, gormDB.Model(&Artist{}).Count(&artistCount).Error)
	require.NoError(t, gormDB.Model(&Album{}).Count(&albumCount).Error)
	require.NoError(t, gormDB.Model(&SpecificGenre{}).Count(&genreCount).Error)

	assert.Equal(t, int64(2), trackCount)
	assert.Equal(t, int64(1), artistCount)
	assert.Equal(t, int64(2), albumCount)
	assert.Equal(t, int64(2), genreCount)

	tracks, err := repos.Track.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	for _, track := range tracks {
		assert.Len(t, track.Artists, 1)
	}
}

func TestSyncService_Sync_ArtistSharedAcrossUsers(t *testing.T) {
	service, _, gormDB := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Portishead"}
	saved := []SpotifySavedTrack{savedTrack("track-1", "Glory Box", artist)}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Portishead", Genres: []string{"trip hop"}},
	}

	_, err := service.Sync(ctx, "user-a", saved, details, true)
	require.NoError(t, err)
	_, err = service.Sync(ctx, "user-b", saved, details, true)
	require.NoError(t, err)

	var artistCount, trackCount int64
	require.NoError(t, gormDB.Model(&Artist{}).Count(&artistCount).Error)
	require.NoError(t, gormDB.Model(&Track{}).Count(&trackCount).Error)

	assert.Equal(t, int64(1), artistCount, "artists are global, one row per Spotify ID")
	assert.Equal(t, int64(2), trackCount, "tracks partition per user")
}

func TestSyncService_Sync_SkipsInvalidTracks(t *testing.T) {
	service, repos, _ := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Low"}

	noImage := savedTrack("track-2", "Especially Me", artist)
	noImage.Track.Album.Images = nil

	noTitle := savedTrack("track-3", "", artist)

	noArtists := savedTrack("track-4", "Orphaned")
	noArtists.Track.Artists = nil

	saved := []SpotifySavedTrack{
		savedTrack("track-1", "Sunflower", artist),
		noImage,
		noTitle,
		noArtists,
		{Track: nil},
	}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Low", Genres: []string{"slowcore"}},
	}

	report, err := service.Sync(ctx, "user-1", saved, details, true)
	require.NoError(t, err)

	assert.Equal(t, 5, report.TracksFetched)
	assert.Equal(t, 1, report.TracksSynced)
	require.Len(t, report.Skipped, 4)

	reasons := make([]string, 0, len(report.Skipped))
	for _, skip := range report.Skipped {
		reasons = append(reasons, skip.Reason)
	}
	assert.Contains(t, reasons, "missing album image")
	assert.Contains(t, reasons, "missing title")
	assert.Contains(t, reasons, "missing artists")
	assert.Contains(t, reasons, "missing track data")

	count, err := repos.Track.CountForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "invalid tracks never reach the mirror")
}

func TestSyncService_Sync_PrunesAbsentTracks(t *testing.T) {
	service, repos, _ := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Can"}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Can", Genres: []string{"krautrock"}},
	}

	full := []SpotifySavedTrack{
		savedTrack("track-1", "Vitamin C", artist),
		savedTrack("track-2", "Halleluwah", artist),
	}
	_, err := service.Sync(ctx, "user-1", full, details, true)
	require.NoError(t, err)

	// One track unliked remotely; prune disabled keeps it.
	shrunk := full[:1]
	report, err := service.Sync(ctx, "user-1", shrunk, details, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.TracksDeleted)

	count, err := repos.Track.CountForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Prune enabled removes it.
	report, err = service.Sync(ctx, "user-1", shrunk, details, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TracksDeleted)

	count, err = repos.Track.CountForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	remaining, err := repos.Track.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "track-1", remaining[0].SpotifyID)
}

func TestSyncService_Sync_DerivesBroadGenres(t *testing.T) {
	service, repos, _ := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "My Bloody Valentine"}
	saved := []SpotifySavedTrack{savedTrack("track-1", "Only Shallow", artist)}
	details := map[string]SpotifyArtist{
		"artist-1": {
			ID:     "artist-1",
			Name:   "My Bloody Valentine",
			Genres: []string{"dream pop", "shoegaze"},
		},
	}

	_, err := service.Sync(ctx, "user-1", saved, details, true)
	require.NoError(t, err)

	tracks, err := repos.Track.ListForUserByBroadGenre(ctx, "user-1", "alternative")
	require.NoError(t, err)
	require.Len(t, tracks, 1, "broad genre lookup is case-insensitive")
	assert.Equal(t, "track-1", tracks[0].SpotifyID)

	broads, err := repos.Genre.GetAllBroad(ctx)
	require.NoError(t, err)
	require.Len(t, broads, 1)
	assert.Equal(t, "Alternative", broads[0].Name)
}

func TestSyncService_Sync_FallbackArtistWithoutDetails(t *testing.T) {
	service, repos, _ := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Unknown Quantity"}
	saved := []SpotifySavedTrack{savedTrack("track-1", "Mystery Song", artist)}

	// Detail batch failed upstream; the map is empty.
	report, err := service.Sync(ctx, "user-1", saved, map[string]SpotifyArtist{}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TracksSynced)

	orphans, err := repos.Artist.GetWithoutGenresForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "Unknown Quantity", orphans[0].Name)

	// The repair pass later resolves the details and fills the genre graph.
	repaired, err := service.RebuildArtistGenres(ctx, orphans, map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Unknown Quantity", Genres: []string{"ambient"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	orphans, err = repos.Artist.GetWithoutGenresForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestSyncService_Sync_RollsBackOnStorageFailure(t *testing.T) {
	service, repos, gormDB := newSyncFixture(t)
	ctx := context.Background()

	failErr := errors.New("storage failure")
	require.NoError(t, gormDB.Callback().Create().Before("gorm:create").
		Register("test_failpoint", func(tx *gorm.DB) {
			if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "sync_runs" {
				_ = tx.AddError(failErr)
			}
		}))
	defer func() {
		_ = gormDB.Callback().Create().Remove("test_failpoint")
	}()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Neu!"}
	saved := []SpotifySavedTrack{savedTrack("track-1", "Hallogallo", artist)}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Neu!", Genres: []string{"krautrock"}},
	}

	_, err := service.Sync(ctx, "user-1", saved, details, true)
	require.Error(t, err)

	// Everything written earlier in the transaction must be gone.
	var trackCount, artistCount, albumCount, runCount int64
	require.NoError(t, gormDB.Model(&Track{}).Count(&trackCount).Error)
	require.NoError(t, gormDB.Model(&Artist{}).Count(&artistCount).Error)
	require.NoError(t, gormDB.Model(&Album{}).Count(&albumCount).Error)
	require.NoError(t, gormDB.Model(&SyncRun{}).Count(&runCount).Error)

	assert.Equal(t, int64(0), trackCount)
	assert.Equal(t, int64(0), artistCount)
	assert.Equal(t, int64(0), albumCount)
	assert.Equal(t, int64(0), runCount)

	count, err := repos.Track.CountForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSyncService_Sync_RenamesArtistAndPatchesTrack(t *testing.T) {
	service, repos, _ := newSyncFixture(t)
	ctx := context.Background()

	artist := SpotifyArtistStub{ID: "artist-1", Name: "Prince"}
	saved := []SpotifySavedTrack{savedTrack("track-1", "1999", artist)}
	details := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "Prince", Genres: []string{"funk"}},
	}
	_, err := service.Sync(ctx, "user-1", saved, details, true)
	require.NoError(t, err)

	renamedStub := SpotifyArtistStub{ID: "artist-1", Name: "The Artist"}
	renamed := []SpotifySavedTrack{savedTrack("track-1", "1999 (Remaster)", renamedStub)}
	renamedDetails := map[string]SpotifyArtist{
		"artist-1": {ID: "artist-1", Name: "The Artist", Genres: []string{"funk"}},
	}
	_, err = service.Sync(ctx, "user-1", renamed, renamedDetails, true)
	require.NoError(t, err)

	tracks, err := repos.Track.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "1999 (Remaster)", tracks[0].Title)
	require.Len(t, tracks[0].Artists, 1)
	assert.Equal(t, "The Artist", tracks[0].Artists[0].Name)
}
