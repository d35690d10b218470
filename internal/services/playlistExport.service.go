package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"echosorter/internal/logger"
	"echosorter/internal/repositories"
)

// PlaylistResult reports a completed export.
type PlaylistResult struct {
	PlaylistName string `json:"playlistName"`
	PlaylistURL  string `json:"playlistUrl,omitempty"`
	TracksAdded  int    `json:"tracksAdded"`
}

// PlaylistExportService pushes one broad genre's tracks back to Spotify as a
// dated private playlist. Exports never run inside a sync transaction; the
// mirror is read-only here.
type PlaylistExportService struct {
	auth      *SpotifyAuthService
	trackRepo repositories.TrackRepository
	now       func() time.Time
	log       logger.Logger
}

func NewPlaylistExportService(
	auth *SpotifyAuthService,
	repo *repositories.Repository,
) *PlaylistExportService {
	return &PlaylistExportService{
		auth:      auth,
		trackRepo: repo.Track,
		now:       time.Now,
		log:       logger.New("playlistExportService"),
	}
}

// ExportGenre creates a private playlist named "<Genre> Playlist (YYYY-MM-DD)"
// holding every mirror track under the broad genre, added in batches. A 401
// from Spotify purges the credential and surfaces ErrNotAuthenticated.
func (s *PlaylistExportService) ExportGenre(
	ctx context.Context,
	userID, broadGenre string,
) (*PlaylistResult, error) {
	log := s.log.Function("ExportGenre")

	tracks, err := s.trackRepo.ListForUserByBroadGenre(ctx, userID, broadGenre)
	if err != nil {
		return nil, log.Err("failed to load tracks for genre", err,
			"userID", userID, "genre", broadGenre)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTracksForGenre, broadGenre)
	}

	client, err := s.auth.GetValidClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s Playlist (%s)", broadGenre, s.now().Format("2006-01-02"))

	playlist, err := client.CreatePlaylist(ctx, userID, name)
	if err != nil {
		return nil, s.translateSpotifyError(ctx, userID, err, log, "failed to create playlist")
	}

	uris := make([]string, 0, len(tracks))
	for _, track := range tracks {
		uris = append(uris, "spotify:track:"+track.SpotifyID)
	}

	if err := client.AddPlaylistItems(ctx, playlist.ID, uris); err != nil {
		return nil, s.translateSpotifyError(ctx, userID, err, log, "failed to add playlist items")
	}

	result := &PlaylistResult{
		PlaylistName: playlist.Name,
		PlaylistURL:  playlist.ExternalURLs["spotify"],
		TracksAdded:  len(uris),
	}

	log.Info("Exported genre playlist",
		"userID", userID, "genre", broadGenre, "tracks", result.TracksAdded)

	return result, nil
}

// translateSpotifyError handles the mid-operation 401: the token proved
// unusable despite passing the expiry check, so purge it and demand a fresh
// authorization.
func (s *PlaylistExportService) translateSpotifyError(
	ctx context.Context,
	userID string,
	err error,
	log logger.Logger,
	msg string,
) error {
	if errors.Is(err, ErrAuthExpired) {
		if purgeErr := s.auth.PurgeCredential(ctx, userID); purgeErr != nil {
			log.Warn("Failed to purge credential after 401", "userID", userID, "error", purgeErr)
		}
		return fmt.Errorf("%w: authorization rejected mid-export", ErrNotAuthenticated)
	}

	return log.Err(msg, err, "userID", userID)
}
