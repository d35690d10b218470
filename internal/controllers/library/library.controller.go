package libraryController

import (
	"context"
	"errors"
	"fmt"

	"echosorter/internal/logger"
	"echosorter/internal/models"
	"echosorter/internal/services"
)

// LibraryController orchestrates the sync pipeline and serves library reads.
type LibraryController struct {
	spotifyAuthService    *services.SpotifyAuthService
	syncService           *services.SyncService
	libraryService        *services.LibraryService
	playlistExportService *services.PlaylistExportService
	log                   logger.Logger
}

// LibraryControllerInterface defines the contract for library business logic
type LibraryControllerInterface interface {
	SyncLibrary(ctx context.Context, userID string) (*services.SyncReport, error)
	ListTracks(ctx context.Context, userID string) ([]models.TrackView, error)
	LatestSync(ctx context.Context, userID string) (*models.SyncRun, error)
	ExportPlaylist(ctx context.Context, userID, genre string) (*services.PlaylistResult, error)
}

func New(services services.Service) LibraryControllerInterface {
	return &LibraryController{
		spotifyAuthService:    services.SpotifyAuth,
		syncService:           services.Sync,
		libraryService:        services.Library,
		playlistExportService: services.PlaylistExport,
		log:                   logger.New("libraryController"),
	}
}

// SyncLibrary runs the full pipeline: fetch the liked-track snapshot, resolve
// artist details, reconcile the mirror with pruning enabled. A 401 at any
// point purges the credential so the caller re-authorizes.
func (c *LibraryController) SyncLibrary(
	ctx context.Context,
	userID string,
) (*services.SyncReport, error) {
	log := c.log.Function("SyncLibrary")

	client, err := c.spotifyAuthService.GetValidClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	savedTracks, err := client.FetchAllLikedTracks(ctx)
	if err != nil {
		return nil, c.translateSpotifyError(ctx, userID, err, log, "failed to fetch liked tracks")
	}

	artistIDs := collectArtistIDs(savedTracks)
	artistDetails, err := client.FetchArtistDetails(ctx, artistIDs)
	if err != nil {
		return nil, c.translateSpotifyError(ctx, userID, err, log, "failed to fetch artist details")
	}

	report, err := c.syncService.Sync(ctx, userID, savedTracks, artistDetails, true)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (c *LibraryController) ListTracks(
	ctx context.Context,
	userID string,
) ([]models.TrackView, error) {
	return c.libraryService.ListLikedTracks(ctx, userID)
}

func (c *LibraryController) LatestSync(
	ctx context.Context,
	userID string,
) (*models.SyncRun, error) {
	return c.libraryService.LatestSyncRun(ctx, userID)
}

func (c *LibraryController) ExportPlaylist(
	ctx context.Context,
	userID, genre string,
) (*services.PlaylistResult, error) {
	return c.playlistExportService.ExportGenre(ctx, userID, genre)
}

func collectArtistIDs(savedTracks []services.SpotifySavedTrack) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, item := range savedTracks {
		if item.Track == nil {
			continue
		}
		for _, stub := range item.Track.Artists {
			if stub.ID == "" {
				continue
			}
			if _, ok := seen[stub.ID]; !ok {
				seen[stub.ID] = struct{}{}
				ids = append(ids, stub.ID)
			}
		}
	}
	return ids
}

func (c *LibraryController) translateSpotifyError(
	ctx context.Context,
	userID string,
	err error,
	log logger.Logger,
	msg string,
) error {
	if errors.Is(err, services.ErrAuthExpired) {
		if purgeErr := c.spotifyAuthService.PurgeCredential(ctx, userID); purgeErr != nil {
			log.Warn("Failed to purge credential after 401", "userID", userID, "error", purgeErr)
		}
		return fmt.Errorf("%w: authorization rejected mid-sync", services.ErrNotAuthenticated)
	}

	return log.Err(msg, err, "userID", userID)
}
