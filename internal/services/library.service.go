package services

import (
	"context"

	"echosorter/internal/logger"
	. "echosorter/internal/models"
	"echosorter/internal/repositories"
)

// LibraryService serves read queries over the synced mirror. Broad genres on
// track views are derived at read time from the artists' specific genres, so
// a classifier table update shows up without resyncing.
type LibraryService struct {
	trackRepo   repositories.TrackRepository
	syncRunRepo repositories.SyncRunRepository
	classifier  *GenreClassifier
	log         logger.Logger
}

func NewLibraryService(repo *repositories.Repository, classifier *GenreClassifier) *LibraryService {
	return &LibraryService{
		trackRepo:   repo.Track,
		syncRunRepo: repo.SyncRun,
		classifier:  classifier,
		log:         logger.New("libraryService"),
	}
}

// ListLikedTracks returns the user's mirror as flattened views ordered by
// title.
func (s *LibraryService) ListLikedTracks(ctx context.Context, userID string) ([]TrackView, error) {
	log := s.log.Function("ListLikedTracks")

	tracks, err := s.trackRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, log.Err("failed to list tracks", err, "userID", userID)
	}

	views := make([]TrackView, 0, len(tracks))
	for _, track := range tracks {
		views = append(views, s.buildView(track))
	}

	return views, nil
}

// LatestSyncRun returns the most recent sync report for the user, or nil if
// the user has never synced.
func (s *LibraryService) LatestSyncRun(ctx context.Context, userID string) (*SyncRun, error) {
	log := s.log.Function("LatestSyncRun")

	run, err := s.syncRunRepo.GetLatestForUser(ctx, userID)
	if err != nil {
		return nil, log.Err("failed to get latest sync run", err, "userID", userID)
	}

	return run, nil
}

func (s *LibraryService) buildView(track *Track) TrackView {
	view := TrackView{
		SpotifyID: track.SpotifyID,
		Title:     track.Title,
		Artists:   make([]string, 0, len(track.Artists)),
	}

	if track.PreviewURL != nil {
		view.PreviewURL = *track.PreviewURL
	}
	if track.Album != nil {
		view.Album = track.Album.Name
		if track.Album.ImageURL != nil {
			view.ImageURL = *track.Album.ImageURL
		}
	}

	var specifics []string
	for _, artist := range track.Artists {
		view.Artists = append(view.Artists, artist.Name)
		for _, genre := range artist.Genres {
			specifics = append(specifics, genre.Name)
		}
	}
	view.BroadGenres = s.classifier.Classify(specifics)

	return view
}
