package services

import (
	"context"
	"encoding/json"
	"time"

	"echosorter/internal/logger"
	. "echosorter/internal/models"
	"echosorter/internal/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SkippedTrack records one track excluded from a sync and why.
type SkippedTrack struct {
	SpotifyID string `json:"spotifyId"`
	Title     string `json:"title,omitempty"`
	Reason    string `json:"reason"`
}

// SyncReport summarizes one completed reconciliation pass.
type SyncReport struct {
	TracksFetched int            `json:"tracksFetched"`
	TracksSynced  int            `json:"tracksSynced"`
	TracksDeleted int64          `json:"tracksDeleted"`
	ArtistsSynced int            `json:"artistsSynced"`
	Pruned        bool           `json:"pruned"`
	Skipped       []SkippedTrack `json:"skipped,omitempty"`
	StartedAt     time.Time      `json:"startedAt"`
	DurationMS    int64          `json:"durationMs"`
}

// SyncService reconciles a fetched snapshot of liked tracks against the local
// mirror. One call equals one transaction: either the mirror moves to the new
// snapshot in full or it stays exactly where it was.
type SyncService struct {
	transaction    *TransactionService
	artistRepo     repositories.ArtistRepository
	genreRepo      repositories.GenreRepository
	albumRepo      repositories.AlbumRepository
	trackRepo      repositories.TrackRepository
	syncRunRepo    repositories.SyncRunRepository
	classifier     *GenreClassifier
	log            logger.Logger
}

func NewSyncService(
	transaction *TransactionService,
	repo *repositories.Repository,
	classifier *GenreClassifier,
) *SyncService {
	return &SyncService{
		transaction: transaction,
		artistRepo:  repo.Artist,
		genreRepo:   repo.Genre,
		albumRepo:   repo.Album,
		trackRepo:   repo.Track,
		syncRunRepo: repo.SyncRun,
		classifier:  classifier,
		log:         logger.New("syncService"),
	}
}

// Sync applies the snapshot for one user. savedTracks is the full fetched
// library; artistDetails maps artist Spotify IDs to their full objects (IDs
// whose detail batch failed are simply absent). When prune is true, tracks
// missing from the snapshot are deleted from the mirror.
func (s *SyncService) Sync(
	ctx context.Context,
	userID string,
	savedTracks []SpotifySavedTrack,
	artistDetails map[string]SpotifyArtist,
	prune bool,
) (*SyncReport, error) {
	log := s.log.Function("Sync")
	startedAt := time.Now()

	valid, skipped := partitionTracks(savedTracks)

	report := &SyncReport{
		TracksFetched: len(savedTracks),
		Pruned:        prune,
		Skipped:       skipped,
		StartedAt:     startedAt,
	}

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		artists, err := s.materializeArtists(ctx, tx, valid, artistDetails)
		if err != nil {
			return err
		}
		report.ArtistsSynced = len(artists)

		keepIDs := make([]string, 0, len(valid))
		for _, item := range valid {
			if err := s.materializeTrack(ctx, tx, userID, item.Track, artists); err != nil {
				return err
			}
			keepIDs = append(keepIDs, item.Track.ID)
		}
		report.TracksSynced = len(keepIDs)

		if prune {
			deleted, err := s.trackRepo.DeleteAbsentForUser(ctx, tx, userID, keepIDs)
			if err != nil {
				return err
			}
			report.TracksDeleted = deleted
		}

		report.DurationMS = time.Since(startedAt).Milliseconds()
		return s.recordRun(ctx, tx, userID, report)
	})
	if err != nil {
		return nil, log.Err("sync failed, mirror unchanged", err, "userID", userID)
	}

	log.Info("Sync completed",
		"userID", userID,
		"fetched", report.TracksFetched,
		"synced", report.TracksSynced,
		"deleted", report.TracksDeleted,
		"skipped", len(report.Skipped),
		"durationMs", report.DurationMS,
	)

	return report, nil
}

// partitionTracks separates syncable tracks from those missing a critical
// field. Skipped tracks are reported, never persisted, and count as absent
// for pruning purposes.
func partitionTracks(savedTracks []SpotifySavedTrack) ([]SpotifySavedTrack, []SkippedTrack) {
	var valid []SpotifySavedTrack
	var skipped []SkippedTrack

	for _, item := range savedTracks {
		track := item.Track
		if track == nil || track.ID == "" {
			skipped = append(skipped, SkippedTrack{Reason: "missing track data"})
			continue
		}
		if reason := criticalFieldMissing(track); reason != "" {
			skipped = append(skipped, SkippedTrack{
				SpotifyID: track.ID,
				Title:     track.Name,
				Reason:    reason,
			})
			continue
		}
		valid = append(valid, item)
	}

	return valid, skipped
}

func criticalFieldMissing(track *SpotifyTrack) string {
	switch {
	case track.Name == "":
		return "missing title"
	case track.Album == nil || track.Album.ID == "":
		return "missing album"
	case track.Album.Name == "":
		return "missing album name"
	case len(track.Album.Images) == 0 || track.Album.Images[0].URL == "":
		return "missing album image"
	case len(track.Artists) == 0:
		return "missing artists"
	}

	for _, stub := range track.Artists {
		if stub.ID == "" || stub.Name == "" {
			return "missing artist identity"
		}
	}

	return ""
}

// materializeArtists upserts every artist referenced by the valid tracks and
// rebuilds the genre graph for those with full details. Artists whose detail
// lookup failed fall back to the embedded stub name with their existing genre
// links left untouched; the repair job picks them up later.
func (s *SyncService) materializeArtists(
	ctx context.Context,
	tx *gorm.DB,
	valid []SpotifySavedTrack,
	artistDetails map[string]SpotifyArtist,
) (map[string]*Artist, error) {
	stubNames := make(map[string]string)
	for _, item := range valid {
		for _, stub := range item.Track.Artists {
			stubNames[stub.ID] = stub.Name
		}
	}

	specificCache := make(map[string]*SpecificGenre)
	broadCache := make(map[string]*BroadGenre)
	artists := make(map[string]*Artist, len(stubNames))

	for spotifyID, stubName := range stubNames {
		detail, hasDetail := artistDetails[spotifyID]

		name := stubName
		if hasDetail && detail.Name != "" {
			name = detail.Name
		}

		artist, err := s.artistRepo.UpsertBySpotifyID(ctx, tx, spotifyID, name)
		if err != nil {
			return nil, err
		}
		artists[spotifyID] = artist

		if !hasDetail {
			continue
		}

		specifics, err := s.materializeGenres(ctx, tx, detail.Genres, specificCache, broadCache)
		if err != nil {
			return nil, err
		}
		if err := s.artistRepo.ReplaceGenres(ctx, tx, artist, specifics); err != nil {
			return nil, err
		}
	}

	return artists, nil
}

// materializeGenres resolves the specific genre rows for an artist and wires
// each into its broad categories per the classifier.
func (s *SyncService) materializeGenres(
	ctx context.Context,
	tx *gorm.DB,
	genreNames []string,
	specificCache map[string]*SpecificGenre,
	broadCache map[string]*BroadGenre,
) ([]*SpecificGenre, error) {
	specifics := make([]*SpecificGenre, 0, len(genreNames))

	for _, name := range genreNames {
		if name == "" {
			continue
		}

		specific, cached := specificCache[name]
		if !cached {
			created, err := s.genreRepo.FindOrCreateSpecific(ctx, tx, name)
			if err != nil {
				return nil, err
			}

			broads := make([]*BroadGenre, 0, 2)
			for _, broadName := range s.classifier.Classify([]string{name}) {
				broad, ok := broadCache[broadName]
				if !ok {
					broad, err = s.genreRepo.FindOrCreateBroad(ctx, tx, broadName)
					if err != nil {
						return nil, err
					}
					broadCache[broadName] = broad
				}
				broads = append(broads, broad)
			}

			if err := s.genreRepo.ReplaceBroadGenres(ctx, tx, created, broads); err != nil {
				return nil, err
			}

			specificCache[name] = created
			specific = created
		}

		specifics = append(specifics, specific)
	}

	return specifics, nil
}

// materializeTrack upserts the album and track rows, then rebuilds the
// track's artist links in snapshot order.
func (s *SyncService) materializeTrack(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	remote *SpotifyTrack,
	artists map[string]*Artist,
) error {
	log := s.log.Function("materializeTrack")

	imageURL := remote.Album.Images[0].URL
	album, err := s.albumRepo.UpsertBySpotifyID(ctx, tx, remote.Album.ID, remote.Album.Name, &imageURL)
	if err != nil {
		return err
	}

	track, err := s.trackRepo.UpsertForUser(ctx, tx, &Track{
		SpotifyID:  remote.ID,
		UserID:     userID,
		Title:      remote.Name,
		PreviewURL: remote.PreviewURL,
		AlbumID:    album.ID,
	})
	if err != nil {
		return err
	}

	linked := make([]*Artist, 0, len(remote.Artists))
	for _, stub := range remote.Artists {
		artist, ok := artists[stub.ID]
		if !ok {
			return log.Error("artist missing from materialized set",
				"artistID", stub.ID, "trackID", remote.ID)
		}
		linked = append(linked, artist)
	}

	return s.trackRepo.ReplaceArtists(ctx, tx, track, linked)
}

// RebuildArtistGenres installs fresh genre graphs for artists whose details
// resolved, in one transaction. Artists absent from details are left alone.
// Returns the number of artists whose links were rebuilt.
func (s *SyncService) RebuildArtistGenres(
	ctx context.Context,
	artists []*Artist,
	artistDetails map[string]SpotifyArtist,
) (int, error) {
	repaired := 0

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		specificCache := make(map[string]*SpecificGenre)
		broadCache := make(map[string]*BroadGenre)

		for _, artist := range artists {
			detail, ok := artistDetails[artist.SpotifyID]
			if !ok || len(detail.Genres) == 0 {
				continue
			}

			specifics, err := s.materializeGenres(ctx, tx, detail.Genres, specificCache, broadCache)
			if err != nil {
				return err
			}
			if err := s.artistRepo.ReplaceGenres(ctx, tx, artist, specifics); err != nil {
				return err
			}
			repaired++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return repaired, nil
}

func (s *SyncService) recordRun(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	report *SyncReport,
) error {
	log := s.log.Function("recordRun")

	var skippedJSON datatypes.JSON
	if len(report.Skipped) > 0 {
		encoded, err := json.Marshal(report.Skipped)
		if err != nil {
			return log.Err("failed to encode skipped tracks", err)
		}
		skippedJSON = encoded
	}

	return s.syncRunRepo.Create(ctx, tx, &SyncRun{
		UserID:        userID,
		TracksFetched: report.TracksFetched,
		TracksSynced:  report.TracksSynced,
		TracksDeleted: int(report.TracksDeleted),
		ArtistsSynced: report.ArtistsSynced,
		Pruned:        report.Pruned,
		Skipped:       skippedJSON,
		StartedAt:     report.StartedAt,
		DurationMS:    report.DurationMS,
	})
}
