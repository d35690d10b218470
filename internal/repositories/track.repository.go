package repositories

import (
	"context"
	"errors"

	"echosorter/internal/database"
	"echosorter/internal/logger"
	. "echosorter/internal/models"

	"gorm.io/gorm"
)

type TrackRepository interface {
	GetForUser(ctx context.Context, tx *gorm.DB, userID, spotifyID string) (*Track, error)
	UpsertForUser(ctx context.Context, tx *gorm.DB, track *Track) (*Track, error)
	ReplaceArtists(ctx context.Context, tx *gorm.DB, track *Track, artists []*Artist) error
	DeleteAbsentForUser(ctx context.Context, tx *gorm.DB, userID string, keepSpotifyIDs []string) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]*Track, error)
	ListForUserByBroadGenre(ctx context.Context, userID, broadGenre string) ([]*Track, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
}

type trackRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTrackRepository(db database.DB) TrackRepository {
	return &trackRepository{
		db:  db,
		log: logger.New("trackRepository"),
	}
}

func (r *trackRepository) GetForUser(
	ctx context.Context,
	tx *gorm.DB,
	userID, spotifyID string,
) (*Track, error) {
	log := r.log.Function("GetForUser")

	var track Track
	err := tx.WithContext(ctx).
		First(&track, "user_id = ? AND spotify_id = ?", userID, spotifyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get track", err, "userID", userID, "spotifyID", spotifyID)
	}

	return &track, nil
}

// UpsertForUser creates the track or patches only the fields that changed
// (title, album reference, preview URL). The (spotify_id, user_id) pair is
// the upsert key.
func (r *trackRepository) UpsertForUser(
	ctx context.Context,
	tx *gorm.DB,
	track *Track,
) (*Track, error) {
	log := r.log.Function("UpsertForUser")

	existing, err := r.GetForUser(ctx, tx, track.UserID, track.SpotifyID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := tx.WithContext(ctx).Omit("Artists", "Album").Create(track).Error; err != nil {
			return nil, log.Err("failed to create track", err,
				"userID", track.UserID, "spotifyID", track.SpotifyID)
		}
		return track, nil
	}

	updates := map[string]any{}
	if existing.Title != track.Title {
		updates["title"] = track.Title
	}
	if existing.AlbumID != track.AlbumID {
		updates["album_id"] = track.AlbumID
	}
	if !stringPtrEqual(existing.PreviewURL, track.PreviewURL) {
		updates["preview_url"] = track.PreviewURL
	}
	if len(updates) > 0 {
		if err := tx.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
			return nil, log.Err("failed to patch track", err,
				"userID", track.UserID, "spotifyID", track.SpotifyID)
		}
		existing.Title = track.Title
		existing.AlbumID = track.AlbumID
		existing.PreviewURL = track.PreviewURL
	}

	return existing, nil
}

// ReplaceArtists clears and rebuilds the track's artist links.
func (r *trackRepository) ReplaceArtists(
	ctx context.Context,
	tx *gorm.DB,
	track *Track,
	artists []*Artist,
) error {
	log := r.log.Function("ReplaceArtists")

	if err := tx.WithContext(ctx).Model(track).Association("Artists").Replace(artists); err != nil {
		return log.Err("failed to replace track artists", err,
			"spotifyID", track.SpotifyID, "count", len(artists))
	}

	return nil
}

// DeleteAbsentForUser removes the user's tracks whose Spotify IDs were not
// touched this run, along with their artist links. This is how unlikes and
// invalid tracks leave the mirror.
func (r *trackRepository) DeleteAbsentForUser(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	keepSpotifyIDs []string,
) (int64, error) {
	log := r.log.Function("DeleteAbsentForUser")

	query := tx.WithContext(ctx).Where("user_id = ?", userID)
	if len(keepSpotifyIDs) > 0 {
		query = query.Where("spotify_id NOT IN ?", keepSpotifyIDs)
	}

	var stale []*Track
	if err := query.Find(&stale).Error; err != nil {
		return 0, log.Err("failed to find stale tracks", err, "userID", userID)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	for _, track := range stale {
		if err := tx.WithContext(ctx).Model(track).Association("Artists").Clear(); err != nil {
			return 0, log.Err("failed to clear artist links for stale track", err,
				"spotifyID", track.SpotifyID)
		}
	}

	result := tx.WithContext(ctx).Delete(&stale)
	if result.Error != nil {
		return 0, log.Err("failed to delete stale tracks", result.Error, "userID", userID)
	}

	log.Info("Deleted stale tracks", "userID", userID, "count", result.RowsAffected)
	return result.RowsAffected, nil
}

func (r *trackRepository) ListForUser(ctx context.Context, userID string) ([]*Track, error) {
	log := r.log.Function("ListForUser")

	var tracks []*Track
	err := r.db.SQLWithContext(ctx).
		Preload("Album").
		Preload("Artists").
		Preload("Artists.Genres").
		Where("user_id = ?", userID).
		Order("title").
		Find(&tracks).Error
	if err != nil {
		return nil, log.Err("failed to list tracks", err, "userID", userID)
	}

	return tracks, nil
}

// ListForUserByBroadGenre traverses the link chain
// track -> artist -> specific genre -> broad genre with a case-insensitive
// match on the broad genre name. Tracks reachable through several artists
// appear once.
func (r *trackRepository) ListForUserByBroadGenre(
	ctx context.Context,
	userID, broadGenre string,
) ([]*Track, error) {
	log := r.log.Function("ListForUserByBroadGenre")

	var tracks []*Track
	err := r.db.SQLWithContext(ctx).
		Distinct("tracks.*").
		Joins("JOIN track_artists ON track_artists.track_id = tracks.id").
		Joins("JOIN artist_specific_genres ON artist_specific_genres.artist_id = track_artists.artist_id").
		Joins("JOIN specific_genre_broad_genres ON specific_genre_broad_genres.specific_genre_id = artist_specific_genres.specific_genre_id").
		Joins("JOIN broad_genres ON broad_genres.id = specific_genre_broad_genres.broad_genre_id").
		Where("tracks.user_id = ?", userID).
		Where("broad_genres.name_lower = LOWER(?)", broadGenre).
		Find(&tracks).Error
	if err != nil {
		return nil, log.Err("failed to list tracks by broad genre", err,
			"userID", userID, "genre", broadGenre)
	}

	return tracks, nil
}

func (r *trackRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	log := r.log.Function("CountForUser")

	var count int64
	err := r.db.SQLWithContext(ctx).Model(&Track{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count tracks", err, "userID", userID)
	}

	return count, nil
}
