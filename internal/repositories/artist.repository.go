package repositories

import (
	"context"
	"errors"

	"echosorter/internal/database"
	"echosorter/internal/logger"
	. "echosorter/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArtistRepository interface {
	GetBySpotifyID(ctx context.Context, tx *gorm.DB, spotifyID string) (*Artist, error)
	GetBatchBySpotifyIDs(ctx context.Context, tx *gorm.DB, spotifyIDs []string) (map[string]*Artist, error)
	UpsertBySpotifyID(ctx context.Context, tx *gorm.DB, spotifyID, name string) (*Artist, error)
	ReplaceGenres(ctx context.Context, tx *gorm.DB, artist *Artist, genres []*SpecificGenre) error
	GetWithoutGenresForUser(ctx context.Context, userID string) ([]*Artist, error)
}

type artistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewArtistRepository(db database.DB) ArtistRepository {
	return &artistRepository{
		db:  db,
		log: logger.New("artistRepository"),
	}
}

func (r *artistRepository) GetBySpotifyID(
	ctx context.Context,
	tx *gorm.DB,
	spotifyID string,
) (*Artist, error) {
	log := r.log.Function("GetBySpotifyID")

	var artist Artist
	if err := tx.WithContext(ctx).First(&artist, "spotify_id = ?", spotifyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get artist by Spotify ID", err, "spotifyID", spotifyID)
	}

	return &artist, nil
}

func (r *artistRepository) GetBatchBySpotifyIDs(
	ctx context.Context,
	tx *gorm.DB,
	spotifyIDs []string,
) (map[string]*Artist, error) {
	log := r.log.Function("GetBatchBySpotifyIDs")

	if len(spotifyIDs) == 0 {
		return make(map[string]*Artist), nil
	}

	var artists []*Artist
	if err := tx.WithContext(ctx).Where("spotify_id IN ?", spotifyIDs).Find(&artists).Error; err != nil {
		return nil, log.Err("failed to get artists by Spotify IDs", err, "count", len(spotifyIDs))
	}

	result := make(map[string]*Artist, len(artists))
	for _, artist := range artists {
		result[artist.SpotifyID] = artist
	}

	return result, nil
}

// UpsertBySpotifyID creates the artist if missing and renames it if the
// display name changed. ON CONFLICT DO NOTHING plus a re-fetch keeps
// concurrent syncs writing the same artist from producing two rows.
func (r *artistRepository) UpsertBySpotifyID(
	ctx context.Context,
	tx *gorm.DB,
	spotifyID, name string,
) (*Artist, error) {
	log := r.log.Function("UpsertBySpotifyID")

	if spotifyID == "" || name == "" {
		return nil, log.Error(
			"artist spotifyID and name cannot be empty",
			"spotifyID", spotifyID,
			"name", name,
		)
	}

	artist := &Artist{SpotifyID: spotifyID, Name: name}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spotify_id"}},
		DoNothing: true,
	}).Create(artist).Error
	if err != nil {
		return nil, log.Err("failed to create artist", err, "spotifyID", spotifyID)
	}

	if artist.ID != 0 {
		return artist, nil
	}

	// Conflict path: the row already existed, fetch it and patch the name.
	existing, err := r.GetBySpotifyID(ctx, tx, spotifyID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, log.Error("artist vanished after upsert", "spotifyID", spotifyID)
	}

	if existing.Name != name {
		existing.Name = name
		if err := tx.WithContext(ctx).Model(existing).Update("name", name).Error; err != nil {
			return nil, log.Err("failed to rename artist", err, "spotifyID", spotifyID)
		}
	}

	return existing, nil
}

// ReplaceGenres clears the artist's specific-genre links and installs the new
// set, so no link referencing a remotely removed genre survives the pass.
func (r *artistRepository) ReplaceGenres(
	ctx context.Context,
	tx *gorm.DB,
	artist *Artist,
	genres []*SpecificGenre,
) error {
	log := r.log.Function("ReplaceGenres")

	assoc := tx.WithContext(ctx).Model(artist).Association("Genres")
	if len(genres) == 0 {
		if err := assoc.Clear(); err != nil {
			return log.Err("failed to clear artist genres", err, "spotifyID", artist.SpotifyID)
		}
		return nil
	}

	if err := assoc.Replace(genres); err != nil {
		return log.Err("failed to replace artist genres", err,
			"spotifyID", artist.SpotifyID, "count", len(genres))
	}

	return nil
}

// GetWithoutGenresForUser returns artists linked to the user's tracks that
// carry no specific-genre links, typically because their detail batch failed
// during a past sync. The genre repair job feeds on this.
func (r *artistRepository) GetWithoutGenresForUser(
	ctx context.Context,
	userID string,
) ([]*Artist, error) {
	log := r.log.Function("GetWithoutGenresForUser")

	var artists []*Artist
	err := r.db.SQLWithContext(ctx).
		Distinct("artists.*").
		Joins("JOIN track_artists ON track_artists.artist_id = artists.id").
		Joins("JOIN tracks ON tracks.id = track_artists.track_id AND tracks.user_id = ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM artist_specific_genres asg WHERE asg.artist_id = artists.id)").
		Find(&artists).Error
	if err != nil {
		return nil, log.Err("failed to get artists without genres", err, "userID", userID)
	}

	return artists, nil
}
