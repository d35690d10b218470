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

type AlbumRepository interface {
	GetBySpotifyID(ctx context.Context, tx *gorm.DB, spotifyID string) (*Album, error)
	UpsertBySpotifyID(ctx context.Context, tx *gorm.DB, spotifyID, name string, imageURL *string) (*Album, error)
}

type albumRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAlbumRepository(db database.DB) AlbumRepository {
	return &albumRepository{
		db:  db,
		log: logger.New("albumRepository"),
	}
}

func (r *albumRepository) GetBySpotifyID(
	ctx context.Context,
	tx *gorm.DB,
	spotifyID string,
) (*Album, error) {
	log := r.log.Function("GetBySpotifyID")

	var album Album
	if err := tx.WithContext(ctx).First(&album, "spotify_id = ?", spotifyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get album by Spotify ID", err, "spotifyID", spotifyID)
	}

	return &album, nil
}

// UpsertBySpotifyID creates the album or patches only the fields that changed.
func (r *albumRepository) UpsertBySpotifyID(
	ctx context.Context,
	tx *gorm.DB,
	spotifyID, name string,
	imageURL *string,
) (*Album, error) {
	log := r.log.Function("UpsertBySpotifyID")

	if spotifyID == "" || name == "" {
		return nil, log.Error(
			"album spotifyID and name cannot be empty",
			"spotifyID", spotifyID,
			"name", name,
		)
	}

	album := &Album{SpotifyID: spotifyID, Name: name, ImageURL: imageURL}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spotify_id"}},
		DoNothing: true,
	}).Create(album).Error
	if err != nil {
		return nil, log.Err("failed to create album", err, "spotifyID", spotifyID)
	}

	if album.ID != 0 {
		return album, nil
	}

	existing, err := r.GetBySpotifyID(ctx, tx, spotifyID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, log.Error("album vanished after upsert", "spotifyID", spotifyID)
	}

	updates := map[string]any{}
	if existing.Name != name {
		updates["name"] = name
	}
	if !stringPtrEqual(existing.ImageURL, imageURL) {
		updates["image_url"] = imageURL
	}
	if len(updates) > 0 {
		if err := tx.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
			return nil, log.Err("failed to patch album", err, "spotifyID", spotifyID)
		}
		existing.Name = name
		existing.ImageURL = imageURL
	}

	return existing, nil
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
