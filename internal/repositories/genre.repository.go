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

type GenreRepository interface {
	FindOrCreateSpecific(ctx context.Context, tx *gorm.DB, name string) (*SpecificGenre, error)
	FindOrCreateBroad(ctx context.Context, tx *gorm.DB, name string) (*BroadGenre, error)
	ReplaceBroadGenres(ctx context.Context, tx *gorm.DB, specific *SpecificGenre, broads []*BroadGenre) error
	GetAllBroad(ctx context.Context) ([]*BroadGenre, error)
}

type genreRepository struct {
	db  database.DB
	log logger.Logger
}

func NewGenreRepository(db database.DB) GenreRepository {
	return &genreRepository{
		db:  db,
		log: logger.New("genreRepository"),
	}
}

func (r *genreRepository) FindOrCreateSpecific(
	ctx context.Context,
	tx *gorm.DB,
	name string,
) (*SpecificGenre, error) {
	log := r.log.Function("FindOrCreateSpecific")

	if name == "" {
		return nil, log.Error("specific genre name cannot be empty")
	}

	genre := &SpecificGenre{Name: name}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(genre).Error
	if err != nil {
		return nil, log.Err("failed to create specific genre", err, "name", name)
	}

	if genre.ID != 0 {
		return genre, nil
	}

	var existing SpecificGenre
	if err := tx.WithContext(ctx).First(&existing, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.Error("specific genre vanished after upsert", "name", name)
		}
		return nil, log.Err("failed to get specific genre", err, "name", name)
	}

	return &existing, nil
}

func (r *genreRepository) FindOrCreateBroad(
	ctx context.Context,
	tx *gorm.DB,
	name string,
) (*BroadGenre, error) {
	log := r.log.Function("FindOrCreateBroad")

	if name == "" {
		return nil, log.Error("broad genre name cannot be empty")
	}

	genre := &BroadGenre{Name: name}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(genre).Error
	if err != nil {
		return nil, log.Err("failed to create broad genre", err, "name", name)
	}

	if genre.ID != 0 {
		return genre, nil
	}

	var existing BroadGenre
	if err := tx.WithContext(ctx).First(&existing, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.Error("broad genre vanished after upsert", "name", name)
		}
		return nil, log.Err("failed to get broad genre", err, "name", name)
	}

	return &existing, nil
}

// ReplaceBroadGenres installs the classifier's complete broad-genre set for a
// specific genre. The classifier output is deterministic for a given name, so
// replacing keeps links aligned when the static table changes between runs.
func (r *genreRepository) ReplaceBroadGenres(
	ctx context.Context,
	tx *gorm.DB,
	specific *SpecificGenre,
	broads []*BroadGenre,
) error {
	log := r.log.Function("ReplaceBroadGenres")

	assoc := tx.WithContext(ctx).Model(specific).Association("BroadGenres")
	if len(broads) == 0 {
		if err := assoc.Clear(); err != nil {
			return log.Err("failed to clear broad genre links", err, "name", specific.Name)
		}
		return nil
	}

	if err := assoc.Replace(broads); err != nil {
		return log.Err("failed to replace broad genre links", err,
			"name", specific.Name, "count", len(broads))
	}

	return nil
}

func (r *genreRepository) GetAllBroad(ctx context.Context) ([]*BroadGenre, error) {
	log := r.log.Function("GetAllBroad")

	var genres []*BroadGenre
	if err := r.db.SQLWithContext(ctx).Order("name").Find(&genres).Error; err != nil {
		return nil, log.Err("failed to get broad genres", err)
	}

	return genres, nil
}
