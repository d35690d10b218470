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

type CredentialRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Credential, error)
	GetAll(ctx context.Context) ([]*Credential, error)
	Upsert(ctx context.Context, credential *Credential) error
	Update(ctx context.Context, credential *Credential) error
	Delete(ctx context.Context, userID string) error
}

type credentialRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCredentialRepository(db database.DB) CredentialRepository {
	return &credentialRepository{
		db:  db,
		log: logger.New("credentialRepository"),
	}
}

func (r *credentialRepository) GetByUserID(ctx context.Context, userID string) (*Credential, error) {
	log := r.log.Function("GetByUserID")

	var credential Credential
	if err := r.db.SQLWithContext(ctx).First(&credential, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get credential by user ID", err, "userID", userID)
	}

	return &credential, nil
}

func (r *credentialRepository) GetAll(ctx context.Context) ([]*Credential, error) {
	log := r.log.Function("GetAll")

	var credentials []*Credential
	if err := r.db.SQLWithContext(ctx).Find(&credentials).Error; err != nil {
		return nil, log.Err("failed to get all credentials", err)
	}

	return credentials, nil
}

// Upsert creates or replaces the token state for the credential's user.
// Concurrent authorizations for the same user serialize on the unique index.
func (r *credentialRepository) Upsert(ctx context.Context, credential *Credential) error {
	log := r.log.Function("Upsert")

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"access_token", "refresh_token", "expires_at", "updated_at"},
		),
	}).Create(credential).Error
	if err != nil {
		return log.Err("failed to upsert credential", err, "userID", credential.UserID)
	}

	return nil
}

func (r *credentialRepository) Update(ctx context.Context, credential *Credential) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(credential).Error; err != nil {
		return log.Err("failed to update credential", err, "userID", credential.UserID)
	}

	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, userID string) error {
	log := r.log.Function("Delete")

	if err := r.db.SQLWithContext(ctx).Delete(&Credential{}, "user_id = ?", userID).Error; err != nil {
		return log.Err("failed to delete credential", err, "userID", userID)
	}

	return nil
}
