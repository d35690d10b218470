package services

import (
	"context"
	"errors"

	"echosorter/internal/logger"
	"echosorter/internal/repositories"
)

// GenreRepairService backfills genre links for artists whose detail fetch
// failed during a past sync. One user's failure never blocks the rest.
type GenreRepairService struct {
	auth           *SpotifyAuthService
	sync           *SyncService
	credentialRepo repositories.CredentialRepository
	artistRepo     repositories.ArtistRepository
	log            logger.Logger
}

func NewGenreRepairService(
	auth *SpotifyAuthService,
	sync *SyncService,
	repos *repositories.Repository,
) *GenreRepairService {
	return &GenreRepairService{
		auth:           auth,
		sync:           sync,
		credentialRepo: repos.Credential,
		artistRepo:     repos.Artist,
		log:            logger.New("genreRepairService"),
	}
}

// RepairAllUsers walks every stored credential and rebuilds the genre graph
// for that user's genre-less artists. Users whose token cannot be refreshed
// are skipped; detail batch failures are tolerated inside the fetch.
func (s *GenreRepairService) RepairAllUsers(ctx context.Context) error {
	log := s.log.Function("RepairAllUsers")

	credentials, err := s.credentialRepo.GetAll(ctx)
	if err != nil {
		return log.Err("failed to list credentials", err)
	}

	for _, credential := range credentials {
		if err := s.repairUser(ctx, credential.UserID); err != nil {
			if errors.Is(err, ErrNotAuthenticated) {
				log.Warn("Skipping user without valid credential", "userID", credential.UserID)
				continue
			}
			log.Warn("Genre repair failed for user", "userID", credential.UserID, "error", err)
		}
	}

	return nil
}

func (s *GenreRepairService) repairUser(ctx context.Context, userID string) error {
	log := s.log.Function("repairUser")

	artists, err := s.artistRepo.GetWithoutGenresForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(artists) == 0 {
		return nil
	}

	client, err := s.auth.GetValidClient(ctx, userID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(artists))
	for _, artist := range artists {
		ids = append(ids, artist.SpotifyID)
	}

	details, err := client.FetchArtistDetails(ctx, ids)
	if err != nil {
		if errors.Is(err, ErrAuthExpired) {
			if purgeErr := s.auth.PurgeCredential(ctx, userID); purgeErr != nil {
				log.Warn("Failed to purge credential after 401", "userID", userID, "error", purgeErr)
			}
			return ErrNotAuthenticated
		}
		return err
	}

	repaired, err := s.sync.RebuildArtistGenres(ctx, artists, details)
	if err != nil {
		return err
	}

	log.Info("Repaired artist genres", "userID", userID,
		"candidates", len(artists), "repaired", repaired)

	return nil
}
