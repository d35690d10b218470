package services

import (
	"echosorter/config"
	"echosorter/internal/database"
	"echosorter/internal/repositories"
)

type Service struct {
	SpotifyAuth    *SpotifyAuthService
	Session        *SessionService
	Transaction    *TransactionService
	Sync           *SyncService
	Library        *LibraryService
	PlaylistExport *PlaylistExportService
	GenreRepair    *GenreRepairService
	Scheduler      *SchedulerService
	Classifier     *GenreClassifier
}

func New(db database.DB, config config.Config, repos *repositories.Repository) Service {
	transactionService := NewTransactionService(db)
	classifier := NewGenreClassifier()

	spotifyAuthService := NewSpotifyAuthService(config, repos.Credential, db)
	sessionService := NewSessionService(config)
	syncService := NewSyncService(transactionService, repos, classifier)
	libraryService := NewLibraryService(repos, classifier)
	playlistExportService := NewPlaylistExportService(spotifyAuthService, repos)
	genreRepairService := NewGenreRepairService(spotifyAuthService, syncService, repos)
	schedulerService := NewSchedulerService()

	return Service{
		SpotifyAuth:    spotifyAuthService,
		Session:        sessionService,
		Transaction:    transactionService,
		Sync:           syncService,
		Library:        libraryService,
		PlaylistExport: playlistExportService,
		GenreRepair:    genreRepairService,
		Scheduler:      schedulerService,
		Classifier:     classifier,
	}
}
