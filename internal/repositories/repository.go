package repositories

import (
	"echosorter/internal/database"
)

type Repository struct {
	Credential CredentialRepository
	Artist     ArtistRepository
	Genre      GenreRepository
	Album      AlbumRepository
	Track      TrackRepository
	SyncRun    SyncRunRepository
}

func New(db database.DB) Repository {
	return Repository{
		Credential: NewCredentialRepository(db),
		Artist:     NewArtistRepository(db),
		Genre:      NewGenreRepository(db),
		Album:      NewAlbumRepository(db),
		Track:      NewTrackRepository(db),
		SyncRun:    NewSyncRunRepository(db),
	}
}
