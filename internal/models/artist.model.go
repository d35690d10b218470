package models

type Artist struct {
	BaseModel
	SpotifyID string `gorm:"type:text;not null;uniqueIndex:idx_artists_spotify_id" json:"spotifyId"`
	Name      string `gorm:"type:text;not null"                                    json:"name"`

	// Specific genres as reported by Spotify for this artist. Cleared and
	// rebuilt on every sync pass so stale links never survive.
	Genres []*SpecificGenre `gorm:"many2many:artist_specific_genres;" json:"genres,omitempty"`

	Tracks []*Track `gorm:"many2many:track_artists;" json:"tracks,omitempty"`
}
