package models

// Album rows are deduplicated globally by Spotify ID; the same album liked by
// two users is stored once and shared.
type Album struct {
	BaseModel
	SpotifyID string  `gorm:"type:text;not null;uniqueIndex:idx_albums_spotify_id" json:"spotifyId"`
	Name      string  `gorm:"type:text;not null"                                   json:"name"`
	ImageURL  *string `gorm:"type:text"                                            json:"imageUrl,omitempty"`

	Tracks []*Track `gorm:"foreignKey:AlbumID" json:"tracks,omitempty"`
}
