package models

import "gorm.io/gorm"

// Track is the local mirror of one liked track. Unlike artists and albums,
// tracks partition by the owning user so two users liking the same track keep
// independent rows; the unique key is (spotify_id, user_id).
type Track struct {
	BaseModel
	SpotifyID  string  `gorm:"type:text;not null;uniqueIndex:idx_tracks_spotify_user,priority:1" json:"spotifyId"`
	UserID     string  `gorm:"type:text;not null;uniqueIndex:idx_tracks_spotify_user,priority:2;index:idx_tracks_user" json:"userId"`
	Title      string  `gorm:"type:text;not null" json:"title"`
	PreviewURL *string `gorm:"type:text"          json:"previewUrl,omitempty"`
	AlbumID    int     `gorm:"type:int;not null;index:idx_tracks_album" json:"albumId"`

	Album   *Album    `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"album,omitempty"`
	Artists []*Artist `gorm:"many2many:track_artists;"                       json:"artists,omitempty"`
}

func (t *Track) BeforeCreate(tx *gorm.DB) error {
	if t.SpotifyID == "" || t.UserID == "" {
		return gorm.ErrInvalidValue
	}
	if t.Title == "" {
		return gorm.ErrInvalidValue
	}
	if t.AlbumID <= 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}

// TrackView is the read shape for listing liked tracks: flattened names plus
// the broad-genre set derived on read from the artists' specific genres.
type TrackView struct {
	SpotifyID   string   `json:"spotifyId"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	PreviewURL  string   `json:"previewUrl,omitempty"`
	BroadGenres []string `json:"broadGenres"`
}
