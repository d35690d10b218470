package models

import "time"

// Credential is the single source of truth for a user's Spotify token state.
// One row per external user identity, mutated in place on refresh.
type Credential struct {
	BaseModel
	UserID       string    `gorm:"type:text;not null;uniqueIndex:idx_credentials_user" json:"userId"`
	AccessToken  string    `gorm:"type:text;not null"                                  json:"-"`
	RefreshToken string    `gorm:"type:text;not null"                                  json:"-"`
	ExpiresAt    time.Time `gorm:"not null"                                            json:"expiresAt"`
}

// Expired reports whether the access token needs a refresh before use.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
