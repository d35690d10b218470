package models

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// SpecificGenre is a fine-grained genre label stored verbatim as returned by
// Spotify (free-form, no fixed enum).
type SpecificGenre struct {
	BaseModel
	Name string `gorm:"type:text;not null;uniqueIndex:idx_specific_genres_name" json:"name"`

	BroadGenres []*BroadGenre `gorm:"many2many:specific_genre_broad_genres;" json:"broadGenres,omitempty"`
	Artists     []*Artist     `gorm:"many2many:artist_specific_genres;"      json:"artists,omitempty"`
}

func (g *SpecificGenre) BeforeSave(tx *gorm.DB) error {
	g.Name = cleanGenreName(g.Name)
	return nil
}

// BroadGenre is a coarse category. Rows are only ever produced through the
// static classification table, never taken from the external service.
type BroadGenre struct {
	BaseModel
	Name      string `gorm:"type:text;not null;uniqueIndex:idx_broad_genres_name" json:"name"`
	NameLower string `gorm:"type:text;not null;index:idx_broad_genres_name_lower" json:"nameLower"`

	SpecificGenres []*SpecificGenre `gorm:"many2many:specific_genre_broad_genres;" json:"specificGenres,omitempty"`
}

func (g *BroadGenre) BeforeSave(tx *gorm.DB) error {
	g.Name = cleanGenreName(g.Name)
	g.NameLower = strings.ToLower(g.Name)
	return nil
}

func cleanGenreName(name string) string {
	if !utf8.ValidString(name) || strings.Contains(name, "\x00") {
		name = strings.ToValidUTF8(strings.ReplaceAll(name, "\x00", ""), "")
	}
	return strings.TrimSpace(name)
}
