package services

import (
	"sort"
	"strings"
)

// GenreClassifier maps specific Spotify genre labels to broad categories via
// the static table. Pure: no I/O, no store access, never errors.
type GenreClassifier struct {
	// specificToBroad inverts broadGenreTable for O(1) lookups.
	specificToBroad map[string][]string
}

func NewGenreClassifier() *GenreClassifier {
	index := make(map[string][]string)
	for broad, specifics := range broadGenreTable {
		for _, specific := range specifics {
			key := strings.ToLower(specific)
			index[key] = append(index[key], broad)
		}
	}
	return &GenreClassifier{specificToBroad: index}
}

// Classify returns the sorted, deduplicated union of broad categories for the
// given specific genre names. Unknown names contribute nothing; empty input
// yields an empty result.
func (c *GenreClassifier) Classify(specificGenres []string) []string {
	seen := make(map[string]struct{})
	for _, specific := range specificGenres {
		for _, broad := range c.specificToBroad[strings.ToLower(strings.TrimSpace(specific))] {
			seen[broad] = struct{}{}
		}
	}

	broads := make([]string, 0, len(seen))
	for broad := range seen {
		broads = append(broads, broad)
	}
	sort.Strings(broads)

	return broads
}
