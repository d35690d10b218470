package services

import "errors"

var (
	// ErrNotAuthenticated means no credential is stored for the user, or the
	// stored one could not be refreshed and was purged. The caller must
	// restart authorization.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthExpired is a mid-operation 401 from Spotify. Callers purge the
	// credential and surface ErrNotAuthenticated.
	ErrAuthExpired = errors.New("spotify authorization expired")

	// ErrServiceFailure covers every other Spotify failure (rate limit, 5xx,
	// malformed response). Recoverable by retry.
	ErrServiceFailure = errors.New("spotify service failure")

	// ErrInvalidOAuthState means the authorization callback carried a state
	// nonce that was never issued or already used.
	ErrInvalidOAuthState = errors.New("invalid oauth state")

	// ErrNoTracksForGenre means a playlist export found zero tracks under the
	// requested broad genre, so no playlist was created.
	ErrNoTracksForGenre = errors.New("no tracks for genre")
)
