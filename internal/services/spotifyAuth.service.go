package services

import (
	"context"
	"fmt"
	"time"

	"echosorter/config"
	"echosorter/internal/database"
	"echosorter/internal/logger"
	. "echosorter/internal/models"
	"echosorter/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const oauthStateTTL = 10 * time.Minute

var spotifyScopes = []string{
	"user-library-read",
	"user-read-private",
	"user-read-email",
	"playlist-modify-private",
	"playlist-modify-public",
}

// SpotifyAuthService owns the access/refresh token pair per external user
// identity. The Credential row is the only source of truth for token state;
// there is no process-local token cache.
type SpotifyAuthService struct {
	oauthConfig    *oauth2.Config
	credentialRepo repositories.CredentialRepository
	db             database.DB
	apiBaseURL     string
	now            func() time.Time
	log            logger.Logger
}

func NewSpotifyAuthService(
	config config.Config,
	credentialRepo repositories.CredentialRepository,
	db database.DB,
) *SpotifyAuthService {
	return &SpotifyAuthService{
		oauthConfig: &oauth2.Config{
			ClientID:     config.SpotifyClientID,
			ClientSecret: config.SpotifyClientSecret,
			RedirectURL:  config.SpotifyRedirectURI,
			Scopes:       spotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  SpotifyAuthURL,
				TokenURL: SpotifyTokenURL,
			},
		},
		credentialRepo: credentialRepo,
		db:             db,
		apiBaseURL:     SpotifyAPIBaseURL,
		now:            time.Now,
		log:            logger.New("spotifyAuthService"),
	}
}

// WithEndpoints redirects the auth, token and API endpoints. Used by tests.
func (s *SpotifyAuthService) WithEndpoints(authURL, tokenURL, apiBaseURL string) *SpotifyAuthService {
	s.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	s.apiBaseURL = apiBaseURL
	return s
}

// Authorize builds the consent-page URL for a new authorization. The state
// nonce is parked in the cache so the callback can be validated; userHint is
// informational and may be empty since the definitive identity comes from the
// token's /me lookup.
func (s *SpotifyAuthService) Authorize(ctx context.Context, userHint string) (string, error) {
	log := s.log.Function("Authorize")

	state := uuid.NewString()
	if err := s.db.SetOAuthState(ctx, state, userHint, oauthStateTTL); err != nil {
		return "", log.Err("failed to store authorization state", err)
	}

	authorizeURL := s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	log.Info("Issued authorization URL", "userHint", userHint)

	return authorizeURL, nil
}

// CompleteAuthorization exchanges the callback code for a token pair,
// resolves the owning Spotify user and persists the credential.
func (s *SpotifyAuthService) CompleteAuthorization(
	ctx context.Context,
	state, code string,
) (*Credential, error) {
	log := s.log.Function("CompleteAuthorization")

	_, found, err := s.db.TakeOAuthState(ctx, state)
	if err != nil {
		return nil, log.Err("failed to validate authorization state", err)
	}
	if !found {
		return nil, ErrInvalidOAuthState
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", ErrServiceFailure, err)
	}

	user, err := s.newClient(token.AccessToken).CurrentUser(ctx)
	if err != nil {
		return nil, log.Err("failed to resolve user for new credential", err)
	}

	credential := &Credential{
		UserID:       user.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	if err := s.credentialRepo.Upsert(ctx, credential); err != nil {
		return nil, log.Err("failed to persist credential", err, "userID", user.ID)
	}

	log.Info("Authorization completed", "userID", user.ID)
	return credential, nil
}

// GetValidClient returns an API client bound to a currently valid access
// token for the user. An expired token triggers exactly one refresh and one
// persisted write; a failed refresh purges the credential so the caller must
// re-authorize from scratch.
func (s *SpotifyAuthService) GetValidClient(ctx context.Context, userID string) (*SpotifyClient, error) {
	log := s.log.Function("GetValidClient")

	credential, err := s.credentialRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, log.Err("failed to load credential", err, "userID", userID)
	}
	if credential == nil {
		return nil, ErrNotAuthenticated
	}

	if credential.Expired(s.now()) {
		token, err := s.oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: credential.RefreshToken,
		}).Token()
		if err != nil {
			// Revoked or otherwise unusable refresh token. Purge so the next
			// attempt starts a fresh authorization.
			log.Warn("Token refresh failed, purging credential", "userID", userID, "error", err)
			if deleteErr := s.credentialRepo.Delete(ctx, userID); deleteErr != nil {
				return nil, log.Err("failed to purge credential after refresh failure",
					deleteErr, "userID", userID)
			}
			return nil, fmt.Errorf("%w: token refresh failed", ErrNotAuthenticated)
		}

		credential.AccessToken = token.AccessToken
		credential.ExpiresAt = token.Expiry
		if token.RefreshToken != "" {
			credential.RefreshToken = token.RefreshToken
		}

		if err := s.credentialRepo.Update(ctx, credential); err != nil {
			return nil, log.Err("failed to persist refreshed credential", err, "userID", userID)
		}

		log.Info("Refreshed access token", "userID", userID, "expiresAt", credential.ExpiresAt)
	}

	return s.newClient(credential.AccessToken), nil
}

// PurgeCredential removes the stored token state, typically after a
// mid-operation 401 proved it unusable.
func (s *SpotifyAuthService) PurgeCredential(ctx context.Context, userID string) error {
	log := s.log.Function("PurgeCredential")

	if err := s.credentialRepo.Delete(ctx, userID); err != nil {
		return log.Err("failed to purge credential", err, "userID", userID)
	}

	log.Info("Purged credential", "userID", userID)
	return nil
}

func (s *SpotifyAuthService) newClient(accessToken string) *SpotifyClient {
	return NewSpotifyClient(accessToken).WithBaseURL(s.apiBaseURL)
}
