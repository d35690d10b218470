package authController

import (
	"context"

	"echosorter/internal/logger"
	"echosorter/internal/services"
)

// AuthController handles the Spotify authorization flow and session issuance.
type AuthController struct {
	spotifyAuthService *services.SpotifyAuthService
	sessionService     *services.SessionService
	log                logger.Logger
}

// AuthControllerInterface defines the contract for auth business logic
type AuthControllerInterface interface {
	BeginLogin(ctx context.Context, userHint string) (*LoginResponse, error)
	HandleCallback(ctx context.Context, state, code string) (*CallbackResponse, error)
}

type LoginResponse struct {
	AuthorizeURL string `json:"authorizeUrl"`
}

type CallbackResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func New(services services.Service) AuthControllerInterface {
	return &AuthController{
		spotifyAuthService: services.SpotifyAuth,
		sessionService:     services.Session,
		log:                logger.New("authController"),
	}
}

// BeginLogin starts a new authorization and returns the consent-page URL.
func (c *AuthController) BeginLogin(
	ctx context.Context,
	userHint string,
) (*LoginResponse, error) {
	log := c.log.Function("BeginLogin")

	authorizeURL, err := c.spotifyAuthService.Authorize(ctx, userHint)
	if err != nil {
		return nil, log.Err("failed to begin login", err)
	}

	return &LoginResponse{AuthorizeURL: authorizeURL}, nil
}

// HandleCallback finishes the authorization: the credential is persisted and
// a session token carrying the Spotify user ID comes back to the client.
func (c *AuthController) HandleCallback(
	ctx context.Context,
	state, code string,
) (*CallbackResponse, error) {
	log := c.log.Function("HandleCallback")

	credential, err := c.spotifyAuthService.CompleteAuthorization(ctx, state, code)
	if err != nil {
		return nil, err
	}

	token, err := c.sessionService.IssueToken(credential.UserID)
	if err != nil {
		return nil, log.Err("failed to issue session token", err, "userID", credential.UserID)
	}

	log.Info("Login completed", "userID", credential.UserID)
	return &CallbackResponse{Token: token, UserID: credential.UserID}, nil
}
