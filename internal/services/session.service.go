package services

import (
	"fmt"
	"time"

	"echosorter/config"
	"echosorter/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenTTL = 7 * 24 * time.Hour

// SessionService issues and validates the signed session tokens that carry
// the Spotify user ID between the authorization callback and later API calls.
type SessionService struct {
	secret []byte
	now    func() time.Time
	log    logger.Logger
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func NewSessionService(config config.Config) *SessionService {
	return &SessionService{
		secret: []byte(config.SessionSecret),
		now:    time.Now,
		log:    logger.New("sessionService"),
	}
}

// IssueToken creates a signed session token for the user.
func (s *SessionService) IssueToken(userID string) (string, error) {
	log := s.log.Function("IssueToken")

	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", log.Err("failed to sign session token", err, "userID", userID)
	}

	return token, nil
}

// ValidateToken verifies the signature and expiry, returning the user ID.
func (s *SessionService) ValidateToken(tokenString string) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid session token", ErrNotAuthenticated)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: session token missing subject", ErrNotAuthenticated)
	}

	return claims.Subject, nil
}
