package middleware

import (
	"strings"

	"echosorter/internal/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	// UserIDLocalKey is the Fiber locals key for the session's Spotify user ID
	UserIDLocalKey = "userID"
)

// RequireSession validates the Bearer session token and stores the Spotify
// user ID in the request context.
func (m *Middleware) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireSession")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			log.Info("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		userID, err := m.sessionService.ValidateToken(tokenParts[1])
		if err != nil {
			log.Info("session token validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid session token",
			})
		}

		c.Locals(UserIDLocalKey, userID)

		return c.Next()
	}
}

// GetUserID retrieves the authenticated Spotify user ID from Fiber context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(UserIDLocalKey).(string); ok {
		return userID
	}
	return ""
}
