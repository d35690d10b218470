package handlers

import (
	"errors"

	"echosorter/internal/app"
	authController "echosorter/internal/controllers/auth"
	"echosorter/internal/logger"
	"echosorter/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	auth.Get("/login", h.login)
	auth.Get("/callback", h.callback)
}

// login starts the authorization flow and returns the Spotify consent URL.
func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	response, err := h.authController.BeginLogin(c.UserContext(), c.Query("user_id"))
	if err != nil {
		log.Er("failed to begin login", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start authorization",
		})
	}

	return c.JSON(response)
}

// callback completes the authorization flow, returning a session token.
func (h *AuthHandler) callback(c *fiber.Ctx) error {
	log := h.log.Function("callback")

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		log.Info("missing state or code parameter")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "state and code parameters are required",
		})
	}

	response, err := h.authController.HandleCallback(c.UserContext(), state, code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOAuthState) {
			log.Info("invalid oauth state", "state", state)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid or expired authorization state",
			})
		}
		log.Er("authorization callback failed", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Authorization failed",
		})
	}

	return c.JSON(response)
}
