package handlers

import (
	"echosorter/internal/app"
	"echosorter/internal/handlers/middleware"
	"echosorter/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	HealthHandler(router, app.Config)

	api := router.Group("/api")
	NewAuthHandler(*app, api).Register()
	NewLibraryHandler(*app, api).Register()

	return nil
}
