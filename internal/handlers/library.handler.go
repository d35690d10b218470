package handlers

import (
	"errors"

	"echosorter/internal/app"
	libraryController "echosorter/internal/controllers/library"
	"echosorter/internal/handlers/middleware"
	"echosorter/internal/logger"
	"echosorter/internal/services"

	"github.com/gofiber/fiber/v2"
)

type LibraryHandler struct {
	Handler
	libraryController libraryController.LibraryControllerInterface
}

func NewLibraryHandler(app app.App, router fiber.Router) *LibraryHandler {
	log := logger.New("handlers").File("library_handler")
	return &LibraryHandler{
		libraryController: app.Controllers.Library,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *LibraryHandler) Register() {
	protected := h.router.Group("/", h.middleware.RequireSession())

	protected.Post("/sync", h.sync)
	protected.Get("/sync/latest", h.latestSync)
	protected.Get("/tracks", h.listTracks)
	protected.Post("/playlists", h.exportPlaylist)
}

// sync runs a full reconciliation of the caller's liked tracks.
func (h *LibraryHandler) sync(c *fiber.Ctx) error {
	log := h.log.Function("sync")
	userID := middleware.GetUserID(c)

	report, err := h.libraryController.SyncLibrary(c.UserContext(), userID)
	if err != nil {
		return h.translateError(c, log, err, "sync failed", userID)
	}

	return c.JSON(report)
}

// latestSync returns the report of the caller's most recent sync.
func (h *LibraryHandler) latestSync(c *fiber.Ctx) error {
	log := h.log.Function("latestSync")
	userID := middleware.GetUserID(c)

	run, err := h.libraryController.LatestSync(c.UserContext(), userID)
	if err != nil {
		return h.translateError(c, log, err, "failed to load latest sync", userID)
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No sync has been run yet",
		})
	}

	return c.JSON(run)
}

// listTracks returns the caller's synced tracks with derived broad genres.
func (h *LibraryHandler) listTracks(c *fiber.Ctx) error {
	log := h.log.Function("listTracks")
	userID := middleware.GetUserID(c)

	tracks, err := h.libraryController.ListTracks(c.UserContext(), userID)
	if err != nil {
		return h.translateError(c, log, err, "failed to list tracks", userID)
	}

	return c.JSON(fiber.Map{"tracks": tracks})
}

type exportPlaylistRequest struct {
	Genre string `json:"genre"`
}

// exportPlaylist pushes one broad genre back to Spotify as a dated playlist.
func (h *LibraryHandler) exportPlaylist(c *fiber.Ctx) error {
	log := h.log.Function("exportPlaylist")
	userID := middleware.GetUserID(c)

	var req exportPlaylistRequest
	if err := c.BodyParser(&req); err != nil || req.Genre == "" {
		log.Info("missing genre in request body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "genre is required",
		})
	}

	result, err := h.libraryController.ExportPlaylist(c.UserContext(), userID, req.Genre)
	if err != nil {
		if errors.Is(err, services.ErrNoTracksForGenre) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No tracks found for genre",
				"genre": req.Genre,
			})
		}
		return h.translateError(c, log, err, "playlist export failed", userID)
	}

	return c.JSON(result)
}

// translateError maps service sentinels to HTTP responses. A lost or expired
// credential always comes back as 401 with the reauthorize flag.
func (h *LibraryHandler) translateError(
	c *fiber.Ctx,
	log logger.Logger,
	err error,
	msg, userID string,
) error {
	if errors.Is(err, services.ErrNotAuthenticated) {
		log.Info("request requires reauthorization", "userID", userID)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":       "Spotify authorization required",
			"reauthorize": true,
		})
	}

	if errors.Is(err, services.ErrServiceFailure) {
		log.Er(msg, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Spotify is unavailable, try again later",
		})
	}

	log.Er(msg, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
