package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
)

// NewApp builds the fiber application with middleware and routes.
func NewApp(log *zap.SugaredLogger, h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Repo Timeline API",
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(log))

	SetupRoutes(app, h)
	return app
}

func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)

	api := app.Group("/api")

	gh := api.Group("/github")
	gh.Get("/timeline", h.GetTimeline)
	gh.Get("/activity", h.GetActivity)

	api.Post("/sessions", h.CreateSession)
	sessions := api.Group("/sessions")
	sessions.Get("/:id", h.GetSession)
	sessions.Delete("/:id", h.DeleteSession)
	sessions.Post("/:id/more", h.LoadMore)
	sessions.Put("/:id/filter", h.SetFilter)
	sessions.Get("/:id/activity", h.GetSessionActivity)
}
