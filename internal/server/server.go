package server

import (
	"log"

	"multimodal-assistant-be/internal/bootstrap"
	"multimodal-assistant-be/internal/config"
	"multimodal-assistant-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	uploadLimit := cfg.App.UploadLimitMB
	if uploadLimit <= 0 {
		uploadLimit = 200
	}

	app := fiber.New(fiber.Config{
		BodyLimit: uploadLimit * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, " + serverutils.SessionHeaderName,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, " + serverutils.SessionHeaderName,
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
			"active_sessions": c.SessionRepository.Count(),
		}))
	})

	api := app.Group("/api")
	sessionMiddleware := serverutils.SessionMiddleware(cfg.Session.Secret, cfg.Session.TTL, c.SessionManager)

	c.SessionController.RegisterRoutes(api, sessionMiddleware)
	c.AssistantController.RegisterRoutes(api, sessionMiddleware)
	c.EventController.RegisterRoutes(api, sessionMiddleware)
}
