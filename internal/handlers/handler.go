package handlers

import (
	"github.com/arzan03/FilesManager/internal/middleware"
	"github.com/arzan03/FilesManager/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	app   *services.AppService
	auth  *services.AuthService
	files *services.FileService
	log   *zap.SugaredLogger
}

func NewHandler(app *services.AppService, auth *services.AuthService, files *services.FileService, log *zap.SugaredLogger) *Handler {
	return &Handler{app: app, auth: auth, files: files, log: log}
}

type AppOptions struct {
	// BodyLimit caps request bodies in bytes; uploads arrive base64 encoded.
	BodyLimit int
}

// NewApp builds the fiber application with every route registered.
func NewApp(h *Handler, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "files-manager",
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(h.log),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestLogger(h.log))
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())

	h.Register(app)
	return app
}

// Register mounts the API routes on router.
func (h *Handler) Register(router fiber.Router) {
	requireToken := middleware.AuthMiddleware(h.auth)
	optionalToken := middleware.OptionalAuthMiddleware(h.auth)

	router.Get("/status", h.GetStatus)
	router.Get("/stats", h.GetStats)
	router.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	router.Post("/users", h.PostUser)
	router.Get("/users/me", requireToken, h.GetMe)

	router.Get("/connect", h.Connect)
	router.Post("/connect", h.Connect)
	router.Get("/disconnect", h.Disconnect)

	files := router.Group("/files")
	files.Post("/", requireToken, h.PostFile)
	files.Get("/", requireToken, h.ListFiles)
	files.Get("/:id", requireToken, h.GetFile)
	files.Put("/:id/publish", requireToken, h.PublishFile)
	files.Put("/:id/unpublish", requireToken, h.UnpublishFile)
	files.Get("/:id/data", optionalToken, h.GetFileData)
}
