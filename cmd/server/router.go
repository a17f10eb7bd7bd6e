package main

import (
	"time"

	"roster-pulse/cmd/server/handlers"
	"roster-pulse/cmd/server/handlers/httperr"
	identityHandlers "roster-pulse/cmd/server/handlers/identity"
	notesHandlers "roster-pulse/cmd/server/handlers/notes"
	rosterHandlers "roster-pulse/cmd/server/handlers/roster"
	"roster-pulse/cmd/server/middlewares"
	"roster-pulse/internal/clients/blob"
	"roster-pulse/internal/config"
	"roster-pulse/internal/logger"
	"roster-pulse/internal/roster"
	identityService "roster-pulse/internal/services/identity"
	"roster-pulse/internal/services/locks"
	notesService "roster-pulse/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const RateLimitExpiration = 1 * time.Minute

// routerDeps carries the services main constructs before the server starts.
type routerDeps struct {
	rosterSvc *roster.Service
	editorSvc *notesService.Service
	idSvc     *identityService.Service
	lockMgr   *locks.Manager
	photos    *blob.Store
}

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(cfg config.Config, deps routerDeps) *fiber.App {
	v := validator.New()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	coachMW := middlewares.CoachIdentity(cfg)

	// Identity claiming is the only unauthenticated route, so it gets the
	// rate limiter.
	idH := identityHandlers.NewHandlers(deps.idSvc, v)
	identityGrp := v1.Group("/identity",
		middlewares.BuildRateLimiter(cfg.IdentityRatePerMin, RateLimitExpiration))
	identityGrp.Post("/claim", idH.Claim)

	// Roster routes
	rosterH := rosterHandlers.NewHandlers(deps.rosterSvc, deps.editorSvc, deps.photos, cfg.RosterFile, v)
	playersGrp := v1.Group("/players", coachMW)
	playersGrp.Get("/", rosterH.List)
	playersGrp.Get("/export", rosterH.Export)
	playersGrp.Post("/sync", rosterH.Sync)
	playersGrp.Get("/:id", rosterH.Get)
	playersGrp.Patch("/:id/jersey", rosterH.UpdateJersey)
	playersGrp.Post("/:id/photo", rosterH.UploadPhoto)
	playersGrp.Get("/:id/photo", rosterH.PhotoURL)

	// Note editing routes
	notesH := notesHandlers.NewHandlers(deps.editorSvc, deps.rosterSvc, deps.lockMgr, v)
	playersGrp.Get("/:id/notes", notesH.Get)
	playersGrp.Post("/:id/notes/session", notesH.OpenSession)

	sessionsGrp := v1.Group("/notes/sessions", coachMW)
	sessionsGrp.Post("/:sid/save", notesH.SaveSession)
	sessionsGrp.Post("/:sid/touch", notesH.TouchSession)
	sessionsGrp.Delete("/:sid", notesH.CancelSession)

	v1.Get("/locks", coachMW, notesH.ListLocks)

	// WebSocket lock event stream
	wsH := notesHandlers.NewWebSocketHandlers(deps.lockMgr, deps.idSvc, cfg.WSMaxSessionSec)
	app.Get("/ws/locks/:id/stream", wsH.WSUpgrade, websocket.New(wsH.WSLockStream))

	return app
}
