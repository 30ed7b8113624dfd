package router

import (
	healthsvc "folio-backend/internal/application/health"
	holdsvc "folio-backend/internal/application/holdings"
	"folio-backend/internal/application/portfolio"
	healthhandler "folio-backend/internal/interfaces/handlers/health"
	holdhandler "folio-backend/internal/interfaces/handlers/holdings"
	portfoliohandler "folio-backend/internal/interfaces/handlers/portfolio"
	"folio-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Deps is everything the HTTP surface needs. Redis, DB and Cache may be nil.
type Deps struct {
	Logger         zerolog.Logger
	Redis          *redis.Client
	DB             healthsvc.DBPinger
	Cache          healthsvc.CacheSizer
	Holdings       *holdsvc.Service
	Portfolio      *portfolio.Service
	Refresher      portfoliohandler.Refresher
	CORS           middleware.CORSConfig
	SessionCookie  string
	HealthAdminKey string
}

// CreateApp builds the Fiber app with global middleware and routes.
func CreateApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(d.Redis, d.Logger),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(d.CORS))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger(d.Logger))
	app.Use(middleware.HealthMarker(d.Redis))
	app.Use(middleware.Session(d.Redis, d.SessionCookie, d.Logger))

	hh := &healthhandler.Handlers{
		Rdb:            d.Redis,
		DB:             d.DB,
		Cache:          d.Cache,
		HealthAdminKey: d.HealthAdminKey,
	}
	app.Get("/", hh.JSON)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	api := app.Group("/api/v1", middleware.RequireAuth())

	holdh := &holdhandler.Handlers{Service: d.Holdings}
	hg := api.Group("/holdings")
	hg.Get("/", holdh.List)
	hg.Post("/", holdh.Add)
	hg.Put("/:id", holdh.Update)
	hg.Delete("/:id", holdh.Delete)

	ph := &portfoliohandler.Handlers{Refresher: d.Refresher, Portfolio: d.Portfolio}
	pg := api.Group("/portfolio")
	pg.Post("/refresh", ph.Refresh)
	pg.Get("/summary", ph.Summary)
	pg.Get("/history", ph.History)

	return app
}
