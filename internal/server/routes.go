package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"promptcrawler/internal/core/job"
	"promptcrawler/internal/health"
	"promptcrawler/internal/platform/redis"
)

type Dependencies struct {
	Job   *job.Service
	Store interface{ Ping(context.Context) error }
	// Redis and Queue are nil when no Redis is configured.
	Redis *redis.Service
	Queue job.Enqueuer
}

// RegisterRoutes mounts the crawl trigger, job history and health endpoints.
// OPTIONS preflights are answered by the CORS middleware for any origin.
func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	checks := map[string]health.CheckFunc{"store": d.Store.Ping}
	if d.Redis != nil {
		checks["redis"] = d.Redis.HealthCheck
	}
	healthHandler := health.NewHealthHandler(checks)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	crawlHandler := job.NewHandler(d.Job, d.Queue)
	app.Post("/", crawlHandler.HandleRun)

	api := app.Group("/v1")
	api.Post("/crawl", crawlHandler.HandleRun)
	api.Get("/crawl/jobs", crawlHandler.HandleListJobs)
	api.Get("/crawl/jobs/:jobId", crawlHandler.HandleGetJob)

	return healthHandler
}
