package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// HandlePing is a liveness probe
func HandlePing(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"status": "ok"})
}

// HandleCheckHealth reports whether the database is reachable
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database unavailable")
	}
	return response.Success(c, fiber.Map{
		"status":    "ok",
		"database":  "ok",
		"timestamp": time.Now().UTC(),
	})
}

// MakeHTTPHandleFunc binds a store-aware handler to a fiber route
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handler(c, store)
	}
}
